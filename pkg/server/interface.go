/*
Package server implements msgpack IPC for the item catalog.

The server provides a minimal request/response interface over stdin/stdout
using binary msgpack encoding. Messages are processed synchronously, one at
a time, with timing info included in responses; there is nothing to cancel
because no query blocks.

# IPC

Each request carries an ID for correlation and an op selecting the handler:

	{"id": "req_001", "op": "search", "q": "circuit", "l": 24}

Search responses return ranked items after chip narrowing:

	{"id": "req_001", "s": [{"n": "Circuit Board", "r": "rare"}], "c": 1, "t": 120}

Chip narrowing uses a single active key; toggling the same key twice clears
it, and selecting a new key replaces the old one:

	{"id": "flt_001", "op": "filter", "k": "rarity:rare"}

Other ops: "chips" lists the available filter keys with item counts,
"reload" replaces the dataset snapshot wholesale, "status" reports engine
counters, "config" manages the TOML file ("path" reports the active config
path, "rebuild" recreates it with defaults). While no snapshot is loaded
every query op fails with code 503 until a reload succeeds.
*/
package server

// Request is the envelope for every incoming message.
type Request struct {
	ID     string `msgpack:"id"`
	Op     string `msgpack:"op"`
	Query  string `msgpack:"q,omitempty"`
	Limit  int    `msgpack:"l,omitempty"`
	Key    string `msgpack:"k,omitempty"`
	Action string `msgpack:"a,omitempty"`
}

// ResultItem - one grouped item in a search response
type ResultItem struct {
	Name      string   `msgpack:"n"`
	Rarity    string   `msgpack:"r,omitempty"`
	Type      string   `msgpack:"y,omitempty"`
	Value     float64  `msgpack:"v,omitempty"`
	Locations []string `msgpack:"lo,omitempty"`
	UsageHits int      `msgpack:"u,omitempty"`
	Icon      string   `msgpack:"i,omitempty"`
}

// SearchResponse - ranked results for one query
type SearchResponse struct {
	ID           string       `msgpack:"id"`
	Items        []ResultItem `msgpack:"s"`
	Count        int          `msgpack:"c"`
	ActiveFilter string       `msgpack:"f,omitempty"`
	TimeTaken    int64        `msgpack:"t"`
}

// ChipInfo - one filter key with its item count
type ChipInfo struct {
	Key   string `msgpack:"k"`
	Count int    `msgpack:"c"`
}

// ChipsResponse - available filter chips
type ChipsResponse struct {
	ID    string     `msgpack:"id"`
	Chips []ChipInfo `msgpack:"ch"`
}

// FilterResponse - active filter key after a toggle
type FilterResponse struct {
	ID     string `msgpack:"id"`
	Active string `msgpack:"f"`
}

// ConfigResponse - config operation response
type ConfigResponse struct {
	ID     string `msgpack:"id"`
	Status string `msgpack:"status"`
	Path   string `msgpack:"path,omitempty"`
	Error  string `msgpack:"error,omitempty"`
}

// StatusResponse - engine status and counters
type StatusResponse struct {
	ID     string         `msgpack:"id"`
	Status string         `msgpack:"status"`
	Stats  map[string]int `msgpack:"stats,omitempty"`
	Error  string         `msgpack:"error,omitempty"`
}

// ErrorResponse holds basic error information for failed requests
type ErrorResponse struct {
	ID    string `msgpack:"id"`
	Error string `msgpack:"e"`
	Code  int    `msgpack:"c"`
}
