package dataset

import (
	"math"
	"strconv"
	"strings"
)

// Columns maps the logical fields to header names in the source table.
// Header names are matched verbatim; anything the table doesn't carry simply
// stays empty downstream.
type Columns struct {
	Name        string `toml:"name"`
	ID          string `toml:"id"`
	BaseID      string `toml:"base_id"`
	Description string `toml:"description"`
	Category    string `toml:"category"`
	Location    string `toml:"location"`
	Vendor      string `toml:"vendor"`
	Source      string `toml:"source"`
	Station     string `toml:"station"`
	Tier        string `toml:"tier"`
	Quantity    string `toml:"quantity"`
	Rarity      string `toml:"rarity"`
	Type        string `toml:"type"`
	FoundIn     string `toml:"found_in"`
	Workbench   string `toml:"workbench"`
	Value       string `toml:"value"`
	StackSize   string `toml:"stack_size"`
	Weight      string `toml:"weight"`
	Effects     string `toml:"effects"`
	Recycle     string `toml:"recycle"`
	Icon        string `toml:"icon"`
}

// DefaultColumns returns the header names of the reference item export.
func DefaultColumns() Columns {
	return Columns{
		Name:        "Name",
		ID:          "Id",
		BaseID:      "BaseId",
		Description: "Description",
		Category:    "Category",
		Location:    "LocationType",
		Vendor:      "Vendor",
		Source:      "Source",
		Station:     "Station",
		Tier:        "Tier",
		Quantity:    "Quantity",
		Rarity:      "Rarity",
		Type:        "Type",
		FoundIn:     "FoundIn",
		Workbench:   "Workbench",
		Value:       "Value",
		StackSize:   "StackSize",
		Weight:      "Weight",
		Effects:     "Effects",
		Recycle:     "RecycleOutput",
		Icon:        "Icon",
	}
}

// Record is one normalized data row. Rows with several location tokens are
// fanned out into one Record per location before aggregation, so Location is
// always a scalar here.
type Record struct {
	Name           string
	NormalizedName string
	ID             string
	BaseID         string
	Description    string
	Location       string
	Station        string
	Tier           int
	Quantity       int
	Rarity         string
	Type           string
	FoundIn        string
	Workbench      string
	Value          float64
	StackSize      int
	Weight         float64
	Icon           string

	// Raw strings kept for filter-key construction; empty raw values never
	// become filter keys even when the coerced field has a zero default.
	ValueRaw  string
	StackRaw  string
	WeightRaw string

	Categories []string
	Vendors    []string
	Sources    []string
	Effects    []string
	Recycle    []string
}

// DisplayName returns the name to render, "Unknown" for a blank one.
// NormalizedName stays derived from the raw name, so blank-named rows never
// match a query.
func (r *Record) DisplayName() string {
	if r.Name == "" {
		return "Unknown"
	}
	return r.Name
}

// Normalize converts decoded rows into Records. Row 0 is the header; its
// values become field names for every subsequent row, with missing trailing
// cells defaulting to empty. Blank rows (exactly one empty field) are
// skipped. Rows whose location field splits into several tokens are expanded
// into one Record per token.
func Normalize(rows [][]string, cols Columns) []Record {
	if len(rows) == 0 {
		return nil
	}

	header := rows[0]
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[h] = i
	}
	cell := func(row []string, name string) string {
		i, ok := idx[name]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	var out []Record
	for _, row := range rows[1:] {
		if len(row) == 1 && row[0] == "" {
			continue
		}

		name := cell(row, cols.Name)
		base := Record{
			Name:           name,
			NormalizedName: NormalizeName(name),
			ID:             strings.TrimSpace(cell(row, cols.ID)),
			BaseID:         strings.TrimSpace(cell(row, cols.BaseID)),
			Description:    cell(row, cols.Description),
			Station:        strings.TrimSpace(cell(row, cols.Station)),
			Tier:           parseInt(cell(row, cols.Tier)),
			Quantity:       ParseQuantity(cell(row, cols.Quantity)),
			Rarity:         strings.TrimSpace(cell(row, cols.Rarity)),
			Type:           strings.TrimSpace(cell(row, cols.Type)),
			FoundIn:        strings.TrimSpace(cell(row, cols.FoundIn)),
			Workbench:      strings.TrimSpace(cell(row, cols.Workbench)),
			Value:          parseFloat(cell(row, cols.Value)),
			StackSize:      parseInt(cell(row, cols.StackSize)),
			Weight:         parseFloat(cell(row, cols.Weight)),
			Icon:           strings.TrimSpace(cell(row, cols.Icon)),
			ValueRaw:       strings.TrimSpace(cell(row, cols.Value)),
			StackRaw:       strings.TrimSpace(cell(row, cols.StackSize)),
			WeightRaw:      strings.TrimSpace(cell(row, cols.Weight)),
			Categories:     SplitMulti(cell(row, cols.Category)),
			Vendors:        SplitMulti(cell(row, cols.Vendor)),
			Sources:        SplitMulti(cell(row, cols.Source)),
			Effects:        SplitMulti(cell(row, cols.Effects)),
			Recycle:        SplitMulti(cell(row, cols.Recycle)),
		}

		// The location field is the fan-out axis: an empty source still
		// yields one empty slot so every row produces at least one Record.
		for _, loc := range SplitPrimary(cell(row, cols.Location)) {
			rec := base
			rec.Location = loc
			out = append(out, rec)
		}
	}
	return out
}

// NormalizeName is the grouping and matching key: lowercase, trimmed.
func NormalizeName(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// ParseQuantity parses a quantity cell. A trailing k multiplies a numeric
// prefix by 1000, rounded to nearest ("2.5k" -> 2500). Bare integers parse
// as-is. Anything else is 0; this never errors.
func ParseQuantity(s string) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if strings.HasSuffix(s, "k") || strings.HasSuffix(s, "K") {
		num := strings.TrimSpace(s[:len(s)-1])
		if f, err := strconv.ParseFloat(num, 64); err == nil {
			return int(math.Round(f * 1000))
		}
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

// SplitMulti splits a delimiter-joined cell into trimmed non-empty tokens.
// Pipes are normalized to semicolons first, then the cell splits on commas
// and semicolons. An empty cell yields an empty slice.
func SplitMulti(s string) []string {
	s = strings.ReplaceAll(s, "|", ";")
	parts := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ';'
	})
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// SplitPrimary splits the location cell like SplitMulti but guarantees at
// least one element: an empty cell yields a single empty token, so fan-out
// always produces a Record.
func SplitPrimary(s string) []string {
	tokens := SplitMulti(s)
	if len(tokens) == 0 {
		return []string{""}
	}
	return tokens
}

func parseInt(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}

func parseFloat(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return f
}
