package dataset

import (
	"encoding/json"
	"fmt"

	"github.com/charmbracelet/log"
)

// SidecarItem is one entry of the optional JSON stat file. It backfills
// fields the table doesn't carry; it never overrides a value the table set.
type SidecarItem struct {
	Name      string  `json:"name"`
	Icon      string  `json:"icon"`
	Weight    float64 `json:"weight"`
	StackSize int     `json:"stackSize"`
}

// Sidecar maps lowercase-trimmed item names to their stat entries.
type Sidecar map[string]SidecarItem

// ParseSidecar decodes the JSON sidecar, a top-level array of item objects,
// keyed by normalized name. Entries with a blank name are dropped.
func ParseSidecar(data []byte) (Sidecar, error) {
	var items []SidecarItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("decode sidecar: %w", err)
	}

	m := make(Sidecar, len(items))
	for _, it := range items {
		key := NormalizeName(it.Name)
		if key == "" {
			continue
		}
		if _, dup := m[key]; dup {
			log.Debugf("duplicate sidecar entry for %q, keeping first", key)
			continue
		}
		m[key] = it
	}
	return m, nil
}
