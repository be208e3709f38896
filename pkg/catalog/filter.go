package catalog

import (
	"sort"

	"github.com/RoaringBitmap/roaring/v2"
)

// Chip is one available filter key with the number of items carrying it.
type Chip struct {
	Key   string
	Count int
}

// ChipIndex is the reverse filter index: key -> bitmap of item ordinals.
// Built once per aggregation pass, immutable afterwards.
type ChipIndex struct {
	bitmaps map[string]*roaring.Bitmap
}

// NewChipIndex indexes the filter keys of every item by ordinal.
func NewChipIndex(items []*GroupedItem) *ChipIndex {
	idx := &ChipIndex{
		bitmaps: make(map[string]*roaring.Bitmap),
	}
	for ord, g := range items {
		for key := range g.FilterKeys {
			bm, ok := idx.bitmaps[key]
			if !ok {
				bm = roaring.New()
				idx.bitmaps[key] = bm
			}
			bm.Add(uint32(ord))
		}
	}
	return idx
}

// Chips lists every known filter key with its item count, sorted by key.
func (idx *ChipIndex) Chips() []Chip {
	chips := make([]Chip, 0, len(idx.bitmaps))
	for key, bm := range idx.bitmaps {
		chips = append(chips, Chip{Key: key, Count: int(bm.GetCardinality())})
	}
	sort.Slice(chips, func(i, j int) bool {
		return chips[i].Key < chips[j].Key
	})
	return chips
}

// Count returns how many items carry the given key.
func (idx *ChipIndex) Count(key string) int {
	if bm, ok := idx.bitmaps[key]; ok {
		return int(bm.GetCardinality())
	}
	return 0
}

// FilterState tracks the single active chip. Exactly one key can be active
// at a time; selecting a new key replaces the previous one, and toggling
// the same key twice clears it.
type FilterState struct {
	active string
}

// Toggle flips the given key and returns the now-active key ("" when the
// toggle cleared it).
func (f *FilterState) Toggle(key string) string {
	if f.active == key {
		f.active = ""
	} else {
		f.active = key
	}
	return f.active
}

// Active returns the active key, empty when no filter is set.
func (f *FilterState) Active() string {
	return f.active
}

// Clear drops the active filter.
func (f *FilterState) Clear() {
	f.active = ""
}

// Apply narrows results to items carrying the active key. A pure predicate:
// it never reorders, and with no active key it passes results through.
func (f *FilterState) Apply(results []*GroupedItem) []*GroupedItem {
	if f.active == "" {
		return results
	}
	filtered := make([]*GroupedItem, 0, len(results))
	for _, g := range results {
		if g.HasFilterKey(f.active) {
			filtered = append(filtered, g)
		}
	}
	return filtered
}
