package catalog

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/hexfall/lootserve/pkg/dataset"
)

// ErrNotLoaded is returned for queries while no dataset snapshot is live:
// before the first load, or after a failed one. No partial or stale data is
// ever served.
var ErrNotLoaded = errors.New("catalog: dataset not loaded")

// Snapshot is one fully aggregated dataset. It is immutable once built;
// a reload swaps the whole snapshot.
type Snapshot struct {
	Items    []*GroupedItem
	searcher *Searcher
	chips    *ChipIndex
	LoadedAt time.Time
	RowCount int
}

// Engine owns the dataset snapshot and the filter state. All query methods
// are cheap synchronous computations over the current snapshot; the only
// asynchronous work is the initial fetch inside Reload.
type Engine struct {
	loader  *dataset.Loader
	columns dataset.Columns

	mu       sync.RWMutex
	snapshot *Snapshot
	filter   FilterState
}

// NewEngine creates an Engine reading from the given loader.
func NewEngine(loader *dataset.Loader, columns dataset.Columns) *Engine {
	return &Engine{
		loader:  loader,
		columns: columns,
	}
}

// Reload fetches both sources, rebuilds the snapshot and swaps it in. On
// failure the previous snapshot is dropped and querying stays disabled
// until a successful reload.
func (e *Engine) Reload(ctx context.Context) error {
	rows, sidecar, err := e.loader.Load(ctx)
	if err != nil {
		e.mu.Lock()
		e.snapshot = nil
		e.mu.Unlock()
		return err
	}

	records := dataset.Normalize(rows, e.columns)
	items := Aggregate(records)
	Backfill(items, sidecar)

	snap := &Snapshot{
		Items:    items,
		searcher: NewSearcher(items),
		chips:    NewChipIndex(items),
		LoadedAt: time.Now(),
		RowCount: len(records),
	}

	e.mu.Lock()
	e.snapshot = snap
	e.mu.Unlock()

	log.Debugf("snapshot ready: %d rows -> %d items, %d chips",
		snap.RowCount, len(items), len(snap.chips.bitmaps))
	return nil
}

// Search runs the two-phase match over the current snapshot and applies the
// active filter to the ranked results. Filtering never affects ranking.
func (e *Engine) Search(query string, limit int) ([]*GroupedItem, error) {
	e.mu.RLock()
	snap := e.snapshot
	filter := e.filter
	e.mu.RUnlock()

	if snap == nil {
		return nil, ErrNotLoaded
	}
	return filter.Apply(snap.searcher.Search(query, limit)), nil
}

// ToggleFilter flips a chip key and returns the now-active key.
func (e *Engine) ToggleFilter(key string) string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.filter.Toggle(key)
}

// ActiveFilter returns the active chip key, empty for none.
func (e *Engine) ActiveFilter() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.filter.Active()
}

// Chips lists the available filter chips with item counts.
func (e *Engine) Chips() ([]Chip, error) {
	e.mu.RLock()
	snap := e.snapshot
	e.mu.RUnlock()

	if snap == nil {
		return nil, ErrNotLoaded
	}
	return snap.chips.Chips(), nil
}

// Loaded reports whether a snapshot is live.
func (e *Engine) Loaded() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.snapshot != nil
}

// Stats returns basic counters about the current snapshot.
func (e *Engine) Stats() map[string]int {
	e.mu.RLock()
	defer e.mu.RUnlock()

	stats := map[string]int{"loaded": 0}
	if e.snapshot != nil {
		stats["loaded"] = 1
		stats["items"] = len(e.snapshot.Items)
		stats["rows"] = e.snapshot.RowCount
		stats["chips"] = len(e.snapshot.chips.bitmaps)
	}
	return stats
}
