package catalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hexfall/lootserve/pkg/dataset"
)

const engineCSV = "Name,LocationType,Rarity,Station,Tier,Quantity\n" +
	"Circuit Board,Bunker|Vault,rare,Workbench,2,3\n" +
	"Iron Ore,Mine,common,,0,0\n"

func writeFixture(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func newTestEngine(t *testing.T, csv string) *Engine {
	t.Helper()
	loader := dataset.NewLoader(writeFixture(t, "items.csv", csv), "")
	return NewEngine(loader, dataset.DefaultColumns())
}

func TestEngineNotLoaded(t *testing.T) {
	loader := dataset.NewLoader("/does/not/exist.csv", "")
	engine := NewEngine(loader, dataset.DefaultColumns())

	_, err := engine.Search("iron", 10)
	assert.ErrorIs(t, err, ErrNotLoaded)

	_, err = engine.Chips()
	assert.ErrorIs(t, err, ErrNotLoaded)

	assert.False(t, engine.Loaded())
}

func TestEngineReloadAndSearch(t *testing.T) {
	engine := newTestEngine(t, engineCSV)
	require.NoError(t, engine.Reload(context.Background()))
	require.True(t, engine.Loaded())

	items, err := engine.Search("circuit", 10)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Circuit Board", items[0].Name)
	assert.Equal(t, []string{"Bunker", "Vault"}, items[0].Locations)
}

func TestEngineFilterNarrowing(t *testing.T) {
	engine := newTestEngine(t, engineCSV)
	require.NoError(t, engine.Reload(context.Background()))

	// "iron" matches nothing under an active circuit-only chip
	engine.ToggleFilter("rarity:rare")
	items, err := engine.Search("iron", 10)
	require.NoError(t, err)
	assert.Empty(t, items)

	// toggle pair restores the unfiltered result set
	engine.ToggleFilter("rarity:rare")
	items, err = engine.Search("iron", 10)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestEngineFailedReloadDisablesQuerying(t *testing.T) {
	engine := newTestEngine(t, engineCSV)
	require.NoError(t, engine.Reload(context.Background()))

	// point the loader at a missing file and reload: the old snapshot must
	// not survive, no stale data is served
	engine.loader.DataSource = filepath.Join(t.TempDir(), "gone.csv")
	require.Error(t, engine.Reload(context.Background()))

	assert.False(t, engine.Loaded())
	_, err := engine.Search("iron", 10)
	assert.ErrorIs(t, err, ErrNotLoaded)
}

func TestEngineReloadReplacesSnapshot(t *testing.T) {
	engine := newTestEngine(t, engineCSV)
	require.NoError(t, engine.Reload(context.Background()))

	engine.loader.DataSource = writeFixture(t, "items2.csv", "Name\nFresh Item\n")
	require.NoError(t, engine.Reload(context.Background()))

	items, err := engine.Search("fresh", 10)
	require.NoError(t, err)
	require.Len(t, items, 1)

	items, err = engine.Search("circuit", 10)
	require.NoError(t, err)
	assert.Empty(t, items, "old snapshot must be fully replaced")
}

func TestEngineChipsAndStats(t *testing.T) {
	engine := newTestEngine(t, engineCSV)
	require.NoError(t, engine.Reload(context.Background()))

	chips, err := engine.Chips()
	require.NoError(t, err)

	keys := make(map[string]int, len(chips))
	for _, c := range chips {
		keys[c.Key] = c.Count
	}
	assert.Equal(t, 1, keys["location:bunker"])
	assert.Equal(t, 1, keys["rarity:common"])
	assert.Equal(t, 1, keys["station:workbench t2"])

	stats := engine.Stats()
	assert.Equal(t, 1, stats["loaded"])
	assert.Equal(t, 2, stats["items"])
	assert.Equal(t, 3, stats["rows"])
}
