package dataset

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	gzip "github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCSV = "Name,Rarity\nIron Ore,common\nCircuit Board,rare\n"

const testJSON = `[
	{"name": "Iron Ore", "icon": "https://cdn.example/iron.png", "weight": 0.5, "stackSize": 50}
]`

func TestLoaderLocalFiles(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "items.csv")
	jsonPath := filepath.Join(dir, "items.json")
	require.NoError(t, os.WriteFile(csvPath, []byte(testCSV), 0644))
	require.NoError(t, os.WriteFile(jsonPath, []byte(testJSON), 0644))

	loader := NewLoader(csvPath, jsonPath)
	rows, sidecar, err := loader.Load(context.Background())
	require.NoError(t, err)

	assert.Len(t, rows, 3)
	assert.Equal(t, []string{"Name", "Rarity"}, rows[0])

	require.Contains(t, sidecar, "iron ore")
	assert.Equal(t, 0.5, sidecar["iron ore"].Weight)
	assert.Equal(t, 50, sidecar["iron ore"].StackSize)
}

func TestLoaderNoSidecar(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "items.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte(testCSV), 0644))

	loader := NewLoader(csvPath, "")
	rows, sidecar, err := loader.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, rows, 3)
	assert.Nil(t, sidecar)
}

func TestLoaderGzippedFile(t *testing.T) {
	dir := t.TempDir()
	gzPath := filepath.Join(dir, "items.csv.gz")

	f, err := os.Create(gzPath)
	require.NoError(t, err)
	gz := gzip.NewWriter(f)
	_, err = gz.Write([]byte(testCSV))
	require.NoError(t, err)
	require.NoError(t, gz.Close())
	require.NoError(t, f.Close())

	loader := NewLoader(gzPath, "")
	rows, _, err := loader.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}

func TestLoaderHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/items.csv":
			w.Write([]byte(testCSV))
		case "/items.json":
			w.Write([]byte(testJSON))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	loader := NewLoader(srv.URL+"/items.csv", srv.URL+"/items.json")
	rows, sidecar, err := loader.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, rows, 3)
	assert.Contains(t, sidecar, "iron ore")
}

// Either fetch failing fails the whole load: no partial dataset.
func TestLoaderFailurePaths(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/items.csv" {
			w.Write([]byte(testCSV))
			return
		}
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	t.Run("table missing", func(t *testing.T) {
		loader := NewLoader(srv.URL+"/missing.csv", "")
		_, _, err := loader.Load(context.Background())
		assert.Error(t, err)
	})

	t.Run("sidecar failing fails the load", func(t *testing.T) {
		loader := NewLoader(srv.URL+"/items.csv", srv.URL+"/broken.json")
		_, _, err := loader.Load(context.Background())
		assert.Error(t, err)
	})

	t.Run("local file missing", func(t *testing.T) {
		loader := NewLoader("/does/not/exist.csv", "")
		_, _, err := loader.Load(context.Background())
		assert.Error(t, err)
	})
}

func TestParseSidecar(t *testing.T) {
	t.Run("keys are normalized names", func(t *testing.T) {
		sc, err := ParseSidecar([]byte(`[{"name": "  Iron Ore "}, {"name": ""}]`))
		require.NoError(t, err)
		assert.Len(t, sc, 1)
		assert.Contains(t, sc, "iron ore")
	})

	t.Run("duplicates keep first entry", func(t *testing.T) {
		sc, err := ParseSidecar([]byte(`[
			{"name": "Scrap", "stackSize": 10},
			{"name": "scrap", "stackSize": 99}
		]`))
		require.NoError(t, err)
		assert.Equal(t, 10, sc["scrap"].StackSize)
	})

	t.Run("malformed JSON errors", func(t *testing.T) {
		_, err := ParseSidecar([]byte(`{"not": "an array"}`))
		assert.Error(t, err)
	})
}
