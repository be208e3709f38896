//go:build test

package mem

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/hexfall/lootserve/pkg/catalog"
	"github.com/hexfall/lootserve/pkg/dataset"
)

func init() {
	log.SetLevel(log.ErrorLevel)
}

var testQueries = []string{
	"i", "ir", "iro", "iron", "iron o", "iron ore",
	"c", "ci", "cir", "circ", "circu", "circuit",
	"s", "sc", "scr", "scra", "scrap",
	"w", "wi", "wir", "wire",
	"crcuit board", "iron oer", "zzzyqx",
}

// fixtureCSV builds a synthetic item table large enough to exercise both
// phases of the match engine.
func fixtureCSV(items int) string {
	var b strings.Builder
	b.WriteString("Name,LocationType,Rarity,Station,Tier,Quantity\n")
	rarities := []string{"common", "uncommon", "rare"}
	for i := 0; i < items; i++ {
		fmt.Fprintf(&b, "Item Number %d,Bunker|Vault,%s,Workbench,%d,%d\n",
			i, rarities[i%len(rarities)], i%4, i%10)
	}
	b.WriteString("Iron Ore,Mine,common,,0,0\n")
	b.WriteString("Circuit Board,Bunker,rare,Workbench,2,3\n")
	return b.String()
}

func newEngine(t *testing.T, items int) *catalog.Engine {
	t.Helper()
	path := filepath.Join(t.TempDir(), "items.csv")
	if err := os.WriteFile(path, []byte(fixtureCSV(items)), 0644); err != nil {
		t.Fatalf("fixture write failed: %v", err)
	}
	engine := catalog.NewEngine(dataset.NewLoader(path, ""), dataset.DefaultColumns())
	if err := engine.Reload(context.Background()); err != nil {
		t.Fatalf("engine reload failed: %v", err)
	}
	return engine
}

func TestMemoryLeakBasic(t *testing.T) {
	iterations := []int{100, 500, 1000}

	for _, iterCount := range iterations {
		t.Run(fmt.Sprintf("iterations_%d", iterCount), func(t *testing.T) {
			runBasicMemoryTest(t, iterCount, testQueries)
		})
	}
}

func runBasicMemoryTest(t *testing.T, iterations int, queries []string) {
	engine := newEngine(t, 2000)

	var baseline runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&baseline)
	baselineGoroutines := runtime.NumGoroutine()

	for i := 0; i < iterations; i++ {
		for _, q := range queries {
			results, err := engine.Search(q, 10)
			if err != nil {
				t.Fatalf("search failed: %v", err)
			}
			_ = results
		}
	}

	var final runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&final)
	finalGoroutines := runtime.NumGoroutine()

	memDelta := int64(final.Alloc - baseline.Alloc)
	goroutineDelta := finalGoroutines - baselineGoroutines
	totalOps := iterations * len(queries)
	memPerOp := float64(memDelta) / float64(totalOps)

	t.Logf("iterations=%d ops=%d mem_delta=%d bytes mem_per_op=%.2f goroutine_delta=%d",
		iterations, totalOps, memDelta, memPerOp, goroutineDelta)

	if memPerOp > 1000 {
		t.Errorf("excessive memory usage per operation: %.2f bytes", memPerOp)
	}
	if goroutineDelta > 2 {
		t.Errorf("goroutine leak detected: %d goroutines leaked", goroutineDelta)
	}
}

// Repeated reloads must fully release the previous snapshot.
func TestMemoryStabilityReload(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping long-running memory stability test in short mode")
	}

	engine := newEngine(t, 2000)

	var baseline runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&baseline)

	for cycle := 0; cycle < 25; cycle++ {
		if err := engine.Reload(context.Background()); err != nil {
			t.Fatalf("reload cycle %d failed: %v", cycle, err)
		}
		for _, q := range testQueries {
			if _, err := engine.Search(q, 10); err != nil {
				t.Fatalf("search failed: %v", err)
			}
		}
	}

	var final runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&final)

	// one snapshot's worth of growth is fine, a multiple is not
	growth := int64(final.HeapAlloc) - int64(baseline.HeapAlloc)
	t.Logf("heap growth after 25 reload cycles: %d bytes", growth)
	if growth > 64<<20 {
		t.Errorf("heap grew by %d bytes across reload cycles", growth)
	}
}
