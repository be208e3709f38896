// Package cli handles cmd line input and item lookups for DBG and testing various features
package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/hexfall/lootserve/internal/utils"
	"github.com/hexfall/lootserve/pkg/catalog"
)

// InputHandler processes user queries from stdin against the engine. It
// accepts limits on query length and result count, and understands a few
// colon commands for chip filtering and reloading.
type InputHandler struct {
	engine         *catalog.Engine
	minQueryLength int
	maxQueryLength int
	resultLimit    int
	requestCount   int
}

// NewInputHandler handles initialization of the InputHandler with basic parameters
func NewInputHandler(engine *catalog.Engine, minLength, maxLength, limit int) *InputHandler {
	return &InputHandler{
		engine:         engine,
		minQueryLength: minLength,
		maxQueryLength: maxLength,
		resultLimit:    limit,
	}
}

// Start begins the interface loop.
// It continuously prompts for input, reads a line from stdin, and passes the
// trimmed input to handleInput(). Colon commands (:chips, :filter <key>,
// :reload) manage chip state. Loop terminates on a stdin read error.
func (h *InputHandler) Start() error {
	log.Print("LootServe CLI")
	reader := bufio.NewReader(os.Stdin)
	log.Print("type an item name and press Enter (:chips, :filter <key>, :reload, Ctrl+C to exit):")

	for {
		log.Print("> ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, ":") {
			h.handleCommand(line)
			continue
		}
		h.handleQuery(line)
	}
}

func (h *InputHandler) handleCommand(line string) {
	fields := strings.Fields(line)
	switch fields[0] {
	case ":chips":
		chips, err := h.engine.Chips()
		if err != nil {
			log.Errorf("chips: %v", err)
			return
		}
		log.Printf("%d chips available:", len(chips))
		for _, c := range chips {
			log.Printf("  %-40s (%s items)", c.Key, utils.FormatWithCommas(c.Count))
		}
	case ":filter":
		if len(fields) < 2 {
			log.Errorf("usage: :filter <dimension:value>")
			return
		}
		active := h.engine.ToggleFilter(fields[1])
		if active == "" {
			log.Print("filter cleared")
		} else {
			log.Printf("filter active: %s", active)
		}
	case ":reload":
		start := time.Now()
		if err := h.engine.Reload(context.Background()); err != nil {
			log.Errorf("reload failed: %v", err)
			return
		}
		log.Printf("reloaded in %v", time.Since(start))
	default:
		log.Errorf("unknown command: %s", fields[0])
	}
}

// handleQuery runs a single search and prints ranked matches.
func (h *InputHandler) handleQuery(query string) {
	h.requestCount++

	if len(query) < h.minQueryLength {
		log.Errorf("Query too short: %s", query)
		return
	}
	if len(query) > h.maxQueryLength {
		log.Errorf("Query too long: %s", query)
		return
	}

	start := time.Now()
	items, err := h.engine.Search(query, h.resultLimit)
	if err != nil {
		log.Errorf("search: %v", err)
		return
	}
	elapsed := time.Since(start)
	log.Debugf("Took [ %v ] for query '%s'", elapsed, query)

	if len(items) == 0 {
		log.Warnf("No matches found for '%s'", query)
		return
	}

	log.Printf("Found %d matches for '%s':", len(items), query)
	for i, g := range items {
		clName := fmt.Sprintf("\033[38;5;75m%s\033[0m", g.DisplayName())
		locs := utils.Truncate(strings.Join(g.Locations, ", "), 32)
		log.Printf("%2d. %-44s %-10s %8.0f  %s", i+1, clName, g.Rarity, g.Value, locs)
	}
}
