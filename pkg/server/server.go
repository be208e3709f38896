package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/hexfall/lootserve/pkg/catalog"
	"github.com/hexfall/lootserve/pkg/config"
)

// Server handles the IPC for item catalog queries.
type Server struct {
	engine     *catalog.Engine
	config     *config.Config
	configPath string
	decoder    *msgpack.Decoder
	encoder    *msgpack.Encoder
}

// NewServer creates a catalog server using stdin/stdout for IPC.
func NewServer(engine *catalog.Engine, cfg *config.Config, configPath string) *Server {
	return &Server{
		engine:     engine,
		config:     cfg,
		configPath: configPath,
		decoder:    msgpack.NewDecoder(os.Stdin),
		encoder:    msgpack.NewEncoder(os.Stdout),
	}
}

// NewServerWithIO creates a server on explicit streams, used by tests.
func NewServerWithIO(engine *catalog.Engine, cfg *config.Config, configPath string, r io.Reader, w io.Writer) *Server {
	return &Server{
		engine:     engine,
		config:     cfg,
		configPath: configPath,
		decoder:    msgpack.NewDecoder(r),
		encoder:    msgpack.NewEncoder(w),
	}
}

// Start begins the request loop. It returns nil on EOF.
func (s *Server) Start() error {
	log.Debug("Starting server.")
	s.send(StatusResponse{Status: "ready", Stats: s.engine.Stats()})

	for {
		var req Request
		if err := s.decoder.Decode(&req); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			log.Errorf("Decoding request: %v", err)
			return err
		}
		s.handle(req)
	}
}

func (s *Server) handle(req Request) {
	switch req.Op {
	case "search":
		s.handleSearch(req)
	case "chips":
		s.handleChips(req)
	case "filter":
		s.handleFilter(req)
	case "reload":
		s.handleReload(req)
	case "config":
		s.handleConfig(req)
	case "status":
		s.send(StatusResponse{ID: req.ID, Status: "ok", Stats: s.engine.Stats()})
	default:
		s.sendError(req.ID, fmt.Sprintf("unknown op: %s", req.Op), 400)
	}
}

func (s *Server) handleSearch(req Request) {
	query := req.Query
	if len(query) < s.config.Server.MinQuery {
		s.sendError(req.ID, "query too short", 400)
		return
	}
	if len(query) > s.config.Server.MaxQuery {
		s.sendError(req.ID, fmt.Sprintf("query exceeds maximum length of %d", s.config.Server.MaxQuery), 400)
		return
	}

	limit := req.Limit
	if limit < 1 {
		limit = s.config.Search.DefaultLimit
	}
	if limit > s.config.Server.MaxLimit {
		limit = s.config.Server.MaxLimit
	}

	start := time.Now()
	items, err := s.engine.Search(query, limit)
	if err != nil {
		s.sendEngineError(req.ID, err)
		return
	}
	elapsed := time.Since(start)

	results := make([]ResultItem, len(items))
	for i, g := range items {
		results[i] = ResultItem{
			Name:      g.DisplayName(),
			Rarity:    g.Rarity,
			Type:      g.Type,
			Value:     g.Value,
			Locations: g.Locations,
			UsageHits: len(g.Usage),
			Icon:      g.Icon,
		}
	}

	s.send(SearchResponse{
		ID:           req.ID,
		Items:        results,
		Count:        len(results),
		ActiveFilter: s.engine.ActiveFilter(),
		TimeTaken:    elapsed.Microseconds(),
	})
}

func (s *Server) handleChips(req Request) {
	chips, err := s.engine.Chips()
	if err != nil {
		s.sendEngineError(req.ID, err)
		return
	}
	infos := make([]ChipInfo, len(chips))
	for i, c := range chips {
		infos[i] = ChipInfo{Key: c.Key, Count: c.Count}
	}
	s.send(ChipsResponse{ID: req.ID, Chips: infos})
}

func (s *Server) handleFilter(req Request) {
	if req.Key == "" {
		s.sendError(req.ID, "missing 'k' parameter", 400)
		return
	}
	active := s.engine.ToggleFilter(req.Key)
	s.send(FilterResponse{ID: req.ID, Active: active})
}

func (s *Server) handleReload(req Request) {
	if err := s.engine.Reload(context.Background()); err != nil {
		log.Errorf("Reload failed: %v", err)
		s.send(StatusResponse{ID: req.ID, Status: "error", Error: err.Error()})
		return
	}
	s.send(StatusResponse{ID: req.ID, Status: "ok", Stats: s.engine.Stats()})
}

func (s *Server) handleConfig(req Request) {
	switch req.Action {
	case "path":
		s.send(ConfigResponse{ID: req.ID, Status: "ok", Path: config.GetActiveConfigPath(s.configPath)})
	case "rebuild":
		if err := config.RebuildConfigFile(); err != nil {
			log.Errorf("Config rebuild failed: %v", err)
			s.send(ConfigResponse{ID: req.ID, Status: "error", Error: err.Error()})
			return
		}
		s.send(ConfigResponse{ID: req.ID, Status: "ok", Path: config.GetActiveConfigPath("")})
	default:
		s.sendError(req.ID, fmt.Sprintf("unknown config action: %s", req.Action), 400)
	}
}

func (s *Server) sendEngineError(id string, err error) {
	if errors.Is(err, catalog.ErrNotLoaded) {
		s.sendError(id, "dataset not loaded", 503)
		return
	}
	s.sendError(id, err.Error(), 500)
}

func (s *Server) send(response interface{}) {
	if err := s.encoder.Encode(response); err != nil {
		log.Errorf("Encoding response: %v", err)
	}
}

func (s *Server) sendError(id, message string, code int) {
	s.send(ErrorResponse{ID: id, Error: message, Code: code})
}
