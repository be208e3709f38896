// Copyright 2026 The LootServe Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package main implements the item catalog server and CLI [DBG] application.

LootServe loads a delimited item table (optionally joined with a JSON stat
sidecar), aggregates duplicate rows into grouped items, and answers
prefix-then-fuzzy name queries with filter-chip narrowing. It can operate as
a MessagePack IPC server for integration with frontends, or as a CLI
application for testing and debugging.

# Usage

Start the server against a local export:

	lootserve -data data/items.csv

Join a JSON stat sidecar and enable debug logging:

	lootserve -data data/items.csv -meta data/items.json -d

Run in CLI mode for interactive testing:

	lootserve -data data/items.csv -c -limit 10

Sources can be local paths or http(s) URLs; gzip-compressed files are
decompressed transparently. Both sources are fetched concurrently and the
engine serves no query until the whole dataset is aggregated. A failed load
disables querying entirely until a successful reload; no partial dataset is
ever served.

# Configuration

Runtime configuration is managed through a TOML file that supports server
limits, dataset sources, and column-name overrides:

	[server]
	max_limit = 50
	min_query = 1
	max_query = 60

	[data]
	data_path = "data/items.csv"
	meta_path = ""

	[data.columns]
	name = "Name"
	location = "LocationType"

The config file is automatically created with defaults if it doesn't exist.

# IPC Protocol

The server communicates via MessagePack over stdin/stdout. Send a search
request:

	{"id": "req1", "op": "search", "q": "circuit", "l": 20}

Toggle a filter chip (same key twice clears it):

	{"id": "flt1", "op": "filter", "k": "rarity:rare"}

Other ops: "chips", "reload", "status". See the server package docs for the
full message reference.
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/hexfall/lootserve/internal/cli"
	"github.com/hexfall/lootserve/internal/logger"
	"github.com/hexfall/lootserve/pkg/catalog"
	"github.com/hexfall/lootserve/pkg/config"
	"github.com/hexfall/lootserve/pkg/dataset"
	"github.com/hexfall/lootserve/pkg/server"
)

const (
	Version = "0.4.0"
	AppName = "lootserve"
	gh      = "https://github.com/hexfall/lootserve"
)

// sigHandler is a simple handler for OS signals to exit normally.
func sigHandler() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		fmt.Fprintf(os.Stderr, "\nExiting...\n")
		os.Exit(0)
	}()
}

// main wires config, engine and serving mode together. It does not
// implement logic for them and only manages the flow.
func main() {
	sigHandler()
	defaultConfig := config.DefaultConfig()

	showVersion := flag.Bool("version", false, "Show current version")
	dataSource := flag.String("data", "", "Item table path or URL (overrides config)")
	metaSource := flag.String("meta", "", "JSON stat sidecar path or URL (overrides config)")
	configPath := flag.String("config", "", "Custom config file path")
	debugMode := flag.Bool("d", false, "Toggle debug mode")
	cliMode := flag.Bool("c", false, "Run CLI -- useful for testing and debugging")
	limit := flag.Int("limit", defaultConfig.Search.DefaultLimit, "Number of matches to return")

	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	if *debugMode {
		log.SetLevel(log.DebugLevel)
		log.SetReportTimestamp(true)
	} else {
		log.SetLevel(log.WarnLevel)
	}

	resolvedConfigPath := *configPath
	if resolvedConfigPath == "" {
		var err error
		resolvedConfigPath, err = config.GetDefaultConfigPath()
		if err != nil {
			log.Fatalf("Failed to determine config path: (%v)", err)
		}
	}
	log.Debugf("Using config file: (%s)", resolvedConfigPath)

	appConfig, err := config.InitConfig(resolvedConfigPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if *dataSource != "" {
		appConfig.Data.DataPath = *dataSource
	}
	if *metaSource != "" {
		appConfig.Data.MetaPath = *metaSource
	}

	log.Debugf("Using data source: %s (sidecar: %q)", appConfig.Data.DataPath, appConfig.Data.MetaPath)

	loader := dataset.NewLoader(appConfig.Data.DataPath, appConfig.Data.MetaPath)
	engine := catalog.NewEngine(loader, appConfig.Data.Columns)

	if err := engine.Reload(context.Background()); err != nil {
		log.Fatalf("Failed to load dataset: %v", err)
	}
	log.Debug("Engine init done")

	// CLI is mainly used for testing and dbg purposes. Any new features or
	// changes should be tested in CLI mode first.
	if *cliMode {
		log.SetReportTimestamp(false)
		inputHandler := cli.NewInputHandler(engine,
			appConfig.Server.MinQuery, appConfig.Server.MaxQuery, *limit)
		if err := inputHandler.Start(); err != nil {
			log.Fatalf("CLI error: %v", err)
		}
		return
	}

	log.Debug("spawning IPC")
	srv := server.NewServer(engine, appConfig, resolvedConfigPath)

	showStartupInfo(appConfig.Data.DataPath, engine)

	if err := srv.Start(); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func printVersion() {
	out := logger.New("")

	styles := log.DefaultStyles()
	styles.Values["version"] = lipgloss.NewStyle().Bold(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
	styles.Values["gh"] = lipgloss.NewStyle().Italic(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
	out.SetStyles(styles)

	out.Print("")
	out.Print("[ LootServe ] Serves really fast item lookups!")
	out.Print("", "version", Version)
	out.Print("")
	out.Print("use -h or --help to see available options")
	out.Print("Github Repo", "gh", gh)
}

// showStartupInfo displays some basic info about the init process.
func showStartupInfo(dataSource string, engine *catalog.Engine) {
	pid := os.Getpid()
	currentLevel := log.GetLevel()
	log.SetLevel(log.InfoLevel)

	stats := engine.Stats()

	println("===========")
	println(" LootServe ")
	println("===========")
	log.Infof("Version: %s", Version)
	log.Infof("Process ID: [ %d ]", pid)
	log.Infof("data source: ( %s )", dataSource)
	log.Infof("items: %d (from %d rows)", stats["items"], stats["rows"])
	log.Info("status: ready")
	println("===========")
	println("Press Ctrl+C to exit")

	log.SetLevel(currentLevel)
}
