// Copyright 2026, Zenith contributors.
// SPDX-License-Identifier: Apache-2.0

// Note, main.go needs to be in its own package directory; unlike the
// wails desktop build this binary has no go:embed asset requirement.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime"
	"sync"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/zenith-tui/zenith/internal/history"
	"github.com/zenith-tui/zenith/internal/prefs"
	"github.com/zenith-tui/zenith/internal/probe"
	"github.com/zenith-tui/zenith/internal/registry"
	"github.com/zenith-tui/zenith/internal/series"
	"github.com/zenith-tui/zenith/internal/tui"
	"github.com/zenith-tui/zenith/internal/zenithcmd"
)

// coreMetricIDs is the fixed part of the schema (per-nic/per-mount/per-gpu
// ids vary by host and are intentionally excluded; the
// SchemaHash covers only the metrics guaranteed present on every host).
var coreMetricIDs = []string{
	series.MetricCPUAggregate,
	series.MetricLoad1,
	series.MetricLoad5,
	series.MetricLoad15,
	series.MetricMemUsed,
	series.MetricMemAvailable,
	series.MetricSwapUsed,
}

var shutdownOnce sync.Once

func doShutdown(program *tea.Program, reason string) {
	shutdownOnce.Do(func() {
		program.Send(tui.ShutdownSignalMsg{Reason: reason})
	})
}

// installShutdownSignalHandlers mirrors cmd/server/main-server.go's
// sync.Once-guarded signal loop, adapted to push a ShutdownSignalMsg into
// the running bubbletea program rather than exiting the process directly
// (the Model's own shutdown path flushes history and closes stores).
func installShutdownSignalHandlers(program *tea.Program) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGHUP, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		for sig := range sigCh {
			doShutdown(program, fmt.Sprintf("got signal %v", sig))
			break
		}
	}()
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	log.SetPrefix("[zenith] ")

	zenithcmd.LoadDotEnv(os.Getenv("ZENITH_ENV_FILE"))

	exitCode := zenithcmd.Run(os.Args[1:], runDashboard)
	os.Exit(exitCode)
}

func runDashboard(cfg zenithcmd.Config) error {
	if err := os.MkdirAll(cfg.HomeDir, 0700); err != nil {
		return fmt.Errorf("creating home dir: %w", err)
	}

	caps := probe.New()
	refreshPeriod := time.Duration(cfg.RefreshRateMs) * time.Millisecond
	cores := runtime.NumCPU()

	retentionTicks := int64(3600) // deepest DefaultSpans stop
	store := series.NewStore(int(retentionTicks))
	reg := registry.New(registry.DefaultGraceTicks)

	runID := history.NewRunID()
	schemaHash := history.ComputeSchemaHash(coreMetricIDs)

	var hist *history.Store
	if !cfg.DisableHistory {
		h, err := history.Open(cfg.HomeDir, uint32(cfg.RefreshRateMs), schemaHash, history.DefaultRetentionBytes)
		if err != nil {
			log.Printf("[zenith] history disabled: %v\n", err)
		} else {
			hist = h
			loadHistory(context.Background(), hist, store)
			go hist.RunFlusher(context.Background(), history.DefaultFlushInterval)
		}
	}

	prefStore, err := prefs.Open(context.Background(), cfg.HomeDir)
	if err != nil {
		log.Printf("[zenith] preferences disabled: %v\n", err)
		prefStore = nil
	}

	m := tui.New(caps, store, reg, hist, prefStore, refreshPeriod, runID, schemaHash, cores)
	if prefStore != nil {
		restorePrefs(m, prefStore)
	}

	heights := zenithcmd.NewHeightWatcher(cfg)
	go heights.Run()
	defer heights.Close()

	program := tea.NewProgram(m, tea.WithAltScreen())
	installShutdownSignalHandlers(program)

	_, err = program.Run()
	return err
}

// loadHistory replays every on-disk segment matching hist's schema_hash
// into store before the first tick, so a restart resumes with the charts
// already populated instead of an empty window.
func loadHistory(ctx context.Context, hist *history.Store, store *series.Store) {
	records, err := hist.Load(ctx)
	if err != nil {
		log.Printf("[zenith] history load failed: %v\n", err)
		return
	}
	for _, rec := range records {
		for id, v := range rec.Values {
			store.Append(id, rec.Tick, v)
		}
	}
	if len(records) > 0 {
		log.Printf("[zenith] replayed %d history records\n", len(records))
	}
}

func restorePrefs(m *tui.Model, prefStore *prefs.Store) {
	all, err := prefStore.All(context.Background())
	if err != nil {
		log.Printf("[zenith] could not read preferences: %v\n", err)
		return
	}
	if sortKey, ok := all[prefs.KeySortKey]; ok {
		m.SetSortKey(tui.ResolveSortKey(sortKey))
	}
}
