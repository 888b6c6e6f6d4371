// Copyright 2026, Zenith contributors.
// SPDX-License-Identifier: Apache-2.0

// Package tui is the Renderer Driver + Input & Signal Loop: a bubbletea
// Model whose Update multiplexes terminal input, the tick timer, and
// tea.WindowSizeMsg (the SIGWINCH-equivalent bubbletea already handles)
// on one goroutine — exactly the single-threaded cooperative loop
// the core loop requires.
package tui

import (
	"context"
	"log"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/zenith-tui/zenith/internal/history"
	"github.com/zenith-tui/zenith/internal/prefs"
	"github.com/zenith-tui/zenith/internal/probe"
	"github.com/zenith-tui/zenith/internal/registry"
	"github.com/zenith-tui/zenith/internal/sampler"
	"github.com/zenith-tui/zenith/internal/series"
	"github.com/zenith-tui/zenith/internal/uistate"
	"github.com/zenith-tui/zenith/internal/zmodel"
)

const visibleColumns = 80

type tickMsg time.Time

// ShutdownSignalMsg is sent by the entrypoint's OS signal handler
// (SIGHUP/SIGTERM/SIGINT) to request the same clean shutdown sequence a
// 'q' keypress triggers: flush history, close stores, then quit once the
// in-flight flush command completes.
type ShutdownSignalMsg struct{ Reason string }

// Model is the pure-ish Elm-architecture state the Renderer Driver
// renders each frame: (UI state, Store, Registry, latest Snapshot,
// terminal size).
type Model struct {
	caps      probe.Capabilities
	sched     *sampler.Scheduler
	store     *series.Store
	reg       *registry.Registry
	ui        *uistate.Machine
	hist      *history.Store
	prefStore *prefs.Store

	refreshPeriod time.Duration
	runID         string
	schemaHash    uint64
	cores         int

	latest        *zmodel.Snapshot
	width         int
	height        int
	quitRequested bool
	sortKey       registry.SortKey

	banner      string
	bannerSetAt time.Time
}

// bannerTimeout is how long a footer banner stays up before it
// auto-dismisses on its own, independent of a keystroke clearing it early.
const bannerTimeout = 5 * time.Second

// setBanner posts a one-line, user-visible footer message that clears
// itself after bannerTimeout or on the next keystroke, whichever is first.
func (m *Model) setBanner(msg string) {
	m.banner = msg
	m.bannerSetAt = time.Now()
}

// dismissBanner clears any standing banner; called on every keystroke.
func (m *Model) dismissBanner() {
	m.banner = ""
}

// New constructs the Model. caps, store and reg are already wired by the
// entrypoint (cmd/zenith's runDashboard); hist/prefStore may be nil when
// --disable-history is set or the prefs DB failed to open (degraded, not
// fatal: the dashboard carries on without optional state).
func New(caps probe.Capabilities, store *series.Store, reg *registry.Registry, hist *history.Store, prefStore *prefs.Store, refreshPeriod time.Duration, runID string, schemaHash uint64, cores int) *Model {
	return &Model{
		caps:          caps,
		sched:         sampler.New(caps, refreshPeriod),
		store:         store,
		reg:           reg,
		ui:            uistate.New(0),
		hist:          hist,
		prefStore:     prefStore,
		refreshPeriod: refreshPeriod,
		runID:         runID,
		schemaHash:    schemaHash,
		cores:         cores,
		sortKey:       registry.SortByCPU,
	}
}

// SetSortKey changes which field Registry.View sorts process rows by
// (the registry view's sort contract); used when restoring a persisted
// preference at startup.
func (m *Model) SetSortKey(key registry.SortKey) { m.sortKey = key }

func (m *Model) Init() tea.Cmd {
	return tea.Tick(m.refreshPeriod, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil
	case tickMsg:
		m.onTick()
		if m.quitRequested {
			return m, tea.Quit
		}
		return m, tea.Tick(m.refreshPeriod, func(t time.Time) tea.Msg { return tickMsg(t) })
	case tea.KeyMsg:
		m.handleKey(msg)
		if m.ui.State == uistate.Quit {
			m.quitRequested = true
			return m, m.shutdownCmd()
		}
		return m, nil
	case ShutdownSignalMsg:
		log.Printf("shutting down: %s\n", msg.Reason)
		m.ui.RequestQuit()
		m.quitRequested = true
		return m, m.shutdownCmd()
	}
	return m, nil
}

func (m *Model) onTick() {
	snap := m.sched.Tick(context.Background(), m.runID, m.schemaHash)
	m.latest = snap

	if m.banner != "" && time.Since(m.bannerSetAt) > bannerTimeout {
		m.dismissBanner()
	}

	m.reg.Reconcile(snap.Tick, snap.DeltaSec, m.cores, snap.Processes)

	appendScalar(m.store, series.MetricCPUAggregate, snap.Tick, snap.CPUAggregate, snap.Absent.CPU)
	for i, pct := range snap.CPUCoreUtilPct {
		appendScalar(m.store, series.CPUCoreID(i), snap.Tick, pct, snap.Absent.CPU)
	}
	appendScalar(m.store, series.MetricLoad1, snap.Tick, snap.LoadAvg1, snap.Absent.CPU)
	appendScalar(m.store, series.MetricLoad5, snap.Tick, snap.LoadAvg5, snap.Absent.CPU)
	appendScalar(m.store, series.MetricLoad15, snap.Tick, snap.LoadAvg15, snap.Absent.CPU)
	appendScalar(m.store, series.MetricMemUsed, snap.Tick, float64(snap.MemUsed), snap.Absent.Mem)
	appendScalar(m.store, series.MetricMemAvailable, snap.Tick, float64(snap.MemAvailable), snap.Absent.Mem)
	appendScalar(m.store, series.MetricSwapUsed, snap.Tick, float64(snap.SwapUsed), snap.Absent.Mem)
	for _, n := range snap.Nics {
		appendScalar(m.store, series.NicRxID(n.Name), snap.Tick, n.RxBytesPerSec, snap.Absent.Net)
		appendScalar(m.store, series.NicTxID(n.Name), snap.Tick, n.TxBytesPerSec, snap.Absent.Net)
	}
	for _, mnt := range snap.Mounts {
		appendScalar(m.store, series.MountReadID(mnt.MountPoint), snap.Tick, mnt.ReadBytesPerSec, snap.Absent.Disk)
		appendScalar(m.store, series.MountWriteID(mnt.MountPoint), snap.Tick, mnt.WriteBytesPerSec, snap.Absent.Disk)
	}
	if snap.Battery != nil {
		appendScalar(m.store, series.MetricBatteryCharge, snap.Tick, snap.Battery.Charge*100, false)
		appendScalar(m.store, series.MetricBatteryPower, snap.Tick, snap.Battery.PowerWatts, false)
	}
	for _, g := range snap.GPUs {
		appendScalar(m.store, series.GPUUtilID(g.Index), snap.Tick, g.UtilPct, snap.Absent.GPU)
		appendScalar(m.store, series.GPUMemID(g.Index), snap.Tick, float64(g.MemUsed), snap.Absent.GPU)
	}

	m.ui.AdvanceZoom(snap.Tick)

	if m.hist != nil {
		m.hist.Append(history.Record{
			Tick:      snap.Tick,
			WallClock: snap.WallClock.UnixMilli(),
			Values:    snapshotToValues(snap),
		})
	}
}

func appendScalar(store *series.Store, id string, tick int64, value float64, absent bool) {
	if absent {
		return
	}
	store.Append(id, tick, value)
}

func snapshotToValues(snap *zmodel.Snapshot) map[string]float64 {
	values := map[string]float64{
		series.MetricCPUAggregate:  snap.CPUAggregate,
		series.MetricLoad1:         snap.LoadAvg1,
		series.MetricLoad5:         snap.LoadAvg5,
		series.MetricLoad15:        snap.LoadAvg15,
		series.MetricMemUsed:       float64(snap.MemUsed),
		series.MetricMemAvailable:  float64(snap.MemAvailable),
		series.MetricSwapUsed:      float64(snap.SwapUsed),
	}
	for _, n := range snap.Nics {
		values[series.NicRxID(n.Name)] = n.RxBytesPerSec
		values[series.NicTxID(n.Name)] = n.TxBytesPerSec
	}
	for _, mnt := range snap.Mounts {
		values[series.MountReadID(mnt.MountPoint)] = mnt.ReadBytesPerSec
		values[series.MountWriteID(mnt.MountPoint)] = mnt.WriteBytesPerSec
	}
	return values
}

// shutdownCmd requests a final history flush before the bubbletea program
// exits, mirroring main-server.go's doShutdown's "flush then exit" order.
func (m *Model) shutdownCmd() tea.Cmd {
	return func() tea.Msg {
		if m.hist != nil {
			if _, err := m.hist.Flush(context.Background()); err != nil {
				log.Printf("[tui] shutdown flush failed: %v\n", err)
			}
			if stats := m.hist.Stats(); stats.Warnings > 0 || stats.FlushErrors > 0 {
				log.Printf("[tui] history had %d warnings, %d flush errors this run\n", stats.Warnings, stats.FlushErrors)
			}
			m.hist.Close()
		}
		if m.prefStore != nil {
			m.savePrefs()
			m.prefStore.Close()
		}
		return nil
	}
}

func (m *Model) savePrefs() {
	ctx := context.Background()
	m.prefStore.Set(ctx, prefs.KeyFilterText, m.ui.FilterCommitted)
	m.prefStore.Set(ctx, prefs.KeyFocusedSection, m.ui.FocusedSection.String())
	m.prefStore.Set(ctx, prefs.KeySortKey, m.sortKey.String())
}
