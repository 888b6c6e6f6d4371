// Copyright 2026, Zenith contributors.
// SPDX-License-Identifier: Apache-2.0

// Package sampler drives the fixed-tick cadence that composes probe
// results into Snapshots, generalizing
// pkg/pstrack/pstrack.go's ProcessTable.run ticker-plus-gap-detection loop
// from a hardcoded 1s process-only poll into the full, configurable
// multi-probe tick.
package sampler

import (
	"context"
	"log"
	"time"

	"github.com/zenith-tui/zenith/internal/probe"
	"github.com/zenith-tui/zenith/internal/zmodel"
)

// counterSource tracks the previous cumulative value for one rate-derived
// counter, so reset detection only logs once per source.
type counterSource struct {
	prev        uint64
	haveSample  bool
	loggedReset bool
}

func (c *counterSource) rate(cur uint64, deltaSec float64, name string) float64 {
	if !c.haveSample {
		c.haveSample = true
		c.prev = cur
		return 0
	}
	defer func() { c.prev = cur }()
	if cur < c.prev {
		if !c.loggedReset {
			log.Printf("[sampler] counter reset on %s (prev=%d cur=%d), rate held at 0\n", name, c.prev, cur)
			c.loggedReset = true
		}
		return 0
	}
	c.loggedReset = false
	if deltaSec <= 0 {
		return 0
	}
	return float64(cur-c.prev) / deltaSec
}

// Scheduler owns the wall-clock cadence and composes Snapshots.
type Scheduler struct {
	caps   probe.Capabilities
	period time.Duration

	tick       int64
	lastWall   time.Time
	nicSources map[string]*nicCounters
	mountSources map[string]*mountCounters

	// HalfRateProcess, when true, samples the process table every other
	// tick instead of every tick (a defensive option for heavier hosts).
	HalfRateProcess bool
	lastProcessSamples []zmodel.ProcessSample

	// ProbeBudgetWarnThreshold is the fraction of the tick period a
	// probe round can consume before the scheduler logs a slow-tick
	// warning if it exceeds 60% of the tick period.
	ProbeBudgetWarnThreshold float64
}

type nicCounters struct {
	rxBytes, txBytes, rxPkts, txPkts counterSource
}

type mountCounters struct {
	readBytes, writeBytes counterSource
}

// New creates a Scheduler sampling via caps at the given refresh period.
func New(caps probe.Capabilities, period time.Duration) *Scheduler {
	return &Scheduler{
		caps:                     caps,
		period:                   period,
		nicSources:               make(map[string]*nicCounters),
		mountSources:             make(map[string]*mountCounters),
		ProbeBudgetWarnThreshold: 0.6,
	}
}

// Tick produces the next Snapshot. The tick counter always increments by
// exactly one even if wall-clock time jumped (a skipped/coalesced tick,
// the elapsed Δt used for rate math is the real wall-clock
// delta, not period*ticks_skipped.
func (s *Scheduler) Tick(ctx context.Context, runID string, schemaHash uint64) *zmodel.Snapshot {
	start := time.Now()
	deltaSec := 0.0
	if !s.lastWall.IsZero() {
		deltaSec = start.Sub(s.lastWall).Seconds()
	}
	s.lastWall = start
	s.tick++

	snap := &zmodel.Snapshot{
		Tick:       s.tick,
		WallClock:  start,
		DeltaSec:   deltaSec,
		RunID:      runID,
		SchemaHash: schemaHash,
	}

	// Cheap aggregates first, process table last ("invoke
	// probes in an ordering that amortises cost").
	s.sampleCPU(ctx, snap)
	s.sampleMemory(ctx, snap)
	s.sampleNet(ctx, snap, deltaSec)
	s.sampleDisk(ctx, snap, deltaSec)
	s.sampleBattery(ctx, snap)
	s.sampleGPU(ctx, snap)
	s.sampleProcesses(ctx, snap)

	elapsed := time.Since(start)
	if s.period > 0 && elapsed > time.Duration(s.ProbeBudgetWarnThreshold*float64(s.period)) {
		log.Printf("[sampler] tick %d took %v (budget %v), consider half-rate process sampling\n", s.tick, elapsed, s.period)
	}
	return snap
}

func (s *Scheduler) sampleCPU(ctx context.Context, snap *zmodel.Snapshot) {
	perCore, aggregate, load, err := s.caps.SampleCPU(ctx)
	if err != nil {
		snap.Absent.CPU = true
		return
	}
	snap.CPUCoreUtilPct = perCore
	snap.CPUAggregate = aggregate
	snap.LoadAvg1, snap.LoadAvg5, snap.LoadAvg15 = load[0], load[1], load[2]
}

func (s *Scheduler) sampleMemory(ctx context.Context, snap *zmodel.Snapshot) {
	mi, err := s.caps.SampleMemory(ctx)
	if err != nil {
		snap.Absent.Mem = true
		return
	}
	snap.MemTotal = mi.Total
	snap.MemUsed = mi.Used
	snap.MemAvailable = mi.Available
	snap.SwapUsed = mi.SwapUsed
}

func (s *Scheduler) sampleNet(ctx context.Context, snap *zmodel.Snapshot, deltaSec float64) {
	nics, err := s.caps.ListNetworkInterfaces(ctx)
	if err != nil {
		snap.Absent.Net = true
		return
	}
	out := make([]zmodel.NicRate, 0, len(nics))
	for _, n := range nics {
		src, ok := s.nicSources[n.Name]
		if !ok {
			src = &nicCounters{}
			s.nicSources[n.Name] = src
		}
		out = append(out, zmodel.NicRate{
			NicCounters:   n,
			RxBytesPerSec: src.rxBytes.rate(n.RxBytes, deltaSec, "net:"+n.Name+":rx"),
			TxBytesPerSec: src.txBytes.rate(n.TxBytes, deltaSec, "net:"+n.Name+":tx"),
			RxPktsPerSec:  src.rxPkts.rate(n.RxPkts, deltaSec, "net:"+n.Name+":rxpkts"),
			TxPktsPerSec:  src.txPkts.rate(n.TxPkts, deltaSec, "net:"+n.Name+":txpkts"),
		})
	}
	snap.Nics = out
}

func (s *Scheduler) sampleDisk(ctx context.Context, snap *zmodel.Snapshot, deltaSec float64) {
	mounts, err := s.caps.ListMounts(ctx)
	if err != nil {
		snap.Absent.Disk = true
		return
	}
	out := make([]zmodel.MountRate, 0, len(mounts))
	for _, m := range mounts {
		src, ok := s.mountSources[m.MountPoint]
		if !ok {
			src = &mountCounters{}
			s.mountSources[m.MountPoint] = src
		}
		var usedPct float64
		if m.Total > 0 {
			usedPct = float64(m.Total-m.Available) / float64(m.Total) * 100.0
		}
		out = append(out, zmodel.MountRate{
			MountCounters:    m,
			ReadBytesPerSec:  src.readBytes.rate(m.ReadBytes, deltaSec, "disk:"+m.MountPoint+":read"),
			WriteBytesPerSec: src.writeBytes.rate(m.WriteBytes, deltaSec, "disk:"+m.MountPoint+":write"),
			UsedPercent:      usedPct,
		})
	}
	snap.Mounts = out
}

func (s *Scheduler) sampleBattery(ctx context.Context, snap *zmodel.Snapshot) {
	b, err := s.caps.SampleBattery(ctx)
	if err != nil || b == nil {
		snap.Absent.Battery = true
		return
	}
	snap.Battery = b
}

func (s *Scheduler) sampleGPU(ctx context.Context, snap *zmodel.Snapshot) {
	gpus, err := s.caps.SampleGPUs(ctx)
	if err != nil {
		snap.Absent.GPU = true
		return
	}
	snap.GPUs = gpus
}

func (s *Scheduler) sampleProcesses(ctx context.Context, snap *zmodel.Snapshot) {
	if s.HalfRateProcess && s.tick%2 == 0 && s.lastProcessSamples != nil {
		snap.Processes = s.lastProcessSamples
		snap.Absent.Process = true // UI must not depend on fresh data every tick
		return
	}
	procs, err := s.caps.SampleProcesses(ctx)
	if err != nil {
		snap.Absent.Process = true
		if s.lastProcessSamples != nil {
			snap.Processes = s.lastProcessSamples
		}
		return
	}
	for i := range procs {
		if name, ok := s.caps.ResolveUsername(procs[i].UID); ok {
			procs[i].Username = name
		}
	}
	s.lastProcessSamples = procs
	snap.Processes = procs
}

// TickIndex returns the most recently produced tick index (0 before the
// first Tick call).
func (s *Scheduler) TickIndex() int64 { return s.tick }
