// Copyright 2026, Zenith contributors.
// SPDX-License-Identifier: Apache-2.0

package sampler

import (
	"context"
	"errors"
	"testing"

	"github.com/zenith-tui/zenith/internal/probe"
	"github.com/zenith-tui/zenith/internal/zmodel"
)

// fakeCaps is a scripted probe.Capabilities for exercising the scheduler
// without touching the real OS.
type fakeCaps struct {
	nics      []zmodel.NicCounters
	netErr    error
	mounts    []zmodel.MountCounters
	procs     []zmodel.ProcessSample
	procErr   error
	battery   *zmodel.Battery
	batteryErr error
}

func (f *fakeCaps) SampleCPU(ctx context.Context) ([]float64, float64, [3]float64, error) {
	return []float64{10, 20}, 15, [3]float64{1, 1, 1}, nil
}
func (f *fakeCaps) SampleMemory(ctx context.Context) (probe.MemInfo, error) {
	return probe.MemInfo{Total: 100, Used: 50, Available: 50}, nil
}
func (f *fakeCaps) ListNetworkInterfaces(ctx context.Context) ([]zmodel.NicCounters, error) {
	return f.nics, f.netErr
}
func (f *fakeCaps) ListMounts(ctx context.Context) ([]zmodel.MountCounters, error) {
	return f.mounts, nil
}
func (f *fakeCaps) SampleBattery(ctx context.Context) (*zmodel.Battery, error) {
	return f.battery, f.batteryErr
}
func (f *fakeCaps) SampleGPUs(ctx context.Context) ([]zmodel.GPUInfo, error) { return nil, nil }
func (f *fakeCaps) SampleProcesses(ctx context.Context) ([]zmodel.ProcessSample, error) {
	return f.procs, f.procErr
}
func (f *fakeCaps) SendSignal(pid int32, sig int) error       { return nil }
func (f *fakeCaps) Renice(pid int32, nice int) error          { return nil }
func (f *fakeCaps) ResolveUsername(uid uint32) (string, bool) { return "", false }

func TestTickIncrementsAndFillsAggregates(t *testing.T) {
	caps := &fakeCaps{}
	s := New(caps, 0)
	snap := s.Tick(context.Background(), "run-1", 0xABCD)
	if snap.Tick != 1 {
		t.Fatalf("expected first tick index 1, got %d", snap.Tick)
	}
	if snap.CPUAggregate != 15 {
		t.Fatalf("expected aggregate 15, got %v", snap.CPUAggregate)
	}
	if snap.RunID != "run-1" || snap.SchemaHash != 0xABCD {
		t.Fatalf("expected run metadata carried through, got %+v", snap)
	}
	snap2 := s.Tick(context.Background(), "run-1", 0xABCD)
	if snap2.Tick != 2 {
		t.Fatalf("expected second tick index 2, got %d", snap2.Tick)
	}
}

func TestNetRateFromCounterDelta(t *testing.T) {
	caps := &fakeCaps{nics: []zmodel.NicCounters{{Name: "eth0", RxBytes: 1000, TxBytes: 500}}}
	s := New(caps, 0)
	s.Tick(context.Background(), "r", 0) // first tick: no prior baseline, rate 0
	caps.nics = []zmodel.NicCounters{{Name: "eth0", RxBytes: 3000, TxBytes: 500}}
	snap := s.Tick(context.Background(), "r", 0)
	if len(snap.Nics) != 1 {
		t.Fatalf("expected 1 nic, got %d", len(snap.Nics))
	}
	if snap.Nics[0].RxBytesPerSec <= 0 {
		t.Fatalf("expected positive rx rate after counter increase, got %v", snap.Nics[0].RxBytesPerSec)
	}
}

func TestNetCounterResetYieldsZeroRate(t *testing.T) {
	caps := &fakeCaps{nics: []zmodel.NicCounters{{Name: "eth0", RxBytes: 5000}}}
	s := New(caps, 0)
	s.Tick(context.Background(), "r", 0)
	caps.nics = []zmodel.NicCounters{{Name: "eth0", RxBytes: 100}}
	snap := s.Tick(context.Background(), "r", 0)
	if snap.Nics[0].RxBytesPerSec != 0 {
		t.Fatalf("expected rate 0 after counter reset, got %v", snap.Nics[0].RxBytesPerSec)
	}
}

func TestProbeErrorMarksAbsentWithoutAbortingTick(t *testing.T) {
	caps := &fakeCaps{netErr: errors.New("boom")}
	s := New(caps, 0)
	snap := s.Tick(context.Background(), "r", 0)
	if !snap.Absent.Net {
		t.Fatalf("expected Absent.Net to be set")
	}
	if snap.Absent.CPU || snap.Absent.Mem {
		t.Fatalf("a net failure must not mark unrelated groups absent, got %+v", snap.Absent)
	}
}

func TestHalfRateProcessReusesLastSample(t *testing.T) {
	caps := &fakeCaps{procs: []zmodel.ProcessSample{{PID: 1, Command: "a"}}}
	s := New(caps, 0)
	s.HalfRateProcess = true

	snap1 := s.Tick(context.Background(), "r", 0) // tick 1: odd, fresh sample
	if snap1.Absent.Process {
		t.Fatalf("odd tick should sample fresh")
	}
	caps.procs = []zmodel.ProcessSample{{PID: 1, Command: "a"}, {PID: 2, Command: "b"}}
	snap2 := s.Tick(context.Background(), "r", 0) // tick 2: even, reused
	if !snap2.Absent.Process {
		t.Fatalf("even tick should be flagged as reused/stale")
	}
	if len(snap2.Processes) != 1 {
		t.Fatalf("expected the stale 1-process snapshot to be reused, got %d", len(snap2.Processes))
	}
}

func TestProcessSampleErrorFallsBackToLastGoodSample(t *testing.T) {
	caps := &fakeCaps{procs: []zmodel.ProcessSample{{PID: 7, Command: "x"}}}
	s := New(caps, 0)
	s.Tick(context.Background(), "r", 0)
	caps.procErr = errors.New("proc read failed")
	snap := s.Tick(context.Background(), "r", 0)
	if !snap.Absent.Process {
		t.Fatalf("expected Absent.Process on probe error")
	}
	if len(snap.Processes) != 1 {
		t.Fatalf("expected last-known process sample carried through on failure")
	}
}
