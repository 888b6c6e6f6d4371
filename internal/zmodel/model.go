// Copyright 2026, Zenith contributors.
// SPDX-License-Identifier: Apache-2.0

// Package zmodel defines the data types sampled, stored, and rendered on
// every tick: Snapshot, ProcessSample, ProcessRecord, and their nested
// metric groups.
package zmodel

import "time"

// BatteryState is the charge/discharge state of the primary battery.
type BatteryState int

const (
	BatteryUnknown BatteryState = iota
	BatteryCharging
	BatteryDischarging
	BatteryFull
)

func (s BatteryState) String() string {
	switch s {
	case BatteryCharging:
		return "charging"
	case BatteryDischarging:
		return "discharging"
	case BatteryFull:
		return "full"
	default:
		return "unknown"
	}
}

// NicCounters holds cumulative per-interface network counters as reported
// by the probe layer, before rate derivation.
type NicCounters struct {
	Name    string
	RxBytes uint64
	TxBytes uint64
	RxPkts  uint64
	TxPkts  uint64
}

// NicRate is a NicCounters entry plus its derived per-second rates.
type NicRate struct {
	NicCounters
	RxBytesPerSec float64
	TxBytesPerSec float64
	RxPktsPerSec  float64
	TxPktsPerSec  float64
}

// MountCounters holds cumulative per-mount disk counters.
type MountCounters struct {
	MountPoint string
	Device     string
	FSType     string
	Total      uint64
	Available  uint64
	ReadBytes  uint64
	WriteBytes uint64
}

// MountRate is a MountCounters entry plus derived throughput.
type MountRate struct {
	MountCounters
	ReadBytesPerSec  float64
	WriteBytesPerSec float64
	UsedPercent      float64
}

// Battery describes the primary battery, when present.
type Battery struct {
	Charge       float64 // 0..1
	State        BatteryState
	TimeToFull   time.Duration // 0 if not charging / unknown
	TimeToEmpty  time.Duration // 0 if not discharging / unknown
	PowerWatts   float64
}

// GPUInfo describes one GPU device snapshot.
type GPUInfo struct {
	Index      int
	Name       string
	UtilPct    float64
	MemUsed    uint64
	MemTotal   uint64
	TempC      float64
	EncoderPct float64
	DecoderPct float64
}

// ProcStatus is the coarse process run state, mirrors the POSIX ps codes.
type ProcStatus byte

const (
	ProcRunning  ProcStatus = 'R'
	ProcSleeping ProcStatus = 'S'
	ProcDiskWait ProcStatus = 'D'
	ProcZombie   ProcStatus = 'Z'
	ProcStopped  ProcStatus = 'T'
	ProcIdle     ProcStatus = 'I'
)

// ProcessSample is the one-shot, per-tick view of a single process as
// returned by the probe layer. It carries no history; ProcessRegistry
// folds consecutive samples of the same identity into a ProcessRecord.
type ProcessSample struct {
	PID            int32
	PPID           int32
	UID            uint32
	Username       string // resolved via Capabilities.ResolveUsername, "" if unresolvable
	Command        string
	Cmdline        string
	Status         ProcStatus
	CPUTimeUser    time.Duration
	CPUTimeSystem  time.Duration
	RSSBytes       uint64
	VSSBytes       uint64
	ReadBytesCum   uint64
	WriteBytesCum  uint64
	Priority       int32
	Nice           int32
	Threads        int32
	StartTime      int64 // unix millis, part of identity
}

// Identity returns the (pid, start_time) tuple that uniquely identifies a
// process over its lifetime, immune to PID reuse.
func (p ProcessSample) Identity() ProcessIdentity {
	return ProcessIdentity{PID: p.PID, StartTime: p.StartTime}
}

// ProcessIdentity is the stable key that survives PID reuse.
type ProcessIdentity struct {
	PID       int32
	StartTime int64
}

// Snapshot is the immutable, per-tick composite of every probe result.
type Snapshot struct {
	Tick      int64
	WallClock time.Time
	// DeltaSec is the real wall-clock gap since the previous tick (0 for
	// the first tick), used for rate derivation instead of the nominal
	// tick period so a skipped/coalesced tick doesn't skew cpu%/IO rates.
	DeltaSec float64

	CPUCoreUtilPct []float64
	CPUAggregate   float64
	LoadAvg1       float64
	LoadAvg5       float64
	LoadAvg15      float64

	MemTotal     uint64
	MemUsed      uint64
	MemAvailable uint64
	SwapUsed     uint64

	Nics   []NicRate
	Mounts []MountRate

	Battery   *Battery // nil if absent
	GPUs      []GPUInfo

	Processes []ProcessSample

	// Absent marks metric groups the probe layer could not sample this
	// tick (per-field, not per-Snapshot): downstream carries the last
	// known value and draws a gap.
	Absent AbsentSet

	SchemaHash uint64
	RunID      string
}

// AbsentSet records which top-level metric groups failed to sample on a
// given tick, so the renderer can grey out a section instead of drawing
// a zero.
type AbsentSet struct {
	CPU     bool
	Mem     bool
	Net     bool
	Disk    bool
	Battery bool
	GPU     bool
	Process bool
}

// ProcessRecord is the registry's persistent-across-ticks entity for one
// process identity.
type ProcessRecord struct {
	Identity   ProcessIdentity
	Latest     ProcessSample
	CPUPercent float64 // EWMA-smoothed
	ReadRate   float64 // bytes/sec, simple delta
	WriteRate  float64 // bytes/sec, simple delta
	LastSeenTick int64
	FirstSeenTick int64
	Focused    bool
	Marked     bool
	// MissingSinceTick is set once the identity disappears from a poll; the
	// record lingers until eviction per the grace-period rule.
	MissingSinceTick int64
	missing          bool
}

// Missing reports whether this record's identity was absent from the
// most recent process poll.
func (r *ProcessRecord) Missing() bool { return r.missing }

// MarkMissing flags the record as unseen in the current poll, recording
// the tick it first went missing (idempotent).
func (r *ProcessRecord) MarkMissing(tick int64) {
	if !r.missing {
		r.missing = true
		r.MissingSinceTick = tick
	}
}

// MarkSeen clears the missing flag; callers must still update Latest/rates.
func (r *ProcessRecord) MarkSeen(tick int64) {
	r.missing = false
	r.LastSeenTick = tick
}
