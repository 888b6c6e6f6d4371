// Copyright 2026, Zenith contributors.
// SPDX-License-Identifier: Apache-2.0

package series

import "fmt"

// Store owns exactly one Series per registered metric id
// invariant: "exactly one Series per registered metric id; ids are
// stable strings").
type Store struct {
	capacity int
	byID     map[string]*Series
	order    []string // registration order, for deterministic iteration
}

// NewStore creates a Store whose Series are all sized to capacity
// samples (derived by the caller from the configured retention horizon
// and tick period).
func NewStore(capacity int) *Store {
	return &Store{capacity: capacity, byID: make(map[string]*Series)}
}

// Register ensures a Series exists for id, returning it. Idempotent.
func (st *Store) Register(id string) *Series {
	if s, ok := st.byID[id]; ok {
		return s
	}
	s := NewSeries(st.capacity)
	st.byID[id] = s
	st.order = append(st.order, id)
	return s
}

// Append appends value at tick to the named series, registering it first
// if this is the first time id has been seen.
func (st *Store) Append(id string, tick int64, value float64) {
	st.Register(id).Append(tick, value)
}

// Range delegates to the named series' Range, returning an all-Absent
// slice if id was never registered.
func (st *Store) Range(id string, anchor, span int64, buckets int) []Bucket {
	s, ok := st.byID[id]
	if !ok {
		out := make([]Bucket, buckets)
		for i := range out {
			out[i] = Bucket{Min: Absent, Max: Absent, Avg: Absent}
		}
		return out
	}
	return s.Range(anchor, span, buckets)
}

// Series returns the named series, or (nil, false) if unregistered.
func (st *Store) Series(id string) (*Series, bool) {
	s, ok := st.byID[id]
	return s, ok
}

// IDs returns every registered metric id in registration order.
func (st *Store) IDs() []string {
	out := make([]string, len(st.order))
	copy(out, st.order)
	return out
}

// OldestTick returns the oldest tick retained across every series, or 0
// if the store is empty. Used to clamp panning.
func (st *Store) OldestTick() int64 {
	var oldest int64
	first := true
	for _, id := range st.order {
		s := st.byID[id]
		if s.Len() == 0 {
			continue
		}
		t := s.OldestTick()
		if first || t < oldest {
			oldest = t
			first = false
		}
	}
	return oldest
}

// LatestTick returns the most recent tick appended to any series, or 0
// if empty.
func (st *Store) LatestTick() int64 {
	var latest int64
	for _, id := range st.order {
		s := st.byID[id]
		if t := s.LatestTick(); t > latest {
			latest = t
		}
	}
	return latest
}

// CPUCoreID returns the stable metric id for per-core CPU utilisation,
// matching the per-core sampling convention.
func CPUCoreID(core int) string {
	return fmt.Sprintf("cpu:core:%d", core)
}

// Well-known stable metric ids (ids are stable
// strings). Per-NIC/per-mount/per-GPU ids are namespaced with their
// device name via NicID/MountID/GPUID below.
const (
	MetricCPUAggregate = "cpu:aggregate"
	MetricLoad1        = "load:1"
	MetricLoad5         = "load:5"
	MetricLoad15        = "load:15"
	MetricMemUsed       = "mem:used"
	MetricMemAvailable  = "mem:available"
	MetricSwapUsed      = "mem:swap"
	MetricBatteryCharge = "battery:charge"
	MetricBatteryPower  = "battery:power"
)

func NicRxID(name string) string  { return "net:" + name + ":rx" }
func NicTxID(name string) string  { return "net:" + name + ":tx" }
func MountReadID(name string) string  { return "disk:" + name + ":read" }
func MountWriteID(name string) string { return "disk:" + name + ":write" }
func GPUUtilID(index int) string      { return fmt.Sprintf("gpu:%d:util", index) }
func GPUMemID(index int) string       { return fmt.Sprintf("gpu:%d:mem", index) }
