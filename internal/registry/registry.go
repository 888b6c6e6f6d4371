// Copyright 2026, Zenith contributors.
// SPDX-License-Identifier: Apache-2.0

// Package registry reconciles the per-tick process snapshot into stable,
// per-identity ProcessRecords, generalizing
// pkg/pstrack/pstrack.go's ProcessTable from a bare-pid-keyed global
// singleton into an identity-keyed instance the Sampler owns.
package registry

import (
	"sort"
	"strings"
	"time"

	"github.com/zenith-tui/zenith/internal/probe"
	"github.com/zenith-tui/zenith/internal/zmodel"
)

// DefaultGraceTicks is how many ticks a record lingers after its identity
// disappears from a poll before eviction ("default N=1 unless
// focused").
const DefaultGraceTicks = 1

// FocusGraceExtra is the extra slack (in ticks, beyond the normal grace
// window) a focused pid gets before its focus is cleared for a true exit
// ("cleared if the process truly exits (identity key
// disappears for > grace + 5 ticks)").
const FocusGraceExtra = 5

// SortKey selects which field Registry.View sorts by.
type SortKey int

const (
	SortByCPU SortKey = iota
	SortByMem
	SortByPID
	SortByCommand
)

func (k SortKey) String() string {
	switch k {
	case SortByMem:
		return "mem"
	case SortByPID:
		return "pid"
	case SortByCommand:
		return "command"
	default:
		return "cpu"
	}
}

// Registry holds every live (and recently-evicted-but-focused) process
// record, keyed by its (pid, start_time) identity.
type Registry struct {
	records map[zmodel.ProcessIdentity]*zmodel.ProcessRecord
	byPID   map[int32]zmodel.ProcessIdentity // latest identity seen for a pid, for focus re-resolution
	focused *zmodel.ProcessIdentity
	graceTicks int64
}

// New creates an empty Registry. graceTicks overrides DefaultGraceTicks
// when > 0.
func New(graceTicks int64) *Registry {
	if graceTicks <= 0 {
		graceTicks = DefaultGraceTicks
	}
	return &Registry{
		records:    make(map[zmodel.ProcessIdentity]*zmodel.ProcessRecord),
		byPID:      make(map[int32]zmodel.ProcessIdentity),
		graceTicks: graceTicks,
	}
}

// Reconcile folds one tick's process samples into the registry: existing
// identities get updated samples and recomputed rates, unseen identities
// past their grace window are evicted (unless focused), and new
// identities get fresh records. cores is the logical CPU count used to
// normalize cpu%.
func (r *Registry) Reconcile(tick int64, deltaSec float64, cores int, samples []zmodel.ProcessSample) {
	seen := make(map[zmodel.ProcessIdentity]bool, len(samples))
	for _, s := range samples {
		id := s.Identity()
		seen[id] = true
		r.byPID[s.PID] = id

		rec, exists := r.records[id]
		if !exists {
			rec = &zmodel.ProcessRecord{
				Identity:      id,
				FirstSeenTick: tick,
			}
			r.records[id] = rec
		}
		r.updateRecord(rec, s, tick, deltaSec, cores, exists)
	}

	for id, rec := range r.records {
		if seen[id] {
			continue
		}
		if !rec.Missing() {
			rec.MarkMissing(tick)
		}
		r.maybeEvict(id, rec, tick)
	}
}

func (r *Registry) updateRecord(rec *zmodel.ProcessRecord, s zmodel.ProcessSample, tick int64, deltaSec float64, cores int, hadPrior bool) {
	prev := rec.Latest
	rec.MarkSeen(tick)
	rec.Latest = s

	if !hadPrior || deltaSec <= 0 {
		rec.ReadRate = 0
		rec.WriteRate = 0
		rec.CPUPercent = 0
		return
	}

	rec.ReadRate = nonNegativeRate(prev.ReadBytesCum, s.ReadBytesCum, deltaSec)
	rec.WriteRate = nonNegativeRate(prev.WriteBytesCum, s.WriteBytesCum, deltaSec)

	cpuDelta := (s.CPUTimeUser + s.CPUTimeSystem) - (prev.CPUTimeUser + prev.CPUTimeSystem)
	instCPU := 0.0
	if cpuDelta > 0 && cores > 0 {
		instCPU = (cpuDelta.Seconds() / deltaSec / float64(cores)) * 100.0
	}
	// EWMA(alpha=0.5), the default smoothing recommendation for cpu%.
	const alpha = 0.5
	rec.CPUPercent = alpha*instCPU + (1-alpha)*rec.CPUPercent
}

// nonNegativeRate implements the counter-reset rule: a
// decreasing cumulative counter yields rate 0, not a negative number.
func nonNegativeRate(prev, cur uint64, deltaSec float64) float64 {
	if cur < prev {
		return 0
	}
	return float64(cur-prev) / deltaSec
}

func (r *Registry) maybeEvict(id zmodel.ProcessIdentity, rec *zmodel.ProcessRecord, tick int64) {
	grace := r.graceTicks
	if rec.Focused {
		grace += FocusGraceExtra
	}
	if tick-rec.LastSeenTick <= grace {
		return
	}
	delete(r.records, id)
	if r.focused != nil && *r.focused == id {
		r.focused = nil
	}
}

// Focus pins pid as the focused row; at most one pid may be focused at a
// time. No-op if pid has no live record.
func (r *Registry) Focus(pid int32) bool {
	id, ok := r.byPID[pid]
	if !ok {
		return false
	}
	rec, ok := r.records[id]
	if !ok {
		return false
	}
	r.ClearFocus()
	rec.Focused = true
	r.focused = &id
	return true
}

// ClearFocus releases the current focus, if any.
func (r *Registry) ClearFocus() {
	if r.focused == nil {
		return
	}
	if rec, ok := r.records[*r.focused]; ok {
		rec.Focused = false
	}
	r.focused = nil
}

// FocusedPID returns the currently focused pid and true, or (0, false).
func (r *Registry) FocusedPID() (int32, bool) {
	if r.focused == nil {
		return 0, false
	}
	return r.focused.PID, true
}

// Record returns the record for a given identity.
func (r *Registry) Record(id zmodel.ProcessIdentity) (*zmodel.ProcessRecord, bool) {
	rec, ok := r.records[id]
	return rec, ok
}

// RecordByPID resolves the record for a bare pid via the latest identity
// seen for it, for callers (the Renderer Driver's process detail view)
// that only have a raw pid in hand.
func (r *Registry) RecordByPID(pid int32) (*zmodel.ProcessRecord, bool) {
	id, ok := r.byPID[pid]
	if !ok {
		return nil, false
	}
	return r.Record(id)
}

// Len returns the number of records currently tracked (including
// lingering/evicting-soon ones).
func (r *Registry) Len() int { return len(r.records) }

// View returns a filtered, sorted slice of records: the
// registry does not own sort order, it exposes a materialised, stably
// sorted view with pid-ascending as the secondary key.
func (r *Registry) View(key SortKey, ascending bool, filter string) []*zmodel.ProcessRecord {
	filter = strings.ToLower(strings.TrimSpace(filter))
	out := make([]*zmodel.ProcessRecord, 0, len(r.records))
	for _, rec := range r.records {
		if filter != "" && !matchesFilter(rec, filter) {
			continue
		}
		out = append(out, rec)
	}

	less := func(i, j int) bool {
		a, b := out[i], out[j]
		cmp := compareKey(key, a, b)
		if cmp == 0 {
			return a.Identity.PID < b.Identity.PID
		}
		if ascending {
			return cmp < 0
		}
		return cmp > 0
	}
	sort.SliceStable(out, less)
	return out
}

func matchesFilter(rec *zmodel.ProcessRecord, filter string) bool {
	if strings.Contains(strings.ToLower(rec.Latest.Command), filter) {
		return true
	}
	if strings.Contains(strings.ToLower(rec.Latest.Cmdline), filter) {
		return true
	}
	if strings.Contains(strings.ToLower(rec.Latest.Username), filter) {
		return true
	}
	return false
}

func compareKey(key SortKey, a, b *zmodel.ProcessRecord) int {
	switch key {
	case SortByCPU:
		return floatCompare(a.CPUPercent, b.CPUPercent)
	case SortByMem:
		return uintCompare(a.Latest.RSSBytes, b.Latest.RSSBytes)
	case SortByPID:
		return int32Compare(a.Identity.PID, b.Identity.PID)
	case SortByCommand:
		return strings.Compare(a.Latest.Command, b.Latest.Command)
	default:
		return 0
	}
}

func floatCompare(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func uintCompare(a, b uint64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func int32Compare(a, b int32) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// Signal sends sig to pid via the probe layer, surfacing the resulting
// ErrorKind so the UI can render the right banner.
func (r *Registry) Signal(caps probe.Capabilities, pid int32, sig int) error {
	return caps.SendSignal(pid, sig)
}

// Renice adjusts pid's nice value by delta via the probe layer.
func (r *Registry) Renice(caps probe.Capabilities, pid int32, delta int) error {
	rec, ok := r.RecordByPID(pid)
	if !ok {
		return &probe.Error{Kind: probe.KindNotFound, Source: "renice"}
	}
	return caps.Renice(pid, int(rec.Latest.Nice)+delta)
}

// TickDelta is a small helper the Sampler uses to compute deltaSec
// between two wall-clock timestamps for rate derivation.
func TickDelta(prev, cur time.Time) float64 {
	if prev.IsZero() {
		return 0
	}
	d := cur.Sub(prev).Seconds()
	if d <= 0 {
		return 0
	}
	return d
}
