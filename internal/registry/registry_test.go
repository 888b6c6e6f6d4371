// Copyright 2026, Zenith contributors.
// SPDX-License-Identifier: Apache-2.0

package registry

import (
	"testing"

	"github.com/zenith-tui/zenith/internal/zmodel"
)

func sampleAt(pid int32, start int64, rssBytes, readBytes uint64, cpuUserNanos int64) zmodel.ProcessSample {
	return zmodel.ProcessSample{
		PID:           pid,
		StartTime:     start,
		RSSBytes:      rssBytes,
		ReadBytesCum:  readBytes,
		Command:       "worker",
	}
}

func TestPIDReuseCreatesDistinctRecords(t *testing.T) {
	r := New(1)

	r.Reconcile(0, 0, 4, []zmodel.ProcessSample{sampleAt(100, 1000, 0, 0, 0)})
	id1 := zmodel.ProcessIdentity{PID: 100, StartTime: 1000}
	if _, ok := r.Record(id1); !ok {
		t.Fatalf("expected record for first pid=100 instance")
	}

	// t=1: process disappears.
	r.Reconcile(1, 1, 4, nil)
	// after t=1: still within grace window of 1.
	if _, ok := r.Record(id1); !ok {
		t.Fatalf("record should still linger within grace window")
	}
	r.Reconcile(2, 1, 4, nil)
	if _, ok := r.Record(id1); ok {
		t.Fatalf("record should have been evicted past the grace window")
	}

	// t=3: a new pid=100 instance with a different start_time appears.
	r.Reconcile(3, 1, 4, []zmodel.ProcessSample{sampleAt(100, 2000, 0, 0, 0)})
	id2 := zmodel.ProcessIdentity{PID: 100, StartTime: 2000}
	if _, ok := r.Record(id2); !ok {
		t.Fatalf("expected a fresh record for the new pid=100 instance")
	}
	if _, ok := r.Record(id1); ok {
		t.Fatalf("old identity must not be resurrected by pid reuse")
	}
}

func TestReadRateFromDelta(t *testing.T) {
	r := New(1)
	r.Reconcile(0, 1.0, 4, []zmodel.ProcessSample{sampleAt(1, 500, 0, 1000, 0)})
	r.Reconcile(1, 1.0, 4, []zmodel.ProcessSample{sampleAt(1, 500, 0, 3000, 0)})

	id := zmodel.ProcessIdentity{PID: 1, StartTime: 500}
	rec, ok := r.Record(id)
	if !ok {
		t.Fatalf("expected record")
	}
	if rec.ReadRate != 2000 {
		t.Fatalf("expected read_rate=2000 B/s, got %v", rec.ReadRate)
	}
}

func TestCounterResetYieldsZeroRate(t *testing.T) {
	r := New(1)
	r.Reconcile(0, 1.0, 4, []zmodel.ProcessSample{sampleAt(1, 500, 0, 5000, 0)})
	// counter resets (new < old), e.g. device re-enumeration.
	r.Reconcile(1, 1.0, 4, []zmodel.ProcessSample{sampleAt(1, 500, 0, 100, 0)})

	id := zmodel.ProcessIdentity{PID: 1, StartTime: 500}
	rec, _ := r.Record(id)
	if rec.ReadRate != 0 {
		t.Fatalf("expected rate 0 after counter reset, got %v", rec.ReadRate)
	}
}

func TestFocusSurvivesGraceAndClearsOnTrueExit(t *testing.T) {
	r := New(1)
	r.Reconcile(0, 1, 4, []zmodel.ProcessSample{sampleAt(42, 10, 0, 0, 0)})
	if !r.Focus(42) {
		t.Fatalf("expected focus to succeed on live pid")
	}

	// Missing for a while, within grace (1) + focus extra (5) = 6 ticks.
	for tick := int64(1); tick <= 6; tick++ {
		r.Reconcile(tick, 1, 4, nil)
	}
	if _, ok := r.FocusedPID(); !ok {
		t.Fatalf("focused record should survive within focus grace window")
	}

	// One more tick past the combined window: truly gone.
	r.Reconcile(7, 1, 4, nil)
	if _, ok := r.FocusedPID(); ok {
		t.Fatalf("focus should clear once the process truly exits")
	}
}

func TestViewIsStableAndSecondarySortsByPID(t *testing.T) {
	r := New(1)
	r.Reconcile(0, 1, 4, []zmodel.ProcessSample{
		sampleAt(3, 1, 100, 0, 0),
		sampleAt(1, 2, 100, 0, 0),
		sampleAt(2, 3, 100, 0, 0),
	})
	view1 := r.View(SortByMem, true, "")
	view2 := r.View(SortByMem, true, "")
	if len(view1) != 3 || len(view2) != 3 {
		t.Fatalf("expected 3 records in view")
	}
	for i := range view1 {
		if view1[i].Identity != view2[i].Identity {
			t.Fatalf("view(sort,filter) must be idempotent with no intervening tick")
		}
	}
	// equal mem values -> secondary sort pid ascending
	if view1[0].Identity.PID != 1 || view1[1].Identity.PID != 2 || view1[2].Identity.PID != 3 {
		t.Fatalf("expected pid-ascending tiebreak, got %v %v %v",
			view1[0].Identity.PID, view1[1].Identity.PID, view1[2].Identity.PID)
	}
}

func TestFilterMatchesCommandCaseInsensitive(t *testing.T) {
	r := New(1)
	r.Reconcile(0, 1, 4, []zmodel.ProcessSample{sampleAt(1, 1, 0, 0, 0)})
	view := r.View(SortByPID, true, "WORK")
	if len(view) != 1 {
		t.Fatalf("expected case-insensitive substring match on command")
	}
	view = r.View(SortByPID, true, "nomatch")
	if len(view) != 0 {
		t.Fatalf("expected empty filter result for non-matching text")
	}
}

func TestFilterMatchesUsername(t *testing.T) {
	r := New(1)
	s := sampleAt(1, 1, 0, 0, 0)
	s.Username = "alice"
	r.Reconcile(0, 1, 4, []zmodel.ProcessSample{s})

	view := r.View(SortByPID, true, "ALICE")
	if len(view) != 1 {
		t.Fatalf("expected case-insensitive substring match on username")
	}
	view = r.View(SortByPID, true, "bob")
	if len(view) != 0 {
		t.Fatalf("expected empty filter result for non-matching username")
	}
}
