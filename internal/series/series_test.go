// Copyright 2026, Zenith contributors.
// SPDX-License-Identifier: Apache-2.0

package series

import "testing"

func TestAppendAndRange(t *testing.T) {
	s := NewSeries(100)
	for i := int64(0); i < 10; i++ {
		s.Append(i, float64(i))
	}
	buckets := s.Range(10, 10, 5)
	if len(buckets) != 5 {
		t.Fatalf("expected 5 buckets, got %d", len(buckets))
	}
	for i, b := range buckets {
		if b.IsAbsent() {
			t.Fatalf("bucket %d unexpectedly absent", i)
		}
	}
	// bucket 0 covers ticks [0,2), bucket 4 covers [8,10)
	if buckets[0].Min != 0 || buckets[0].Max != 1 {
		t.Fatalf("bucket 0 = %+v, want min=0 max=1", buckets[0])
	}
	if buckets[4].Min != 8 || buckets[4].Max != 9 {
		t.Fatalf("bucket 4 = %+v, want min=8 max=9", buckets[4])
	}
}

func TestRangeEmptyBucketIsAbsent(t *testing.T) {
	s := NewSeries(100)
	s.Append(0, 1.0)
	s.Append(1, 2.0)
	// span 10 starting at anchor=10 covers [0,10); only ticks 0,1 have data
	buckets := s.Range(10, 10, 10)
	if buckets[0].IsAbsent() {
		t.Fatalf("bucket 0 should have data")
	}
	if !buckets[5].IsAbsent() {
		t.Fatalf("bucket 5 should be absent, got %+v", buckets[5])
	}
}

func TestEvictionAtCapacity(t *testing.T) {
	s := NewSeries(3)
	for i := int64(0); i < 5; i++ {
		s.Append(i, float64(i))
	}
	if s.Len() != 3 {
		t.Fatalf("expected ring capped at 3, got %d", s.Len())
	}
	if s.OldestTick() != 2 {
		t.Fatalf("expected oldest tick 2 after evicting 0,1, got %d", s.OldestTick())
	}
	if s.LatestTick() != 4 {
		t.Fatalf("expected latest tick 4, got %d", s.LatestTick())
	}
}

func TestBoundarySampleGoesToLaterBucket(t *testing.T) {
	s := NewSeries(100)
	s.Append(5, 42.0)
	// span=10, buckets=2: bucket0 = [0,5), bucket1 = [5,10). Tick 5 is a
	// boundary sample, which belongs to the later bucket.
	buckets := s.Range(10, 10, 2)
	if !buckets[0].IsAbsent() {
		t.Fatalf("bucket 0 should be empty, tick 5 is a boundary sample")
	}
	if buckets[1].IsAbsent() || buckets[1].Avg != 42.0 {
		t.Fatalf("bucket 1 should contain the boundary sample, got %+v", buckets[1])
	}
}

func TestZoomWindowClampsAtMinSpan(t *testing.T) {
	z := NewZoomWindow(100)
	z.SpanTicks = 60
	for i := 0; i < 10; i++ {
		z.ZoomIn(60)
	}
	if z.SpanTicks != 60 {
		t.Fatalf("expected span clamped at 60 (visible_columns), got %d", z.SpanTicks)
	}
}

func TestZoomWindowPanClampsAtOldest(t *testing.T) {
	z := ZoomWindow{AnchorTick: 200, SpanTicks: 60, AutoScroll: false}
	for i := 0; i < 20; i++ {
		z.PanBack(100)
	}
	if z.AnchorTick < 100+z.SpanTicks {
		t.Fatalf("anchor should clamp at oldest+span, got %d", z.AnchorTick)
	}
}

func TestZoomWindowPanForwardRearmsAutoScroll(t *testing.T) {
	z := ZoomWindow{AnchorTick: 50, SpanTicks: 60, AutoScroll: false}
	z.PanForward(55)
	if !z.AutoScroll {
		t.Fatalf("reaching latest tick should re-arm auto-scroll")
	}
	if z.AnchorTick != 55 {
		t.Fatalf("anchor should clamp to latest tick, got %d", z.AnchorTick)
	}
}

func TestStoreOneSeriesPerID(t *testing.T) {
	st := NewStore(10)
	st.Append("cpu:aggregate", 0, 1.0)
	st.Append("cpu:aggregate", 1, 2.0)
	s, ok := st.Series("cpu:aggregate")
	if !ok || s.Len() != 2 {
		t.Fatalf("expected exactly one series accumulating both appends")
	}
	if len(st.IDs()) != 1 {
		t.Fatalf("expected exactly one registered id, got %v", st.IDs())
	}
}
