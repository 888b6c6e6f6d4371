// Copyright 2026, Zenith contributors.
// SPDX-License-Identifier: Apache-2.0

package history

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestFlushThenLoadRoundTrips(t *testing.T) {
	dir := t.TempDir()
	st, err := Open(dir, 2000, 0xDEAD, 0)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer st.Close()

	st.Append(Record{Tick: 1, WallClock: 1000, Values: map[string]float64{"cpu:aggregate": 10}})
	st.Append(Record{Tick: 2, WallClock: 3000, Values: map[string]float64{"cpu:aggregate": 20}})

	stats, err := st.Flush(context.Background())
	if err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if stats.RecordsWritten != 2 {
		t.Fatalf("expected 2 records written, got %d", stats.RecordsWritten)
	}

	loaded, err := st.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("expected 2 records loaded, got %d", len(loaded))
	}
	if loaded[0].Tick != 1 || loaded[1].Tick != 2 {
		t.Fatalf("expected tick order preserved, got %+v", loaded)
	}
}

func TestMismatchedSchemaHashSkippedNotDeleted(t *testing.T) {
	dir := t.TempDir()
	st1, err := Open(dir, 2000, 111, 0)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	st1.Append(Record{Tick: 1, WallClock: 1000, Values: map[string]float64{"a": 1}})
	if _, err := st1.Flush(context.Background()); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if err := st1.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	st2, err := Open(dir, 2000, 222, 0)
	if err != nil {
		t.Fatalf("Open (second instance, different schema): %v", err)
	}
	defer st2.Close()

	loaded, err := st2.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(loaded) != 0 {
		t.Fatalf("expected 0 records loaded across a schema_hash mismatch, got %d", len(loaded))
	}

	entries, _ := os.ReadDir(dir)
	var segCount int
	for _, e := range entries {
		if filepath.Ext(e.Name()) == ".seg" {
			segCount++
		}
	}
	if segCount != 1 {
		t.Fatalf("mismatched segment must be kept on disk, got %d .seg files", segCount)
	}
}

func TestRetentionEvictsOldestFirst(t *testing.T) {
	dir := t.TempDir()
	st, err := Open(dir, 1000, 1, 1) // 1-byte cap forces eviction after every flush
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer st.Close()

	st.Append(Record{Tick: 1, WallClock: 1000, Values: map[string]float64{"a": 1}})
	if _, err := st.Flush(context.Background()); err != nil {
		t.Fatalf("flush 1: %v", err)
	}
	st.Append(Record{Tick: 2, WallClock: 2000, Values: map[string]float64{"a": 2}})
	if _, err := st.Flush(context.Background()); err != nil {
		t.Fatalf("flush 2: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	var names []string
	for _, e := range entries {
		if filepath.Ext(e.Name()) == ".seg" {
			names = append(names, e.Name())
		}
	}
	if len(names) != 1 {
		t.Fatalf("expected retention to leave exactly 1 segment, got %v", names)
	}
	if names[0] != "2000.seg" {
		t.Fatalf("expected the newest segment to survive eviction, got %v", names)
	}
}

func TestOpenTwiceFailsWithoutClose(t *testing.T) {
	dir := t.TempDir()
	st1, err := Open(dir, 1000, 1, 0)
	if err != nil {
		t.Fatalf("first Open: %v", err)
	}
	defer st1.Close()

	if _, err := Open(dir, 1000, 1, 0); err == nil {
		t.Fatalf("expected second Open on the same directory to fail while the lock is held")
	}
}

func TestComputeSchemaHashIsDeterministicAndOrderSensitive(t *testing.T) {
	a := ComputeSchemaHash([]string{"cpu:aggregate", "mem:used"})
	b := ComputeSchemaHash([]string{"cpu:aggregate", "mem:used"})
	if a != b {
		t.Fatalf("expected stable hash for the same id list, got %d vs %d", a, b)
	}
	c := ComputeSchemaHash([]string{"mem:used", "cpu:aggregate"})
	if a == c {
		t.Fatalf("expected reordering metric ids to change the schema hash")
	}
}
