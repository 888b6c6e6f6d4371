// Copyright 2026, Zenith contributors.
// SPDX-License-Identifier: Apache-2.0

package prefs

import (
	"context"
	"testing"
)

func TestSetGetRoundTrips(t *testing.T) {
	dir := t.TempDir()
	st, err := Open(context.Background(), dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer st.Close()

	ctx := context.Background()
	if err := st.Set(ctx, KeySortKey, "cpu"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, ok, err := st.Get(ctx, KeySortKey)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !ok || got != "cpu" {
		t.Fatalf("expected sort_key=cpu, got %q (ok=%v)", got, ok)
	}
}

func TestGetMissingKeyReturnsNotOK(t *testing.T) {
	dir := t.TempDir()
	st, err := Open(context.Background(), dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer st.Close()

	_, ok, err := st.Get(context.Background(), "nope")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if ok {
		t.Fatalf("expected ok=false for missing key")
	}
}

func TestSetOverwritesExistingValue(t *testing.T) {
	dir := t.TempDir()
	st, err := Open(context.Background(), dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer st.Close()

	ctx := context.Background()
	st.Set(ctx, KeyFilterText, "chrome")
	st.Set(ctx, KeyFilterText, "firefox")
	got, _, _ := st.Get(ctx, KeyFilterText)
	if got != "firefox" {
		t.Fatalf("expected overwritten value firefox, got %q", got)
	}
}

func TestAllReturnsEveryStoredKey(t *testing.T) {
	dir := t.TempDir()
	st, err := Open(context.Background(), dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer st.Close()

	ctx := context.Background()
	st.Set(ctx, KeySortKey, "mem")
	st.Set(ctx, KeyZoomSpan, "300")

	all, err := st.All(ctx)
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if all[KeySortKey] != "mem" || all[KeyZoomSpan] != "300" {
		t.Fatalf("expected both keys present, got %+v", all)
	}
}
