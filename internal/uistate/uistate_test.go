// Copyright 2026, Zenith contributors.
// SPDX-License-Identifier: Apache-2.0

package uistate

import "testing"

func TestNormalToProcessDetailToSignalMenuAndBack(t *testing.T) {
	m := New(0)
	if !m.OpenProcessDetail(42) {
		t.Fatalf("expected Normal -> ProcessDetail to succeed")
	}
	if m.State != ProcessDetail || m.FocusedPID != 42 {
		t.Fatalf("expected ProcessDetail state focused on pid 42, got %+v", m)
	}
	if !m.OpenSignalMenu() {
		t.Fatalf("expected ProcessDetail -> SignalMenu to succeed")
	}
	if !m.ConfirmSignal(9) {
		t.Fatalf("expected SignalMenu -> ProcessDetail on confirm")
	}
	if m.State != ProcessDetail || m.PendingSignal != 9 {
		t.Fatalf("expected ProcessDetail with pending signal 9, got %+v", m)
	}
}

func TestIllegalTransitionIsRejected(t *testing.T) {
	m := New(0)
	if m.OpenSignalMenu() {
		t.Fatalf("SignalMenu should not be reachable directly from Normal")
	}
	if m.State != Normal {
		t.Fatalf("state should remain Normal after a rejected transition")
	}
}

func TestFilterInputCommitAndDiscard(t *testing.T) {
	m := New(0)
	m.FilterCommitted = "old"
	m.OpenFilterInput()
	if m.FilterDraft != "old" {
		t.Fatalf("expected draft seeded from committed text")
	}
	m.FilterDraft = "chrome"
	m.CommitFilter()
	if m.FilterCommitted != "chrome" || m.State != Normal {
		t.Fatalf("expected commit to apply draft and return to Normal")
	}

	m.OpenFilterInput()
	m.FilterDraft = "discarded"
	m.DiscardFilter()
	if m.FilterCommitted != "chrome" || m.State != Normal {
		t.Fatalf("expected discard to leave committed text unchanged")
	}
}

func TestQuitReachableFromAnyState(t *testing.T) {
	m := New(0)
	m.OpenHelp()
	m.RequestQuit()
	if m.State != Quit {
		t.Fatalf("expected q to quit even from a non-Normal state")
	}
}

func TestCycleFocusWrapsAround(t *testing.T) {
	m := New(0)
	start := m.FocusedSection
	for i := 0; i < int(sectionCount); i++ {
		m.CycleFocus()
	}
	if m.FocusedSection != start {
		t.Fatalf("expected a full cycle to return to the starting section")
	}
}

func TestExpandAndMinimiseClampToRange(t *testing.T) {
	m := New(0)
	for i := 0; i < 20; i++ {
		m.Expand(10)
	}
	if m.HeightOverride[m.FocusedSection] != 100 {
		t.Fatalf("expected height clamped at 100, got %d", m.HeightOverride[m.FocusedSection])
	}
	for i := 0; i < 20; i++ {
		m.Minimise(10)
	}
	if m.HeightOverride[m.FocusedSection] != 0 {
		t.Fatalf("expected height clamped at 0, got %d", m.HeightOverride[m.FocusedSection])
	}
}
