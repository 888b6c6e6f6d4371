// Copyright 2026, Zenith contributors.
// SPDX-License-Identifier: Apache-2.0

// Package uistate implements the modal state machine and section-focus /
// zoom-pan navigation state shared by every frame the Renderer Driver
// draws, built as a plain struct passed by value/pointer through the loop
// (no package-level mutable statics, deliberately unlike
// cmd/wsh/cmd/wshcmd-root.go's package-level RpcClient/origTermState
// globals).
package uistate

import (
	"github.com/zenith-tui/zenith/internal/series"
)

// State is one of the modal UI states.
type State int

const (
	Normal State = iota
	Help
	ProcessDetail
	SignalMenu
	FilterInput
	Quit
)

func (s State) String() string {
	switch s {
	case Normal:
		return "normal"
	case Help:
		return "help"
	case ProcessDetail:
		return "process_detail"
	case SignalMenu:
		return "signal_menu"
	case FilterInput:
		return "filter_input"
	case Quit:
		return "quit"
	default:
		return "unknown"
	}
}

// Section identifies a focusable, expandable/minimisable dashboard region.
type Section int

const (
	SectionCPU Section = iota
	SectionMemory
	SectionNetwork
	SectionDisk
	SectionGPU
	SectionProcess
	sectionCount
)

func (s Section) String() string {
	switch s {
	case SectionCPU:
		return "cpu"
	case SectionMemory:
		return "memory"
	case SectionNetwork:
		return "network"
	case SectionDisk:
		return "disk"
	case SectionGPU:
		return "gpu"
	case SectionProcess:
		return "process"
	default:
		return "unknown"
	}
}

// Machine is the whole UI's navigation and modal state, updated in place
// by one input event at a time — never stored in a package-level global.
type Machine struct {
	State State

	FocusedSection  Section
	HeightOverride  map[Section]int // section_height_override, percent; 0 = hidden
	FocusedPID      int32
	SelectedRow     int
	FilterDraft     string
	FilterCommitted string
	PendingSignal   int

	Zoom series.ZoomWindow
}

// New constructs the initial Machine, starting in Normal state with no
// section overrides and the default zoom window.
func New(latestTick int64) *Machine {
	return &Machine{
		State:          Normal,
		FocusedSection: SectionCPU,
		HeightOverride: make(map[Section]int),
		Zoom:           series.NewZoomWindow(latestTick),
	}
}

// CycleFocus advances FocusedSection to the next section in ring order:
// CPU, Memory, Network, Disk, GPU, Process. GPU is part of the ring
// whether or not a GPU is present.
func (m *Machine) CycleFocus() {
	m.FocusedSection = Section((int(m.FocusedSection) + 1) % int(sectionCount))
}

// Expand/Minimise adjust the focused section's height override by deltaPct
// percentage points, clamped to [0, 100].
func (m *Machine) Expand(deltaPct int)   { m.adjustHeight(deltaPct) }
func (m *Machine) Minimise(deltaPct int) { m.adjustHeight(-deltaPct) }

func (m *Machine) adjustHeight(deltaPct int) {
	cur := m.HeightOverride[m.FocusedSection]
	cur += deltaPct
	if cur < 0 {
		cur = 0
	}
	if cur > 100 {
		cur = 100
	}
	m.HeightOverride[m.FocusedSection] = cur
}

// OpenHelp, OpenProcessDetail, etc. implement the modal transition
// table. Each returns false if the transition isn't legal
// from the current state, letting callers ignore stray keystrokes.

func (m *Machine) OpenHelp() bool {
	if m.State != Normal {
		return false
	}
	m.State = Help
	return true
}

func (m *Machine) CloseHelp() bool {
	if m.State != Help {
		return false
	}
	m.State = Normal
	return true
}

// OpenProcessDetail focuses pid and transitions Normal -> ProcessDetail.
func (m *Machine) OpenProcessDetail(pid int32) bool {
	if m.State != Normal {
		return false
	}
	m.FocusedPID = pid
	m.State = ProcessDetail
	return true
}

func (m *Machine) CloseProcessDetail() bool {
	if m.State != ProcessDetail {
		return false
	}
	m.State = Normal
	return true
}

// OpenSignalMenu transitions ProcessDetail -> SignalMenu.
func (m *Machine) OpenSignalMenu() bool {
	if m.State != ProcessDetail {
		return false
	}
	m.State = SignalMenu
	return true
}

// ConfirmSignal records the chosen signal and returns to ProcessDetail
// ("digit/enter -> ProcessDetail, send selected signal").
func (m *Machine) ConfirmSignal(sig int) bool {
	if m.State != SignalMenu {
		return false
	}
	m.PendingSignal = sig
	m.State = ProcessDetail
	return true
}

func (m *Machine) CancelSignalMenu() bool {
	if m.State != SignalMenu {
		return false
	}
	m.State = ProcessDetail
	return true
}

// OpenFilterInput transitions Normal -> FilterInput, seeding the draft
// with the currently committed filter text.
func (m *Machine) OpenFilterInput() bool {
	if m.State != Normal {
		return false
	}
	m.FilterDraft = m.FilterCommitted
	m.State = FilterInput
	return true
}

// CommitFilter applies the draft text and returns to Normal.
func (m *Machine) CommitFilter() bool {
	if m.State != FilterInput {
		return false
	}
	m.FilterCommitted = m.FilterDraft
	m.State = Normal
	return true
}

// DiscardFilter abandons the draft and returns to Normal.
func (m *Machine) DiscardFilter() bool {
	if m.State != FilterInput {
		return false
	}
	m.FilterDraft = ""
	m.State = Normal
	return true
}

// Quit is legal from any state ("any -> q -> Quit").
func (m *Machine) RequestQuit() {
	m.State = Quit
}

// Time-navigation helpers delegate to the shared ZoomWindow; min/max span
// bounds are supplied by the caller (visible_columns and history depth
// respectively).
func (m *Machine) ZoomIn(minSpan int64)         { m.Zoom.ZoomIn(minSpan) }
func (m *Machine) ZoomOut(maxSpan int64)        { m.Zoom.ZoomOut(maxSpan) }
func (m *Machine) PanBack(oldestTick int64)     { m.Zoom.PanBack(oldestTick) }
func (m *Machine) PanForward(latestTick int64)  { m.Zoom.PanForward(latestTick) }
func (m *Machine) ResetZoom(latestTick int64)   { m.Zoom.Reset(latestTick) }
func (m *Machine) AdvanceZoom(latestTick int64) { m.Zoom.Advance(latestTick) }
