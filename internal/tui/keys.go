// Copyright 2026, Zenith contributors.
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/zenith-tui/zenith/internal/probe"
	"github.com/zenith-tui/zenith/internal/uistate"
	"github.com/zenith-tui/zenith/internal/zmodel"
)

// handleKey translates one keystroke into a UI state transition before
// the next render. The exact modal table lives in
// internal/uistate; this function only decides which uistate method a
// given key invokes for the current State.
func (m *Model) handleKey(msg tea.KeyMsg) {
	// Any keystroke dismisses a standing footer banner, independent of
	// the state-machine transition the same key may also trigger.
	m.dismissBanner()

	if msg.String() == "q" {
		m.ui.RequestQuit()
		return
	}

	switch m.ui.State {
	case uistate.Normal:
		m.handleNormalKey(msg)
	case uistate.Help:
		if msg.String() == "h" || msg.String() == "esc" {
			m.ui.CloseHelp()
		}
	case uistate.ProcessDetail:
		switch msg.String() {
		case "s":
			m.ui.OpenSignalMenu()
		case "esc":
			m.reg.ClearFocus()
			m.ui.CloseProcessDetail()
		}
	case uistate.SignalMenu:
		m.handleSignalMenuKey(msg)
	case uistate.FilterInput:
		m.handleFilterInputKey(msg)
	}
}

func (m *Model) handleNormalKey(msg tea.KeyMsg) {
	switch msg.String() {
	case "h":
		m.ui.OpenHelp()
	case "/":
		m.ui.OpenFilterInput()
	case "tab":
		m.ui.CycleFocus()
	case "e":
		m.ui.Expand(10)
	case "m":
		m.ui.Minimise(10)
	case "enter":
		if rec := m.selectedRecord(); rec != nil {
			m.reg.Focus(rec.Identity.PID)
			m.ui.OpenProcessDetail(rec.Identity.PID)
		}
	case "k":
		// Kill shortcut: focus the selected row and jump straight to the
		// signal menu, skipping the intermediate detail screen.
		if rec := m.selectedRecord(); rec != nil {
			m.reg.Focus(rec.Identity.PID)
			m.ui.OpenProcessDetail(rec.Identity.PID)
			m.ui.OpenSignalMenu()
		}
	case "up":
		if m.ui.SelectedRow > 0 {
			m.ui.SelectedRow--
		}
	case "down", "j":
		m.ui.SelectedRow++
	case "pgup":
		m.ui.SelectedRow -= m.processPageSize()
		if m.ui.SelectedRow < 0 {
			m.ui.SelectedRow = 0
		}
	case "pgdown":
		m.ui.SelectedRow += m.processPageSize()
	case "+", "=":
		m.ui.ZoomIn(visibleColumns)
	case "-":
		m.ui.ZoomOut(m.store.LatestTick() - m.store.OldestTick())
	case "left":
		m.ui.PanBack(m.store.OldestTick())
	case "right":
		m.ui.PanForward(m.store.LatestTick())
	case "`":
		m.ui.ResetZoom(m.store.LatestTick())
	}
}

func (m *Model) handleSignalMenuKey(msg tea.KeyMsg) {
	switch msg.String() {
	case "esc":
		m.ui.CancelSignalMenu()
	case "enter":
		m.ui.ConfirmSignal(15) // default to SIGTERM on bare enter
		m.sendPendingSignal()
	case "1":
		m.ui.ConfirmSignal(1)
		m.sendPendingSignal()
	case "2":
		m.ui.ConfirmSignal(2)
		m.sendPendingSignal()
	case "9":
		m.ui.ConfirmSignal(9)
		m.sendPendingSignal()
	}
}

func (m *Model) sendPendingSignal() {
	if err := m.reg.Signal(m.caps, m.ui.FocusedPID, m.ui.PendingSignal); err != nil {
		m.setBanner(signalErrorBanner(err))
	}
}

// signalErrorBanner maps a probe-layer signal failure to the short,
// user-facing phrase the footer banner shows (scenario: signalling a pid
// owned by another user surfaces "insufficient privileges", not the raw
// EPERM wrapper text).
func signalErrorBanner(err error) string {
	switch probe.KindOf(err) {
	case probe.KindPermission:
		return "insufficient privileges"
	case probe.KindNotFound:
		return "process no longer exists"
	default:
		return "signal failed, try again"
	}
}

func (m *Model) handleFilterInputKey(msg tea.KeyMsg) {
	switch msg.Type {
	case tea.KeyEnter:
		m.ui.CommitFilter()
	case tea.KeyEsc:
		m.ui.DiscardFilter()
	case tea.KeyBackspace:
		if n := len(m.ui.FilterDraft); n > 0 {
			m.ui.FilterDraft = m.ui.FilterDraft[:n-1]
		}
	case tea.KeyRunes:
		m.ui.FilterDraft += string(msg.Runes)
	}
}

// processPageSize applies renderProcessTable's "height minus 3" rule to the
// full terminal height, so PgUp/PgDn move the selection by that many rows;
// this is larger than the process table's own visible rows, whose height is
// what remains below the chart sections.
func (m *Model) processPageSize() int {
	visible := m.height - 3
	if visible < 1 {
		visible = 1
	}
	return visible
}

func (m *Model) selectedRecord() *zmodel.ProcessRecord {
	recs := m.reg.View(m.sortKey, false, m.ui.FilterCommitted)
	if m.ui.SelectedRow < 0 || m.ui.SelectedRow >= len(recs) {
		return nil
	}
	return recs[m.ui.SelectedRow]
}
