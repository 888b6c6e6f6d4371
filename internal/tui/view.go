// Copyright 2026, Zenith contributors.
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/zenith-tui/zenith/internal/series"
	"github.com/zenith-tui/zenith/internal/uistate"
)

const minWidth = 40
const minHeight = 12

// View is the stateless function of (UI state, Store, Registry, latest
// Snapshot, terminal size). The CPU and Memory charts form the top row and
// the Network and Disk charts the middle row, each half the terminal wide;
// the process table takes the rows left below them. A chart section whose
// height override is 0 renders empty. The percentage heights from the CLI
// flags and config file are not used for this layout.
func (m *Model) View() string {
	if m.width < minWidth || m.height < minHeight {
		return renderTooSmall(m.width, m.height)
	}
	if m.latest == nil {
		return dimStyle.Render("collecting first sample...")
	}

	body := m.renderSections()
	switch m.ui.State {
	case uistate.Help:
		body = overlay(body, m.renderHelp())
	case uistate.ProcessDetail:
		body = overlay(body, m.renderProcessDetail())
	case uistate.SignalMenu:
		body = overlay(body, m.renderSignalMenu())
	case uistate.FilterInput:
		body = overlay(body, m.renderFilterInput())
	}
	if m.banner != "" {
		body = body + "\n" + critStyle.Render(m.banner)
	}
	return body
}

func (m *Model) renderSections() string {
	chartWidth := m.width/2 - 2
	snap := m.latest

	cpuChart := m.sectionOrAbsent("CPU", series.MetricCPUAggregate, chartWidth, snap.Absent.CPU, uistate.SectionCPU, "probe failed this tick")
	memChart := m.sectionOrAbsent("Memory", series.MetricMemUsed, chartWidth, snap.Absent.Mem, uistate.SectionMemory, "probe failed this tick")

	var netChart, diskChart string
	if len(snap.Nics) > 0 {
		netChart = m.sectionOrAbsent("Network ("+snap.Nics[0].Name+")", series.NicRxID(snap.Nics[0].Name), chartWidth, snap.Absent.Net, uistate.SectionNetwork, "no interfaces")
	} else {
		netChart = renderAbsentSection("Network", "no interfaces detected", chartWidth, m.ui.FocusedSection == uistate.SectionNetwork)
	}
	if len(snap.Mounts) > 0 {
		diskChart = m.sectionOrAbsent("Disk ("+snap.Mounts[0].MountPoint+")", series.MountReadID(snap.Mounts[0].MountPoint), chartWidth, snap.Absent.Disk, uistate.SectionDisk, "no mounts")
	} else {
		diskChart = renderAbsentSection("Disk", "no mounts detected", chartWidth, m.ui.FocusedSection == uistate.SectionDisk)
	}

	top := lipgloss.JoinHorizontal(lipgloss.Top, cpuChart, memChart)
	mid := lipgloss.JoinHorizontal(lipgloss.Top, netChart, diskChart)

	procHeight := m.height - lipgloss.Height(top) - lipgloss.Height(mid) - 2
	if procHeight < 3 {
		procHeight = 3
	}
	records := m.reg.View(m.sortKey, false, m.ui.FilterCommitted)
	procTable := renderProcessTable(records, m.ui.SelectedRow, m.width-2, procHeight, m.ui.FocusedSection == uistate.SectionProcess)

	header := m.renderHeader()
	return lipgloss.JoinVertical(lipgloss.Left, header, top, mid, procTable)
}

func (m *Model) sectionOrAbsent(title, metricID string, width int, absent bool, section uistate.Section, reason string) string {
	focused := m.ui.FocusedSection == section
	if h, ok := m.ui.HeightOverride[section]; ok && h == 0 {
		return ""
	}
	if absent {
		return renderAbsentSection(title, reason, width, focused)
	}
	s, ok := m.store.Series(metricID)
	if !ok {
		return renderAbsentSection(title, "no data yet", width, focused)
	}
	buckets := s.Range(m.ui.Zoom.AnchorTick, m.ui.Zoom.SpanTicks, visibleColumns)
	return renderChart(title, buckets, width, focused)
}

func (m *Model) renderHeader() string {
	snap := m.latest
	scroll := "live"
	if !m.ui.Zoom.AutoScroll {
		scroll = "paused"
	}
	line := fmt.Sprintf("zenith — tick %d  span=%.0fs  %s  filter=%q  sort=%v",
		snap.Tick, (time.Duration(m.ui.Zoom.SpanTicks) * m.refreshPeriod).Seconds(), scroll, m.ui.FilterCommitted, m.sortKey)
	return titleStyle.Render(line)
}

func (m *Model) renderHelp() string {
	lines := []string{
		titleStyle.Render("Help"),
		"h          toggle this help",
		"tab        cycle focused section",
		"e / m      expand / minimise focused section",
		"enter      open process detail on selected row",
		"k          kill shortcut: focus + signal menu on selected row",
		"pgup/pgdn  page the process table",
		"s          (in detail) open signal menu",
		"/          edit filter",
		"+ / -      zoom in / out",
		"← / →      pan back / forward",
		"`          reset zoom",
		"q          quit",
		"",
		dimStyle.Render("press h or esc to close"),
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderProcessDetail() string {
	rec, ok := m.reg.RecordByPID(m.ui.FocusedPID)
	if !ok {
		return critStyle.Render("process no longer exists")
	}
	lines := []string{
		titleStyle.Render(fmt.Sprintf("pid %d — %s", rec.Identity.PID, rec.Latest.Command)),
		fmt.Sprintf("cmdline: %s", rec.Latest.Cmdline),
		fmt.Sprintf("cpu%%: %.1f   mem: %s   read/s: %s   write/s: %s",
			rec.CPUPercent, fmtBytes(rec.Latest.RSSBytes), fmtBytes(uint64(rec.ReadRate)), fmtBytes(uint64(rec.WriteRate))),
		fmt.Sprintf("nice: %d   threads: %d   state: %c", rec.Latest.Nice, rec.Latest.Threads, rune(rec.Latest.Status)),
		"",
		dimStyle.Render("s: signal menu   esc: back"),
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderSignalMenu() string {
	lines := []string{
		titleStyle.Render("Send signal"),
		"1  " + signalName(1),
		"2  " + signalName(2),
		"9  " + signalName(9),
		"enter  " + signalName(15) + " (default)",
		"",
		dimStyle.Render("esc: cancel"),
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderFilterInput() string {
	return titleStyle.Render("Filter") + "\n" + m.ui.FilterDraft + "█"
}

func overlay(base, modal string) string {
	return base + "\n\n" + modalStyle.Render(modal)
}
