// Copyright 2026, Zenith contributors.
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"fmt"
	"strings"

	"github.com/zenith-tui/zenith/internal/registry"
	"github.com/zenith-tui/zenith/internal/zmodel"
)

// renderProcessTable draws the visible window of records around
// selectedRow, scrolled to keep the selection in frame (
// 3), with the focused section's border treatment.
func renderProcessTable(records []*zmodel.ProcessRecord, selectedRow int, width, height int, focused bool) string {
	header := fmt.Sprintf("%6s %-10s %6s %-24s %6s %8s %8s %6s", "PID", "USER", "NICE", "COMMAND", "CPU%", "MEM", "READ/s", "STATE")
	lines := []string{dimStyle.Render(header)}

	visibleRows := height - 3 // top/bottom border + header
	if visibleRows < 1 {
		visibleRows = 1
	}
	start := scrollOffset(selectedRow, len(records), visibleRows)
	end := start + visibleRows
	if end > len(records) {
		end = len(records)
	}

	for i := start; i < end; i++ {
		rec := records[i]
		row := fmt.Sprintf("%6d %-10s %6d %-24s %6.1f %8s %8s %6c",
			rec.Identity.PID,
			truncate(userOrDash(rec.Latest.Username), 10),
			rec.Latest.Nice,
			truncate(rec.Latest.Command, 24),
			rec.CPUPercent,
			fmtBytes(rec.Latest.RSSBytes),
			fmtBytes(uint64(rec.ReadRate))+"/s",
			rune(rec.Latest.Status),
		)
		if i == selectedRow {
			row = selectedRowStyle.Render(row)
		} else if rec.Marked {
			row = warnStyle.Render(row)
		}
		lines = append(lines, row)
	}

	body := strings.Join(lines, "\n")
	return sectionFrame(focused).Width(width).Height(height).Render(body)
}

// scrollOffset computes the first visible row index so selected stays
// within [offset, offset+visible) whenever possible.
func scrollOffset(selected, total, visible int) int {
	if total <= visible {
		return 0
	}
	offset := selected - visible/2
	if offset < 0 {
		offset = 0
	}
	if offset > total-visible {
		offset = total - visible
	}
	return offset
}

// userOrDash renders "-" for a uid Capabilities.ResolveUsername could not
// map to a name (e.g. a deleted account), rather than a blank column.
func userOrDash(u string) string {
	if u == "" {
		return "-"
	}
	return u
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 1 {
		return s[:n]
	}
	return s[:n-1] + "…"
}

func fmtBytes(b uint64) string {
	switch {
	case b >= 1<<30:
		return fmt.Sprintf("%.1fG", float64(b)/(1<<30))
	case b >= 1<<20:
		return fmt.Sprintf("%.1fM", float64(b)/(1<<20))
	case b >= 1<<10:
		return fmt.Sprintf("%.1fK", float64(b)/(1<<10))
	default:
		return fmt.Sprintf("%dB", b)
	}
}

// signalName maps the handful of signals the SignalMenu offers to their
// mnemonic (the `k` kill shortcut opens this menu).
func signalName(sig int) string {
	switch sig {
	case 1:
		return "SIGHUP"
	case 2:
		return "SIGINT"
	case 9:
		return "SIGKILL"
	case 15:
		return "SIGTERM"
	case 19:
		return "SIGSTOP"
	case 18:
		return "SIGCONT"
	default:
		return fmt.Sprintf("signal %d", sig)
	}
}

// ResolveSortKey maps a persisted sort selector string to a
// registry.SortKey; used by cmd/zenith/main.go when restoring a
// preference saved by Model.savePrefs.
func ResolveSortKey(s string) registry.SortKey {
	switch s {
	case "mem":
		return registry.SortByMem
	case "pid":
		return registry.SortByPID
	case "command":
		return registry.SortByCommand
	default:
		return registry.SortByCPU
	}
}
