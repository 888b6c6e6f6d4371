// Copyright 2026, Zenith contributors.
// SPDX-License-Identifier: Apache-2.0

package tui

import "github.com/charmbracelet/lipgloss"

// Styles follow ui/page_thresholds.go's convention of one lipgloss.Style
// per severity/zone, composed with JoinVertical/JoinHorizontal rather than
// hand-built ANSI escapes.
var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	critStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	absentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))

	focusedBorder = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("12")).
			Padding(0, 1)
	plainBorder = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("238")).
			Padding(0, 1)

	selectedRowStyle = lipgloss.NewStyle().Reverse(true)
	modalStyle       = lipgloss.NewStyle().
				Border(lipgloss.DoubleBorder()).
				BorderForeground(lipgloss.Color("13")).
				Padding(1, 2)
)

func sectionFrame(focused bool) lipgloss.Style {
	if focused {
		return focusedBorder
	}
	return plainBorder
}

func statusIcon(status string) string {
	switch status {
	case "crit":
		return critStyle.Render("●")
	case "warn":
		return warnStyle.Render("●")
	default:
		return okStyle.Render("●")
	}
}
