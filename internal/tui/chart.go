// Copyright 2026, Zenith contributors.
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"fmt"
	"strings"

	"github.com/zenith-tui/zenith/internal/series"
)

// sparkBlocks are the 9 levels (a blank plus the 8 Unicode block heights)
// used to render one bucket's avg value as a single column, lowest to
// highest.
var sparkBlocks = []rune(" ▁▂▃▄▅▆▇█")

// renderChart draws one metric's bucketed range as a single-row
// sparkline, with a min/avg/max legend line beneath it:
// "aggregates per-core series into max+avg bands" generalizes directly to
// any single series this way). Absent buckets render as a dim gap,
// tolerating Absent samples.
func renderChart(title string, buckets []series.Bucket, width int, focused bool) string {
	if width < 4 {
		return title
	}
	var spark strings.Builder
	var lo, hi float64
	first := true
	for _, b := range buckets {
		if b.IsAbsent() {
			continue
		}
		if first || b.Min < lo {
			lo = b.Min
		}
		if first || b.Max > hi {
			hi = b.Max
		}
		first = false
	}
	if hi == lo {
		hi = lo + 1
	}

	for _, b := range buckets {
		if b.IsAbsent() {
			spark.WriteString(absentStyle.Render("·"))
			continue
		}
		norm := (b.Avg - lo) / (hi - lo)
		if norm < 0 {
			norm = 0
		}
		if norm > 1 {
			norm = 1
		}
		idx := int(norm * float64(len(sparkBlocks)-1))
		spark.WriteRune(sparkBlocks[idx])
	}

	legend := dimStyle.Render(fmt.Sprintf("min=%.1f avg=%.1f max=%.1f", lo, avgOf(buckets), hi))
	header := titleStyle.Render(title)
	body := header + "\n" + spark.String() + "\n" + legend
	return sectionFrame(focused).Width(width).Render(body)
}

func avgOf(buckets []series.Bucket) float64 {
	var sum float64
	var n int
	for _, b := range buckets {
		if b.IsAbsent() {
			continue
		}
		sum += b.Avg
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// renderAbsentSection draws the "grey out with reason" placeholder
// for a probe that failed this tick.
func renderAbsentSection(title, reason string, width int, focused bool) string {
	body := titleStyle.Render(title) + "\n" + absentStyle.Render("unavailable: "+reason)
	return sectionFrame(focused).Width(width).Render(body)
}

// renderTooSmall is the sub-minimum terminal size fallback.
func renderTooSmall(w, h int) string {
	return lipglossCenterPlaceholder(w, h, "terminal too small")
}

func lipglossCenterPlaceholder(w, h int, msg string) string {
	if w <= 0 {
		w = len(msg) + 2
	}
	if h <= 0 {
		h = 1
	}
	pad := (w - len(msg)) / 2
	if pad < 0 {
		pad = 0
	}
	return strings.Repeat("\n", h/2) + strings.Repeat(" ", pad) + critStyle.Render(msg)
}
