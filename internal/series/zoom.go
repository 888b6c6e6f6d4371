// Copyright 2026, Zenith contributors.
// SPDX-License-Identifier: Apache-2.0

package series

// ZoomWindow is the UI's current time-navigation state, shared by every
// chart: an anchor tick and a span of ticks to look
// back from it.
type ZoomWindow struct {
	AnchorTick int64
	SpanTicks  int64
	// AutoScroll is true while AnchorTick tracks the latest tick; it is
	// false ("frozen") after a manual pan, and
	// re-armed by the reset key.
	AutoScroll bool
}

// DefaultSpans are the allowed span_ticks stops, in tick
// units (to be multiplied by the tick period for wall-clock spans by
// callers that need one).
var DefaultSpans = []int64{60, 300, 900, 3600}

// NewZoomWindow starts auto-scrolling at the default (smallest) span.
func NewZoomWindow(latestTick int64) ZoomWindow {
	return ZoomWindow{
		AnchorTick: latestTick,
		SpanTicks:  DefaultSpans[0],
		AutoScroll: true,
	}
}

// Advance re-anchors to latestTick while AutoScroll is on; PanBack
// disables it until Reset or a PanForward that reaches the latest tick.
func (z *ZoomWindow) Advance(latestTick int64) {
	if z.AutoScroll {
		z.AnchorTick = latestTick
	}
}

// ZoomIn halves the span, floored at minSpan (visible_columns).
func (z *ZoomWindow) ZoomIn(minSpan int64) {
	z.SpanTicks /= 2
	if z.SpanTicks < minSpan {
		z.SpanTicks = minSpan
	}
}

// ZoomOut doubles the span, capped at maxSpan (history depth
// boundary: "Panning past the oldest retained tick clamps").
func (z *ZoomWindow) ZoomOut(maxSpan int64) {
	z.SpanTicks *= 2
	if z.SpanTicks > maxSpan {
		z.SpanTicks = maxSpan
	}
}

// PanBack moves the anchor earlier by a quarter span, clamped so the
// window never reaches before oldestTick, and freezes auto-scroll.
func (z *ZoomWindow) PanBack(oldestTick int64) {
	z.AutoScroll = false
	z.AnchorTick -= z.SpanTicks / 4
	floor := oldestTick + z.SpanTicks
	if z.AnchorTick < floor {
		z.AnchorTick = floor
	}
}

// PanForward moves the anchor later by a quarter span, clamped to
// latestTick; reaching latestTick re-arms auto-scroll.
func (z *ZoomWindow) PanForward(latestTick int64) {
	z.AnchorTick += z.SpanTicks / 4
	if z.AnchorTick >= latestTick {
		z.AnchorTick = latestTick
		z.AutoScroll = true
	}
}

// Reset re-arms auto-scroll and restores the default span.
func (z *ZoomWindow) Reset(latestTick int64) {
	z.AnchorTick = latestTick
	z.SpanTicks = DefaultSpans[0]
	z.AutoScroll = true
}
