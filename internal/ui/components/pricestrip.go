// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the visual UI components for the askton TUI.
package components

import (
	"fmt"

	"github.com/jeranaias/askton-tui/internal/prices"
	"github.com/jeranaias/askton-tui/internal/ui/styles"
)

// =============================================================================
// PRICE STRIP COMPONENT - One-line market sparkline
// =============================================================================

// PriceStrip renders a one-line price sparkline under the header.
// It stays blank until chart data arrives; fetch failures leave it blank
// rather than surfacing an error in the chrome.
type PriceStrip struct {
	Width int

	asset   string
	points  []prices.Point
	summary prices.Summary
	theme   *styles.Theme
}

// NewPriceStrip creates an empty price strip.
func NewPriceStrip(theme *styles.Theme) *PriceStrip {
	return &PriceStrip{
		Width: 80,
		theme: theme,
	}
}

// SetWidth updates the available render width.
func (p *PriceStrip) SetWidth(width int) {
	p.Width = width
}

// SetData installs a new chart series.
func (p *PriceStrip) SetData(asset string, points []prices.Point) {
	p.asset = asset
	p.points = points
	p.summary = prices.Summarize(points)
}

// HasData reports whether a chart has been loaded.
func (p *PriceStrip) HasData() bool {
	return len(p.points) > 0
}

// View renders the strip, or an empty string when no data is loaded.
func (p *PriceStrip) View() string {
	if !p.HasData() {
		return ""
	}

	caption := p.theme.ChartCaption.Render(p.asset + " ")
	trailer := fmt.Sprintf(" %.4f (%+.2f%%)", p.summary.Last, p.summary.ChangePct)

	changeStyle := p.theme.ChartUp
	if p.summary.ChangePct < 0 {
		changeStyle = p.theme.ChartDown
	}

	sparkWidth := p.Width - runeLen(p.asset) - 1 - runeLen(trailer) - 2
	if sparkWidth < 8 {
		sparkWidth = 8
	}
	spark := p.theme.ChartLine.Render(prices.Sparkline(p.points, sparkWidth))

	return " " + caption + spark + changeStyle.Render(trailer)
}
