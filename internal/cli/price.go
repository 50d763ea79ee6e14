// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// price.go - Price chart command for the askton CLI.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/askton-tui/internal/config"
	"github.com/jeranaias/askton-tui/internal/prices"
	"github.com/jeranaias/askton-tui/internal/ui/styles"
)

// =============================================================================
// STYLES
// =============================================================================

var (
	priceChartStyle = lipgloss.NewStyle().
			Foreground(styles.Cyan)

	priceUpStyle = lipgloss.NewStyle().
			Foreground(styles.Emerald).
			Bold(true)

	priceDownStyle = lipgloss.NewStyle().
			Foreground(styles.Rose).
			Bold(true)

	priceCaptionStyle = lipgloss.NewStyle().
				Foreground(styles.TextMuted)
)

// =============================================================================
// PRICE HANDLER
// =============================================================================

// HandlePrice fetches and renders a price sparkline.
func HandlePrice(args Args, cfg *config.Config) error {
	parser := NewArgParser(args.Raw)

	asset := parser.Flag("asset")
	if asset == "" {
		asset = "TON"
	}
	days := parser.IntFlag("days", 7)
	width := parser.IntFlag("width", 0)
	if width <= 0 {
		width = GetTerminalWidth() - 4
	}
	if width > 120 {
		width = 120
	}

	baseURL := cfg.Server.BaseURL
	if args.ServerURL != "" {
		baseURL = args.ServerURL
	}
	client := prices.NewClient(baseURL)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	points, err := client.Chart(ctx, asset, days)
	if err != nil {
		if errors.Is(err, prices.ErrNoData) {
			return fmt.Errorf("no price data for %s", asset)
		}
		if errors.Is(err, prices.ErrRateLimited) {
			return fmt.Errorf("price API rate limited, try again shortly")
		}
		return fmt.Errorf("price request failed: %w", err)
	}

	printChart(asset, days, points, width)
	return nil
}

// printChart renders the sparkline with a summary line underneath.
func printChart(asset string, days int, points []prices.Point, width int) {
	summary := prices.Summarize(points)

	header := fmt.Sprintf("%s / USD - last %d days", strings.ToUpper(asset), days)
	fmt.Println(priceCaptionStyle.Render(header))

	fmt.Println(priceChartStyle.Render(prices.Sparkline(points, width)))

	changeStyle := priceUpStyle
	arrow := "+"
	if summary.ChangePct < 0 {
		changeStyle = priceDownStyle
		arrow = ""
	}

	fmt.Printf("%s %s %s\n",
		priceCaptionStyle.Render(fmt.Sprintf("low %.4f / high %.4f", summary.Low, summary.High)),
		fmt.Sprintf("last %.4f", summary.Last),
		changeStyle.Render(fmt.Sprintf("(%s%.2f%%)", arrow, summary.ChangePct)))
}
