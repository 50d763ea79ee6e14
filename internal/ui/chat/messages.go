// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the Bubble Tea chat view for the askton TUI.
//
// This file defines the Bubble Tea message types used by the chat view and
// the commands that produce them. Messages fall into three groups:
//   - Session: turn updates and scroll requests forwarded from the
//     streaming session
//   - Advisor: reachability checks against the advisor service
//   - Rendering: coalesced redraw ticks during streaming
package chat

import (
	"context"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/askton-tui/internal/advisor"
	"github.com/jeranaias/askton-tui/internal/prices"
	"github.com/jeranaias/askton-tui/internal/storage"
	"github.com/jeranaias/askton-tui/internal/turn"
)

// =============================================================================
// SESSION MESSAGES
// =============================================================================

// TurnChangedMsg signals that a turn's observable state changed.
type TurnChangedMsg struct {
	Snapshot turn.Snapshot
}

// ScrollToBottomMsg requests that the viewport snap to the bottom.
type ScrollToBottomMsg struct{}

// =============================================================================
// ADVISOR MESSAGES
// =============================================================================

// AdvisorStatusMsg reports advisor service reachability.
type AdvisorStatusMsg struct {
	Running bool
	Err     error
}

// =============================================================================
// RENDERING MESSAGES
// =============================================================================

// RenderTickMsg drives coalesced transcript redraws while streaming.
type RenderTickMsg struct {
	Time time.Time
}

// TurnRecordedMsg reports the outcome of persisting a terminal turn.
type TurnRecordedMsg struct {
	TurnID string
	Err    error
}

// ConfigReloadedMsg delivers a live config reload from the file watcher.
type ConfigReloadedMsg struct {
	Markdown bool
}

// PriceChartMsg delivers market chart data for the price strip.
type PriceChartMsg struct {
	Asset  string
	Points []prices.Point
	Err    error
}

// =============================================================================
// COMMANDS
// =============================================================================

// renderFrameInterval caps transcript redraws at roughly 30fps.
const renderFrameInterval = 33 * time.Millisecond

// advisorCheckTimeout bounds the health probe.
const advisorCheckTimeout = 5 * time.Second

// checkAdvisorCmd creates a command that probes the advisor health endpoint.
func checkAdvisorCmd(client *advisor.Client) tea.Cmd {
	return func() tea.Msg {
		if client == nil {
			return AdvisorStatusMsg{Running: false, Err: advisor.ErrNotRunning}
		}

		ctx, cancel := context.WithTimeout(context.Background(), advisorCheckTimeout)
		defer cancel()

		err := client.CheckRunning(ctx)
		return AdvisorStatusMsg{Running: err == nil, Err: err}
	}
}

// renderTickCmd schedules the next coalesced redraw frame.
func renderTickCmd() tea.Cmd {
	return tea.Tick(renderFrameInterval, func(t time.Time) tea.Msg {
		return RenderTickMsg{Time: t}
	})
}

// priceChartDays is the window for the header price strip.
const priceChartDays = 7

// fetchPriceCmd creates a command that loads the header chart series.
func fetchPriceCmd(client *prices.Client, asset string) tea.Cmd {
	return func() tea.Msg {
		if client == nil {
			return nil
		}
		ctx, cancel := context.WithTimeout(context.Background(), advisorCheckTimeout)
		defer cancel()

		points, err := client.Chart(ctx, asset, priceChartDays)
		return PriceChartMsg{Asset: asset, Points: points, Err: err}
	}
}

// recordTurnCmd persists a terminal turn to conversation history.
func recordTurnCmd(store *storage.Store, sessionID string, snap turn.Snapshot) tea.Cmd {
	return func() tea.Msg {
		if store == nil {
			return nil
		}
		err := store.RecordTurn(sessionID, snap)
		return TurnRecordedMsg{TurnID: snap.ID, Err: err}
	}
}

// =============================================================================
// SESSION FORWARDER
// =============================================================================

// Forwarder bridges session callbacks into the Bubble Tea program.
// The session streams in its own goroutines; the program pointer is set
// after tea.NewProgram, so sends before that are dropped.
type Forwarder struct {
	mu      sync.RWMutex
	program *tea.Program
}

// NewForwarder creates an unattached forwarder.
func NewForwarder() *Forwarder {
	return &Forwarder{}
}

// Attach connects the forwarder to a running program.
func (f *Forwarder) Attach(p *tea.Program) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.program = p
}

// TurnChanged forwards a turn update into the program.
func (f *Forwarder) TurnChanged(snap turn.Snapshot) {
	f.send(TurnChangedMsg{Snapshot: snap})
}

// ScrollToBottom forwards a scroll request into the program.
func (f *Forwarder) ScrollToBottom() {
	f.send(ScrollToBottomMsg{})
}

func (f *Forwarder) send(msg tea.Msg) {
	f.mu.RLock()
	p := f.program
	f.mu.RUnlock()
	if p != nil {
		p.Send(msg)
	}
}
