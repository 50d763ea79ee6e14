// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/askton-tui/internal/advisor"
	"github.com/jeranaias/askton-tui/internal/config"
	"github.com/jeranaias/askton-tui/internal/prices"
	"github.com/jeranaias/askton-tui/internal/session"
	"github.com/jeranaias/askton-tui/internal/turn"
	"github.com/jeranaias/askton-tui/internal/ui/components"
	"github.com/jeranaias/askton-tui/internal/ui/styles"
)

// scriptStreamer replays scripted events for each question.
type scriptStreamer struct {
	events []advisor.StreamEvent
	err    error
}

func (s *scriptStreamer) AskStream(ctx context.Context, question string, callback advisor.EventCallback) error {
	for _, ev := range s.events {
		callback(ev)
		if ev.Terminal() {
			return nil
		}
	}
	return s.err
}

func newTestModel(t *testing.T, streamer session.Streamer) (Model, *session.Session) {
	t.Helper()

	fwd := NewForwarder()
	sess := session.New(streamer, fwd, session.Options{})
	t.Cleanup(sess.Close)

	cfg := config.Default()
	m := New(sess, nil, nil, cfg, styles.NewTheme())
	return m, sess
}

func resize(m Model, width, height int) Model {
	updated, _ := m.Update(tea.WindowSizeMsg{Width: width, Height: height})
	return updated.(Model)
}

func waitForTerminal(t *testing.T, sess *session.Session) turn.Snapshot {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if last := sess.Registry().Last(); last != nil {
			snap := last.Snapshot()
			if snap.Status.Terminal() {
				return snap
			}
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("turn never reached a terminal state")
	return turn.Snapshot{}
}

func TestModelViewBeforeResize(t *testing.T) {
	m, _ := newTestModel(t, &scriptStreamer{})
	if got := m.View(); got != "Loading..." {
		t.Errorf("View() before resize = %q, want Loading...", got)
	}
}

func TestModelResizeRendersLayout(t *testing.T) {
	m, _ := newTestModel(t, &scriptStreamer{})
	m = resize(m, 100, 30)

	view := m.View()
	if !strings.Contains(view, "askton") {
		t.Errorf("view missing header title: %q", view)
	}
	if !strings.Contains(view, "Ask anything") {
		t.Errorf("view missing empty transcript hint: %q", view)
	}
}

func TestModelSubmitCreatesTurn(t *testing.T) {
	streamer := &scriptStreamer{
		events: []advisor.StreamEvent{
			{Kind: advisor.EventFinal, Text: "TON is a blockchain."},
		},
	}
	m, sess := newTestModel(t, streamer)
	m = resize(m, 100, 30)

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("what is TON?")})
	m = updated.(Model)
	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(Model)

	if sess.Registry().Len() != 1 {
		t.Fatalf("registry len = %d, want 1", sess.Registry().Len())
	}
	if m.input.Value() != "" {
		t.Errorf("input not cleared after submit: %q", m.input.Value())
	}

	snap := waitForTerminal(t, sess)
	if snap.Status != turn.StatusComplete {
		t.Errorf("turn status = %v, want complete", snap.Status)
	}
	if snap.DisplayText != "TON is a blockchain." {
		t.Errorf("display text = %q", snap.DisplayText)
	}
}

func TestModelSubmitEmptyInputIgnored(t *testing.T) {
	m, sess := newTestModel(t, &scriptStreamer{})
	m = resize(m, 100, 30)

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("   ")})
	m = updated.(Model)
	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	_ = updated

	if sess.Registry().Len() != 0 {
		t.Errorf("blank input created a turn")
	}
}

func TestModelTurnChangedRendersAnswer(t *testing.T) {
	streamer := &scriptStreamer{
		events: []advisor.StreamEvent{
			{Kind: advisor.EventFinal, Text: "Stake with a validator."},
		},
	}
	m, sess := newTestModel(t, streamer)
	m = resize(m, 100, 30)

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("staking?")})
	m = updated.(Model)
	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(Model)

	snap := waitForTerminal(t, sess)
	updated, _ = m.Update(TurnChangedMsg{Snapshot: snap})
	m = updated.(Model)

	if !strings.Contains(m.View(), "Stake with a validator.") {
		t.Errorf("view missing completed answer")
	}
}

// stalledStreamer never produces events until released, keeping its turn
// in the pending state.
type stalledStreamer struct {
	release chan struct{}
}

func (s *stalledStreamer) AskStream(ctx context.Context, question string, callback advisor.EventCallback) error {
	select {
	case <-s.release:
	case <-ctx.Done():
	}
	return nil
}

func TestModelThinkingHoldsUntilFirstToken(t *testing.T) {
	streamer := &stalledStreamer{release: make(chan struct{})}
	defer close(streamer.release)

	m, sess := newTestModel(t, streamer)
	m = resize(m, 100, 30)

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("slow question")})
	m = updated.(Model)
	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(Model)

	if m.statusBar.Status != components.StatusThinking {
		t.Fatalf("status after submit = %v, want thinking", m.statusBar.Status)
	}

	// The pending snapshot announcing the accepted question must not
	// flip the status; no answer content has arrived yet.
	updated, _ = m.Update(TurnChangedMsg{Snapshot: sess.Registry().Last().Snapshot()})
	m = updated.(Model)
	if m.statusBar.Status != components.StatusThinking {
		t.Errorf("status after pending snapshot = %v, want thinking", m.statusBar.Status)
	}

	updated, _ = m.Update(TurnChangedMsg{Snapshot: turn.Snapshot{
		ID:          "t1",
		Question:    "slow question",
		DisplayText: "first",
		Status:      turn.StatusStreaming,
	}})
	m = updated.(Model)
	if m.statusBar.Status != components.StatusStreaming {
		t.Errorf("status after first token = %v, want streaming", m.statusBar.Status)
	}
}

func TestModelAdvisorStatus(t *testing.T) {
	m, _ := newTestModel(t, &scriptStreamer{})
	m = resize(m, 100, 30)

	updated, _ := m.Update(AdvisorStatusMsg{Running: true})
	m = updated.(Model)
	if !m.connected {
		t.Error("connected not set after status message")
	}
	if !strings.Contains(m.View(), "ONLINE") {
		t.Errorf("status bar missing ONLINE after health check")
	}

	updated, _ = m.Update(AdvisorStatusMsg{Running: false, Err: advisor.ErrNotRunning})
	m = updated.(Model)
	if m.connected {
		t.Error("connected still set after failed health check")
	}
}

func TestModelScrollToBottomMsg(t *testing.T) {
	m, _ := newTestModel(t, &scriptStreamer{})
	m = resize(m, 100, 30)

	// Should not panic on an empty transcript.
	updated, _ := m.Update(ScrollToBottomMsg{})
	_ = updated.(Model)
}

func TestForwarderUnattachedDropsSends(t *testing.T) {
	fwd := NewForwarder()
	// Must not panic before Attach.
	fwd.TurnChanged(turn.Snapshot{ID: "x"})
	fwd.ScrollToBottom()
}

func TestModelPriceChartShownInView(t *testing.T) {
	m, _ := newTestModel(t, &scriptStreamer{})
	m = resize(m, 100, 30)

	points := []prices.Point{
		{Time: time.Unix(1700000000, 0), Value: 2.0},
		{Time: time.Unix(1700003600, 0), Value: 2.5},
	}
	updated, _ := m.Update(PriceChartMsg{Asset: "TON", Points: points})
	m = updated.(Model)

	if !strings.Contains(m.View(), "2.5000") {
		t.Errorf("view missing price strip data")
	}
}

func TestModelPriceChartErrorLeavesStripBlank(t *testing.T) {
	m, _ := newTestModel(t, &scriptStreamer{})
	m = resize(m, 100, 30)

	updated, _ := m.Update(PriceChartMsg{Asset: "TON", Err: prices.ErrNoData})
	m = updated.(Model)

	if m.priceStrip.HasData() {
		t.Error("price strip loaded data despite fetch error")
	}
}

func TestModelQuitClosesSession(t *testing.T) {
	m, sess := newTestModel(t, &scriptStreamer{})
	m = resize(m, 100, 30)

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	m = updated.(Model)
	if cmd == nil {
		t.Fatal("quit key returned no command")
	}
	if sess.Submit("after close") != nil {
		t.Error("session accepted a question after quit")
	}
	if m.View() != "" {
		t.Errorf("quitting view = %q, want empty", m.View())
	}
}
