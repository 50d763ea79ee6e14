// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jeranaias/askton-tui/internal/advisor"
	"github.com/jeranaias/askton-tui/internal/turn"
)

// =============================================================================
// TEST DOUBLES
// =============================================================================

// scriptStreamer replays a fixed event sequence for every question.
type scriptStreamer struct {
	events []advisor.StreamEvent
	err    error

	// hold keeps the stream open after the scripted events until closed,
	// simulating an in-flight request.
	hold chan struct{}
}

func (s *scriptStreamer) AskStream(ctx context.Context, question string, callback advisor.EventCallback) error {
	for _, ev := range s.events {
		callback(ev)
		if ev.Terminal() {
			return nil
		}
	}
	if s.hold != nil {
		select {
		case <-s.hold:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return s.err
}

// recorder captures notifier callbacks and signals terminal snapshots.
type recorder struct {
	mu       sync.Mutex
	changes  []turn.Snapshot
	scrolls  int
	terminal chan turn.Snapshot
}

func newRecorder() *recorder {
	return &recorder{terminal: make(chan turn.Snapshot, 8)}
}

func (r *recorder) TurnChanged(snap turn.Snapshot) {
	r.mu.Lock()
	r.changes = append(r.changes, snap)
	r.mu.Unlock()

	if snap.Status.Terminal() {
		r.terminal <- snap
	}
}

func (r *recorder) ScrollToBottom() {
	r.mu.Lock()
	r.scrolls++
	r.mu.Unlock()
}

func (r *recorder) scrollCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.scrolls
}

func (r *recorder) waitTerminal(t *testing.T) turn.Snapshot {
	t.Helper()
	select {
	case snap := <-r.terminal:
		return snap
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for turn to settle")
		return turn.Snapshot{}
	}
}

// =============================================================================
// LIFECYCLE
// =============================================================================

func TestSubmitStreamsToCompletion(t *testing.T) {
	streamer := &scriptStreamer{events: []advisor.StreamEvent{
		{Kind: advisor.EventToken, Text: "Buy "},
		{Kind: advisor.EventToken, Text: "TON"},
		{Kind: advisor.EventFinal, Text: "Buy TON."},
	}}
	rec := newRecorder()
	s := New(streamer, rec, Options{})
	defer s.Close()

	if s.Submit("should I buy?") == nil {
		t.Fatal("Submit() = nil, want turn")
	}

	snap := rec.waitTerminal(t)
	if snap.Status != turn.StatusComplete {
		t.Errorf("Status = %v, want %v", snap.Status, turn.StatusComplete)
	}
	if snap.DisplayText != "Buy TON." {
		t.Errorf("DisplayText = %q, want %q", snap.DisplayText, "Buy TON.")
	}
	if snap.Question != "should I buy?" {
		t.Errorf("Question = %q, want %q", snap.Question, "should I buy?")
	}
}

func TestSubmitServiceErrorFailsTurn(t *testing.T) {
	streamer := &scriptStreamer{events: []advisor.StreamEvent{
		{Kind: advisor.EventError, Message: "model unavailable"},
	}}
	rec := newRecorder()
	s := New(streamer, rec, Options{})
	defer s.Close()

	s.Submit("anything")

	snap := rec.waitTerminal(t)
	if snap.Status != turn.StatusFailed {
		t.Errorf("Status = %v, want %v", snap.Status, turn.StatusFailed)
	}
	if snap.ErrorMessage != "model unavailable" {
		t.Errorf("ErrorMessage = %q, want %q", snap.ErrorMessage, "model unavailable")
	}
}

func TestSubmitTransportErrorFailsTurn(t *testing.T) {
	streamer := &scriptStreamer{err: &advisor.ClientError{
		Type:    advisor.ErrTypeNotRunning,
		Message: "advisor service is not reachable",
	}}
	rec := newRecorder()
	s := New(streamer, rec, Options{})
	defer s.Close()

	s.Submit("anything")

	snap := rec.waitTerminal(t)
	if snap.Status != turn.StatusFailed {
		t.Errorf("Status = %v, want %v", snap.Status, turn.StatusFailed)
	}
	if snap.ErrorMessage != "advisor service is not reachable" {
		t.Errorf("ErrorMessage = %q, want %q", snap.ErrorMessage, "advisor service is not reachable")
	}
}

func TestSubmitPartialStreamCompletesWithAccumulated(t *testing.T) {
	// Stream ends cleanly without a final record: accumulated text stands.
	streamer := &scriptStreamer{events: []advisor.StreamEvent{
		{Kind: advisor.EventToken, Text: "partial "},
		{Kind: advisor.EventToken, Text: "answer"},
	}}
	rec := newRecorder()
	s := New(streamer, rec, Options{})
	defer s.Close()

	s.Submit("anything")

	snap := rec.waitTerminal(t)
	if snap.Status != turn.StatusComplete {
		t.Errorf("Status = %v, want %v", snap.Status, turn.StatusComplete)
	}
	if snap.DisplayText != "partial answer" {
		t.Errorf("DisplayText = %q, want %q", snap.DisplayText, "partial answer")
	}
}

func TestSubmitEmptyStreamFails(t *testing.T) {
	streamer := &scriptStreamer{}
	rec := newRecorder()
	s := New(streamer, rec, Options{})
	defer s.Close()

	s.Submit("anything")

	snap := rec.waitTerminal(t)
	if snap.Status != turn.StatusFailed {
		t.Errorf("Status = %v, want %v", snap.Status, turn.StatusFailed)
	}
	if snap.ErrorMessage != turn.NoResponseMessage {
		t.Errorf("ErrorMessage = %q, want %q", snap.ErrorMessage, turn.NoResponseMessage)
	}
}

func TestSubmitAfterCloseReturnsNil(t *testing.T) {
	s := New(&scriptStreamer{}, nil, Options{})
	s.Close()

	if got := s.Submit("anything"); got != nil {
		t.Errorf("Submit() after Close = %v, want nil", got)
	}
}

func TestCloseCancelsInFlightStream(t *testing.T) {
	streamer := &scriptStreamer{
		events: []advisor.StreamEvent{{Kind: advisor.EventToken, Text: "thinking"}},
		hold:   make(chan struct{}),
	}
	rec := newRecorder()
	s := New(streamer, rec, Options{})

	s.Submit("anything")

	done := make(chan struct{})
	go func() {
		s.Close()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Close did not return; stream goroutine leaked")
	}

	snap := rec.waitTerminal(t)
	if snap.Status != turn.StatusFailed {
		t.Errorf("Status = %v, want %v", snap.Status, turn.StatusFailed)
	}
}

// =============================================================================
// AUTO-FOLLOW
// =============================================================================

func TestContentGrowthScrollsWhileFollowing(t *testing.T) {
	streamer := &scriptStreamer{events: []advisor.StreamEvent{
		{Kind: advisor.EventToken, Text: "a"},
		{Kind: advisor.EventToken, Text: "b"},
		{Kind: advisor.EventFinal, Text: "ab"},
	}}
	rec := newRecorder()
	s := New(streamer, rec, Options{})
	defer s.Close()

	s.Submit("anything")
	rec.waitTerminal(t)

	// One scroll per growth event: two tokens plus the final answer.
	if got := rec.scrollCount(); got != 3 {
		t.Errorf("scroll count = %d, want 3", got)
	}
}

func TestContentGrowthDoesNotScrollAfterRelease(t *testing.T) {
	streamer := &scriptStreamer{events: []advisor.StreamEvent{
		{Kind: advisor.EventToken, Text: "a"},
		{Kind: advisor.EventFinal, Text: "a"},
	}}
	rec := newRecorder()
	s := New(streamer, rec, Options{})
	defer s.Close()

	// User scrolled far up before anything streams.
	s.ObserveScroll(0, 500, 20)
	if s.Following() {
		t.Fatal("Following() = true after scrolling far up, want false")
	}

	s.Submit("anything")
	rec.waitTerminal(t)

	if got := rec.scrollCount(); got != 0 {
		t.Errorf("scroll count = %d, want 0 (view released)", got)
	}
}

func TestObserveScrollDistanceMapping(t *testing.T) {
	s := New(&scriptStreamer{}, nil, Options{})
	defer s.Close()

	// 500 content lines, 20 visible, offset 380: distance 100, in-band.
	s.ObserveScroll(380, 500, 20)
	if !s.Following() {
		t.Error("Following() = false inside band, want unchanged true")
	}

	// Offset 300: distance 180, releases.
	s.ObserveScroll(300, 500, 20)
	if s.Following() {
		t.Error("Following() = true at distance 180, want false")
	}

	// Offset 460: distance 20, re-arms.
	s.ObserveScroll(460, 500, 20)
	if !s.Following() {
		t.Error("Following() = false at distance 20, want true")
	}
}

func TestBottomEdgeReaffirmsWhileStreaming(t *testing.T) {
	streamer := &scriptStreamer{hold: make(chan struct{})}
	rec := newRecorder()
	s := New(streamer, rec, Options{})

	s.Submit("anything")

	// At the bottom edge with a stream active: immediate scroll target.
	s.ObserveScroll(480, 500, 20)
	if got := rec.scrollCount(); got != 1 {
		t.Errorf("scroll count = %d, want 1 (re-affirm at bottom)", got)
	}

	close(streamer.hold)
	s.Close()
	rec.waitTerminal(t)

	// Idle at the bottom: no stream, no re-affirm scroll.
	before := rec.scrollCount()
	s.ObserveScroll(480, 500, 20)
	if got := rec.scrollCount(); got != before {
		t.Errorf("scroll count = %d, want %d (no active stream)", got, before)
	}
}

func TestThinking(t *testing.T) {
	streamer := &scriptStreamer{hold: make(chan struct{})}
	rec := newRecorder()
	s := New(streamer, rec, Options{})

	if s.Thinking() {
		t.Error("Thinking() = true with no turns, want false")
	}

	s.Submit("anything")
	if !s.Thinking() {
		t.Error("Thinking() = false with pending turn, want true")
	}

	close(streamer.hold)
	s.Close()
	rec.waitTerminal(t)

	if s.Thinking() {
		t.Error("Thinking() = true after all turns settled, want false")
	}
}
