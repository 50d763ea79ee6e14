// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package turn contains the per-question state machine for a chat session.
package turn

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
	"sync"
	"time"
)

// NoResponseMessage is the failure message for a stream that ended without
// producing any text.
const NoResponseMessage = "no response received"

// =============================================================================
// STATUS
// =============================================================================

// Status is the lifecycle state of a turn.
// Pending and Streaming are live; Complete and Failed are terminal and
// absorbing: once reached, no further event changes the turn.
type Status int

const (
	StatusPending Status = iota
	StatusStreaming
	StatusComplete
	StatusFailed
)

// String returns the status name for display and persistence.
func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusStreaming:
		return "streaming"
	case StatusComplete:
		return "complete"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ParseStatus converts a persisted status name back to a Status.
func ParseStatus(s string) Status {
	switch s {
	case "streaming":
		return StatusStreaming
	case "complete":
		return StatusComplete
	case "failed":
		return StatusFailed
	default:
		return StatusPending
	}
}

// Terminal returns true for Complete and Failed.
func (s Status) Terminal() bool {
	return s == StatusComplete || s == StatusFailed
}

// =============================================================================
// TURN
// =============================================================================

// Turn holds one question/answer exchange and its streaming state.
//
// A turn is created the instant its question is submitted and is driven only
// by the stream belonging to that question. The zero of everything except the
// question means Pending with no data yet.
//
// Thread-safety: a turn is mutated from its stream goroutine and read from
// the UI, so all accessors lock.
type Turn struct {
	mu sync.Mutex

	// Identity
	id        string
	question  string
	createdAt time.Time

	// Streaming state
	// PERFORMANCE: strings.Builder avoids quadratic allocations
	accumulated strings.Builder
	finalText   string
	hasFinal    bool
	errMessage  string
	status      Status
}

// New creates a turn in Pending state for the given question.
func New(question string) *Turn {
	return &Turn{
		id:        generateTurnID(),
		question:  question,
		createdAt: time.Now(),
		status:    StatusPending,
	}
}

// ID returns the turn's unique identifier.
func (t *Turn) ID() string {
	return t.id
}

// Question returns the submitted question text.
func (t *Turn) Question() string {
	return t.question
}

// CreatedAt returns the submission time.
func (t *Turn) CreatedAt() time.Time {
	return t.createdAt
}

// Status returns the current lifecycle state.
func (t *Turn) Status() Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

// =============================================================================
// EVENT APPLICATION
// =============================================================================

// ApplyToken appends an incremental fragment and moves the turn to Streaming.
// Returns false without side effects if the turn is already terminal.
func (t *Turn) ApplyToken(text string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.status.Terminal() {
		return false
	}

	t.accumulated.WriteString(text)
	t.status = StatusStreaming
	return true
}

// ApplyFinal records the authoritative answer and completes the turn.
// The final text overrides whatever the accumulated text held, even when
// they differ. Returns false if the turn is already terminal.
func (t *Turn) ApplyFinal(text string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.status.Terminal() {
		return false
	}

	t.finalText = text
	t.hasFinal = true
	t.status = StatusComplete
	return true
}

// ApplyError fails the turn with the given message.
// Returns false if the turn is already terminal.
func (t *Turn) ApplyError(message string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.status.Terminal() {
		return false
	}

	t.errMessage = message
	t.status = StatusFailed
	return true
}

// EndOfStream resolves a stream that ended without a final answer or error
// record. Accumulated text is promoted to a complete answer; an empty stream
// fails with a generic message. Returns false if the turn is already terminal.
func (t *Turn) EndOfStream() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.status.Terminal() {
		return false
	}

	if t.accumulated.Len() > 0 {
		t.status = StatusComplete
	} else {
		t.errMessage = NoResponseMessage
		t.status = StatusFailed
	}
	return true
}

// FailTransport fails the turn with a message describing a transport-level
// failure (connection error, non-success status). Returns false if the turn
// is already terminal.
func (t *Turn) FailTransport(message string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.status.Terminal() {
		return false
	}

	if message == "" {
		message = NoResponseMessage
	}
	t.errMessage = message
	t.status = StatusFailed
	return true
}

// =============================================================================
// DISPLAY
// =============================================================================

// DisplayText resolves the text a consumer should render: the final answer
// when present, else the accumulated text, else empty (the renderer shows its
// own placeholder for an empty live turn).
func (t *Turn) DisplayText() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.displayTextLocked()
}

func (t *Turn) displayTextLocked() string {
	if t.hasFinal {
		return t.finalText
	}
	return t.accumulated.String()
}

// AccumulatedText returns the token text gathered so far.
func (t *Turn) AccumulatedText() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.accumulated.String()
}

// ErrorMessage returns the failure message, empty unless the turn Failed.
func (t *Turn) ErrorMessage() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.errMessage
}

// =============================================================================
// SNAPSHOT
// =============================================================================

// Snapshot is an immutable copy of a turn's observable state, safe to hand
// to renderers and stores without further locking.
type Snapshot struct {
	ID           string
	Question     string
	DisplayText  string
	ErrorMessage string
	Status       Status
	CreatedAt    time.Time
}

// Snapshot captures the turn's current observable state.
func (t *Turn) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	return Snapshot{
		ID:           t.id,
		Question:     t.question,
		DisplayText:  t.displayTextLocked(),
		ErrorMessage: t.errMessage,
		Status:       t.status,
		CreatedAt:    t.createdAt,
	}
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// generateTurnID creates a unique turn ID.
func generateTurnID() string {
	bytes := make([]byte, 8)
	rand.Read(bytes)
	return "turn_" + hex.EncodeToString(bytes)
}
