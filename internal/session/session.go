// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session drives conversation turns and the auto-follow scroll policy.
package session

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/jeranaias/askton-tui/internal/advisor"
	"github.com/jeranaias/askton-tui/internal/turn"
)

// =============================================================================
// INTERFACES
// =============================================================================

// Streamer is the advisor transport the session asks questions through.
// *advisor.Client satisfies it; tests substitute scripted implementations.
type Streamer interface {
	AskStream(ctx context.Context, question string, callback advisor.EventCallback) error
}

// Notifier receives session events on the UI's behalf. Callbacks arrive from
// stream goroutines, so implementations must hand off to their own event loop
// (the TUI forwards into the bubbletea program) rather than mutate state
// directly.
type Notifier interface {
	// TurnChanged fires whenever a turn's visible state moves: new tokens,
	// a final answer, an error, or a status transition.
	TurnChanged(snap turn.Snapshot)

	// ScrollToBottom fires when the viewport should chase the newest content.
	ScrollToBottom()
}

// =============================================================================
// SESSION
// =============================================================================

// Options configures a session. Zero values select defaults.
type Options struct {
	// FollowBelow and ReleaseAbove set the auto-follow hysteresis band,
	// in rendered lines from the bottom of the content.
	FollowBelow  int
	ReleaseAbove int
}

// Session owns one conversation: the ordered registry of turns, the
// in-flight streams feeding them, and the auto-follow decision. One
// Session maps to one transcript.
//
// Thread-safety. All exported methods are safe for concurrent use. Stream
// goroutines apply events to their own turn and notify through the
// Notifier; Submit and ObserveScroll may be called from the UI loop at
// any time.
type Session struct {
	mu       sync.Mutex
	id       string
	client   Streamer
	registry *turn.Registry
	follow   *FollowController
	notifier Notifier

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	closed bool
}

// New creates a session. notifier may be nil for headless use.
func New(client Streamer, notifier Notifier, opts Options) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	return &Session{
		id:       uuid.NewString(),
		client:   client,
		registry: turn.NewRegistry(),
		follow:   NewFollowController(opts.FollowBelow, opts.ReleaseAbove),
		notifier: notifier,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// ID returns the session's stable identifier.
func (s *Session) ID() string {
	return s.id
}

// Registry exposes the turn registry for rendering and persistence.
func (s *Session) Registry() *turn.Registry {
	return s.registry
}

// Following reports the current auto-follow decision.
func (s *Session) Following() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.follow.Following()
}

// Thinking reports whether any turn is waiting on its first visible content.
func (s *Session) Thinking() bool {
	for _, snap := range s.registry.Snapshots() {
		if !snap.Status.Terminal() && snap.DisplayText == "" {
			return true
		}
	}
	return false
}

// Submit appends a new turn for question and starts streaming its answer.
// The turn is visible in the registry before the first event arrives.
// Returns nil after Close.
func (s *Session) Submit(question string) *turn.Turn {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	t := s.registry.Add(question)
	s.mu.Unlock()

	s.notifyTurn(t)

	s.wg.Add(1)
	go s.stream(t, question)

	return t
}

// ObserveScroll applies one viewport observation: offset is the scroll
// position, total the rendered content height, height the viewport height,
// all in rendered lines. Sitting on the bottom edge while a stream is
// active re-affirms following immediately so arriving content keeps the
// view pinned.
func (s *Session) ObserveScroll(offset, total, height int) {
	distance := (total - height) - offset
	if distance < 0 {
		distance = 0
	}

	s.mu.Lock()
	s.follow.Observe(distance)
	reaffirm := distance == 0 && s.registry.AnyActive()
	if reaffirm {
		s.follow.SetFollowing(true)
	}
	s.mu.Unlock()

	if reaffirm {
		s.notifyScroll()
	}
}

// Close cancels every in-flight stream and waits for their goroutines to
// finish. Turns cut off mid-stream settle through the usual transport
// failure path.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	s.cancel()
	s.wg.Wait()
}

// =============================================================================
// STREAMING
// =============================================================================

// stream runs one turn's transport lifecycle to completion.
func (s *Session) stream(t *turn.Turn, question string) {
	defer s.wg.Done()

	ctx, cancel := context.WithCancel(s.ctx)
	defer cancel()

	err := s.client.AskStream(ctx, question, func(ev advisor.StreamEvent) {
		switch ev.Kind {
		case advisor.EventToken:
			if t.ApplyToken(ev.Text) {
				s.contentGrew(t)
			}
		case advisor.EventFinal:
			if t.ApplyFinal(ev.Text) {
				s.contentGrew(t)
			}
		case advisor.EventError:
			if t.ApplyError(ev.Message) {
				// The service reported failure; nothing further on this
				// stream is meaningful.
				cancel()
				s.notifyTurn(t)
			}
		}
	})

	if err != nil {
		// No-op when a service error event already settled the turn.
		if t.FailTransport(failureMessage(err)) {
			s.notifyTurn(t)
		}
		return
	}

	// Clean end of stream: promote accumulated text, or fail an empty turn.
	if t.EndOfStream() {
		s.notifyTurn(t)
	}
}

// contentGrew handles a token or final answer landing on a turn: the UI
// re-renders, and a following viewport chases the new bottom.
func (s *Session) contentGrew(t *turn.Turn) {
	s.notifyTurn(t)

	s.mu.Lock()
	follow := s.follow.Following()
	s.mu.Unlock()

	if follow {
		s.notifyScroll()
	}
}

func (s *Session) notifyTurn(t *turn.Turn) {
	if s.notifier != nil {
		s.notifier.TurnChanged(t.Snapshot())
	}
}

func (s *Session) notifyScroll() {
	if s.notifier != nil {
		s.notifier.ScrollToBottom()
	}
}

// failureMessage extracts a user-facing message from a transport error.
func failureMessage(err error) string {
	var cerr *advisor.ClientError
	if errors.As(err, &cerr) {
		return cerr.Message
	}
	return err.Error()
}
