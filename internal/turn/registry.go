// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package turn contains the per-question state machine for a chat session.
package turn

import "sync"

// =============================================================================
// REGISTRY
// =============================================================================

// Registry owns the ordered sequence of turns for one session.
// Insertion order is chronological order is display order. Turns are never
// removed or reordered, and a failed turn is never retried automatically:
// failures stay isolated per turn and the user asks again, which creates a
// fresh turn at the end.
//
// Thread-safety: appends happen on submit while readers iterate from the
// render loop, so both paths lock. Turns() hands out a copy, so a consumer
// iterates a stable snapshot while concurrent appends land on the next read.
type Registry struct {
	mu    sync.Mutex
	turns []*Turn
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Add creates a Pending turn for the question and appends it.
// The append is visible to readers before the returned turn receives any
// stream event.
func (r *Registry) Add(question string) *Turn {
	t := New(question)
	r.mu.Lock()
	r.turns = append(r.turns, t)
	r.mu.Unlock()
	return t
}

// Turns returns a stable snapshot of the sequence in insertion order.
func (r *Registry) Turns() []*Turn {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*Turn, len(r.turns))
	copy(out, r.turns)
	return out
}

// Snapshots captures the observable state of every turn in order.
func (r *Registry) Snapshots() []Snapshot {
	turns := r.Turns()
	out := make([]Snapshot, len(turns))
	for i, t := range turns {
		out[i] = t.Snapshot()
	}
	return out
}

// Len returns the number of turns.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.turns)
}

// Last returns the most recent turn, or nil if the registry is empty.
func (r *Registry) Last() *Turn {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.turns) == 0 {
		return nil
	}
	return r.turns[len(r.turns)-1]
}

// AnyActive returns true while at least one turn is non-terminal.
func (r *Registry) AnyActive() bool {
	for _, t := range r.Turns() {
		if !t.Status().Terminal() {
			return true
		}
	}
	return false
}
