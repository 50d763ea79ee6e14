// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package turn contains the per-question state machine for a chat session.
package turn

import (
	"sync"
	"testing"
)

// =============================================================================
// REGISTRY TESTS
// =============================================================================

func TestRegistryAppendOrder(t *testing.T) {
	r := NewRegistry()
	r.Add("first")
	r.Add("second")
	r.Add("third")

	turns := r.Turns()
	if len(turns) != 3 {
		t.Fatalf("Len = %d, want 3", len(turns))
	}
	for i, q := range []string{"first", "second", "third"} {
		if turns[i].Question() != q {
			t.Errorf("turns[%d].Question = %q, want %q", i, turns[i].Question(), q)
		}
	}
}

func TestRegistryTurnsIsSnapshot(t *testing.T) {
	r := NewRegistry()
	r.Add("first")

	snapshot := r.Turns()
	r.Add("second")

	if len(snapshot) != 1 {
		t.Errorf("earlier snapshot grew to %d entries", len(snapshot))
	}
	if r.Len() != 2 {
		t.Errorf("Len = %d, want 2", r.Len())
	}
}

func TestRegistryLast(t *testing.T) {
	r := NewRegistry()
	if r.Last() != nil {
		t.Error("Last on empty registry should be nil")
	}

	r.Add("first")
	last := r.Add("second")
	if r.Last() != last {
		t.Error("Last did not return the most recent turn")
	}
}

func TestRegistryAnyActive(t *testing.T) {
	r := NewRegistry()
	if r.AnyActive() {
		t.Error("empty registry reported active turns")
	}

	a := r.Add("a")
	if !r.AnyActive() {
		t.Error("pending turn not reported active")
	}

	a.ApplyFinal("done")
	if r.AnyActive() {
		t.Error("terminal-only registry reported active turns")
	}

	b := r.Add("b")
	b.ApplyToken("x")
	if !r.AnyActive() {
		t.Error("streaming turn not reported active")
	}
}

// TestRegistryFailureIsolation: a failed turn never affects ordering or the
// other turns.
func TestRegistryFailureIsolation(t *testing.T) {
	r := NewRegistry()
	ok1 := r.Add("one")
	bad := r.Add("two")
	ok2 := r.Add("three")

	ok1.ApplyFinal("answer one")
	bad.ApplyError("boom")
	ok2.ApplyToken("answer ")
	ok2.ApplyToken("three")
	ok2.EndOfStream()

	snaps := r.Snapshots()
	if len(snaps) != 3 {
		t.Fatalf("Snapshots len = %d, want 3", len(snaps))
	}
	if snaps[0].Status != StatusComplete || snaps[0].DisplayText != "answer one" {
		t.Errorf("turn one = %+v", snaps[0])
	}
	if snaps[1].Status != StatusFailed || snaps[1].ErrorMessage != "boom" {
		t.Errorf("turn two = %+v", snaps[1])
	}
	if snaps[2].Status != StatusComplete || snaps[2].DisplayText != "answer three" {
		t.Errorf("turn three = %+v", snaps[2])
	}
}

func TestRegistryConcurrentAppends(t *testing.T) {
	r := NewRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tr := r.Add("q")
			tr.ApplyToken("a")
			tr.EndOfStream()
		}()
	}
	wg.Wait()

	if r.Len() != 50 {
		t.Errorf("Len = %d, want 50", r.Len())
	}
	for i, tr := range r.Turns() {
		if tr.Status() != StatusComplete {
			t.Errorf("turn %d status = %v, want complete", i, tr.Status())
		}
	}
}
