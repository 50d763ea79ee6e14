// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"testing"
)

func TestRenderCacheFirstUpdateAlwaysRenders(t *testing.T) {
	c := newRenderCache()
	if !c.ShouldUpdate("hello") {
		t.Error("first update should always render")
	}
}

func TestRenderCacheSkipsIdenticalContent(t *testing.T) {
	c := newRenderCache()
	c.ShouldUpdate("transcript")

	if c.ShouldUpdate("transcript") {
		t.Error("identical content should be skipped")
	}

	updates, skips := c.Stats()
	if updates != 2 {
		t.Errorf("updates = %d, want 2", updates)
	}
	if skips != 1 {
		t.Errorf("skips = %d, want 1", skips)
	}
}

func TestRenderCacheDetectsChange(t *testing.T) {
	c := newRenderCache()
	c.ShouldUpdate("one")

	if !c.ShouldUpdate("two") {
		t.Error("changed content should render")
	}
	// Same length, different bytes.
	if !c.ShouldUpdate("twe") {
		t.Error("same-length change should render")
	}
}

func TestRenderCacheSkipRunThenChange(t *testing.T) {
	c := newRenderCache()
	c.ShouldUpdate("a")
	for i := 0; i < 5; i++ {
		if c.ShouldUpdate("a") {
			t.Fatal("repeat content rendered")
		}
	}
	if !c.ShouldUpdate("b") {
		t.Error("change after skip run should render")
	}
}
