// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the Bubble Tea chat view for the askton TUI.
//
// This file implements redraw suppression for the transcript viewport.
// During streaming the view is re-rendered on every frame tick, but most
// frames produce identical output; the cache detects that with a content
// hash and skips the redundant viewport update.
package chat

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
)

// renderCache skips viewport updates whose content is unchanged.
// PERFORMANCE: SHA-256 of the rendered transcript is cheap relative to a
// full viewport redraw, and more reliable than length comparison since
// streaming can replace content without changing its length.
type renderCache struct {
	mu          sync.Mutex
	lastHash    string
	updateCount uint64
	skipCount   uint64
}

func newRenderCache() *renderCache {
	return &renderCache{}
}

// ShouldUpdate reports whether the viewport content changed since the last
// accepted update. The first call always returns true.
func (c *renderCache) ShouldUpdate(content string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.updateCount++

	sum := sha256.Sum256([]byte(content))
	hash := hex.EncodeToString(sum[:])

	if c.updateCount > 1 && hash == c.lastHash {
		c.skipCount++
		return false
	}

	c.lastHash = hash
	return true
}

// Stats returns the total and skipped update counts.
func (c *renderCache) Stats() (updates, skips uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.updateCount, c.skipCount
}
