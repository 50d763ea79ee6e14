// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session is the engine behind a conversation: it owns the turn
// registry, runs one streaming request per submitted question, and decides
// when the viewport should follow arriving content.
//
// The package is UI-agnostic. Callers implement Notifier to receive
// turn-changed and scroll-target events; the TUI forwards them into its
// event loop, while the CLI and tests consume them directly.
//
// Auto-follow uses hysteresis: scrolling near the bottom re-arms
// following, scrolling far away releases it, and the band in between
// leaves the last decision in place. Sitting exactly on the bottom edge
// while a stream is active re-affirms following immediately.
package session
