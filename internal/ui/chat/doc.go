// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the Bubble Tea chat view for the askton TUI.
//
// The chat model owns the viewport, the input line, and the status bar.
// Streaming happens outside the Bubble Tea loop in the session package;
// a Forwarder bridges session callbacks back into the program as messages.
// Transcript redraws are coalesced to a fixed frame rate during streaming
// and skipped entirely when the rendered content has not changed.
package chat
