// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the visual UI components for the askton TUI:
// the conversation transcript view, the bottom status bar, and the thinking
// spinner. Components are pure renderers over turn snapshots and theme
// styles; they hold no conversation state of their own.
package components
