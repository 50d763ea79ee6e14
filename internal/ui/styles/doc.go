// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles centralizes the askton TUI's visual styling: the
// adaptive color palette and the Theme of pre-built lipgloss styles the
// chat view and components render with. Colors adapt to light and dark
// terminal backgrounds automatically via termenv detection.
package styles
