// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the non-TUI command surface of askton:
// one-shot questions, an interactive line-mode chat, conversation
// history inspection, price charts, and the bundled development
// server. Commands degrade gracefully when stdout is not a terminal
// so piped output stays clean.
package cli
