// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package turn contains the per-question state machine for a chat session.
//
// A Turn tracks one question/answer exchange through the lifecycle
//
//	Pending -> Streaming -> Complete | Failed
//
// driven by the events of its own response stream: token fragments accumulate,
// a final answer completes the turn and overrides the accumulation, an error
// record or transport failure fails it. Complete and Failed are absorbing;
// whatever arrives afterwards is ignored.
//
// The Registry owns the append-only ordered sequence of turns for a session
// and is the only holder of turn references; consumers read snapshots.
package turn
