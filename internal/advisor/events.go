// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package advisor provides the HTTP client for the askton inference service.
package advisor

import (
	"encoding/json"
	"strings"
)

// =============================================================================
// STREAM EVENTS
// =============================================================================

// EventKind classifies a decoded stream record.
type EventKind int

const (
	// EventNone means the record carried no recognizable event.
	EventNone EventKind = iota
	// EventToken carries an incremental text fragment to append.
	EventToken
	// EventFinal carries the complete, authoritative answer. It supersedes
	// all previously accumulated tokens for the turn.
	EventFinal
	// EventError is the terminal failure signal for the turn.
	EventError
)

// String returns the event kind name for logging.
func (k EventKind) String() string {
	switch k {
	case EventToken:
		return "token"
	case EventFinal:
		return "final"
	case EventError:
		return "error"
	default:
		return "none"
	}
}

// StreamEvent is one decoded record from the advisor's response stream.
// Text is set for token and final events, Message for error events.
type StreamEvent struct {
	Kind    EventKind
	Text    string
	Message string
}

// Terminal returns true if the event ends the stream for its turn.
func (e StreamEvent) Terminal() bool {
	return e.Kind == EventFinal || e.Kind == EventError
}

// =============================================================================
// EVENT DECODER
// =============================================================================

// wireRecord mirrors one line of the advisor wire protocol. Unknown fields
// are ignored so the backend can extend the format without breaking clients.
type wireRecord struct {
	Token    string `json:"token"`
	Response string `json:"response"`
	Done     bool   `json:"done"`
	Error    string `json:"error"`
}

// DecodeEvent maps one line of text to exactly one StreamEvent, or to no
// event. Malformed lines and lines with none of the known fields are skipped
// (ok=false); a bad record is recovered locally and never surfaced.
//
// A record carrying both the final answer and the completion flag is
// classified as final even if it also carries a token or error field: the
// backend may emit a last final record after several token records, and the
// final answer always wins regardless of field ordering within the record.
func DecodeEvent(line string) (StreamEvent, bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return StreamEvent{}, false
	}

	var rec wireRecord
	if err := json.Unmarshal([]byte(line), &rec); err != nil {
		// Skip malformed records
		return StreamEvent{}, false
	}

	switch {
	case rec.Done && rec.Response != "":
		return StreamEvent{Kind: EventFinal, Text: rec.Response}, true
	case rec.Token != "":
		return StreamEvent{Kind: EventToken, Text: rec.Token}, true
	case rec.Error != "":
		return StreamEvent{Kind: EventError, Message: rec.Error}, true
	default:
		return StreamEvent{}, false
	}
}
