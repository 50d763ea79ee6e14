// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package advisor provides the HTTP client for the askton inference service.
package advisor

import (
	"context"
	"io"
	"strings"
	"time"
)

// readChunkSize is the transport read buffer size. It bounds a single read,
// not a record: records of any length are reassembled by the LineBuffer.
const readChunkSize = 4096

// EventCallback is called for each decoded event, in arrival order.
type EventCallback func(event StreamEvent)

// =============================================================================
// STREAM READER
// =============================================================================

// StreamReader consumes an advisor response body and delivers decoded events.
// Chunks are read as they arrive, reassembled into complete records by the
// LineBuffer, and classified by DecodeEvent. Blank lines and undecodable
// records are dropped before they reach the callback.
type StreamReader struct {
	reader io.Reader
	lines  LineBuffer
	// PERFORMANCE: strings.Builder avoids quadratic allocations
	accumulator strings.Builder
	tokenCount  int
	startTime   time.Time
	firstToken  time.Time
}

// NewStreamReader creates a stream reader over an io.Reader.
func NewStreamReader(r io.Reader) *StreamReader {
	return &StreamReader{
		reader:    r,
		startTime: time.Now(),
	}
}

// Process reads the stream and calls the callback for each event.
// Blocks until a terminal event arrives, the stream ends, or the context is
// cancelled. A terminal event (final answer or error) stops reading
// immediately; nothing after it is processed even if more bytes arrive.
func (s *StreamReader) Process(ctx context.Context, callback EventCallback) error {
	buf := make([]byte, readChunkSize)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		n, err := s.reader.Read(buf)
		if n > 0 {
			for _, line := range s.lines.Feed(string(buf[:n])) {
				if s.deliver(line, callback) {
					return nil
				}
			}
		}
		if err != nil {
			if err == io.EOF {
				// A stream ending mid-record still yields that record
				if line, ok := s.lines.Flush(); ok {
					s.deliver(line, callback)
				}
				return nil
			}
			return err
		}
	}
}

// deliver decodes one line and invokes the callback.
// Returns true if the event was terminal.
func (s *StreamReader) deliver(line string, callback EventCallback) bool {
	event, ok := DecodeEvent(line)
	if !ok {
		return false
	}

	if event.Kind == EventToken {
		if s.tokenCount == 0 {
			s.firstToken = time.Now()
		}
		s.accumulator.WriteString(event.Text)
		s.tokenCount++
	}

	callback(event)
	return event.Terminal()
}

// Accumulated returns all token text received so far.
func (s *StreamReader) Accumulated() string {
	return s.accumulator.String()
}

// TokenCount returns the number of token events received.
func (s *StreamReader) TokenCount() int {
	return s.tokenCount
}

// TimeToFirstToken returns the delay before the first token, or zero if no
// token has arrived.
func (s *StreamReader) TimeToFirstToken() time.Duration {
	if s.firstToken.IsZero() {
		return 0
	}
	return s.firstToken.Sub(s.startTime)
}
