// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package advisor provides the HTTP client for the askton inference service.
package advisor

import "strings"

// =============================================================================
// LINE BUFFER
// =============================================================================

// LineBuffer reassembles newline-delimited records from arbitrarily fragmented
// chunks. The transport gives no record-boundary guarantee: a chunk may hold
// half a record, several records, or a record split across three chunks. Feed
// retains the incomplete trailing fragment between calls so that the sequence
// of returned lines depends only on the concatenated stream, never on where
// the chunk boundaries fell.
//
// Because splitting happens only at '\n' bytes and the remainder is carried
// over intact, a chunk boundary inside a multi-byte UTF-8 character cannot
// corrupt the record: the partial bytes sit in the carry-over until the rest
// arrives.
type LineBuffer struct {
	carry string
}

// Feed appends chunk to the carry-over and returns every complete line.
// The trailing fragment (everything after the last '\n', possibly empty)
// becomes the new carry-over.
func (b *LineBuffer) Feed(chunk string) []string {
	data := b.carry + chunk
	if !strings.Contains(data, "\n") {
		b.carry = data
		return nil
	}

	parts := strings.Split(data, "\n")
	b.carry = parts[len(parts)-1]
	return parts[:len(parts)-1]
}

// Flush returns the carry-over as a final line if it is non-empty.
// A trailing record with no terminator is still a valid record; call this
// once when the underlying stream ends.
func (b *LineBuffer) Flush() (string, bool) {
	if b.carry == "" {
		return "", false
	}
	line := b.carry
	b.carry = ""
	return line, true
}

// Pending returns the number of buffered bytes awaiting a terminator.
func (b *LineBuffer) Pending() int {
	return len(b.carry)
}
