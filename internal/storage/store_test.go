// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/askton-tui/internal/turn"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func completedSnap(id, question, answer string) turn.Snapshot {
	return turn.Snapshot{
		ID:          id,
		Question:    question,
		DisplayText: answer,
		Status:      turn.StatusComplete,
		CreatedAt:   time.Now(),
	}
}

func TestOpenCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "history.db")
	store, err := Open(path)
	require.NoError(t, err)
	defer store.Close()

	assert.Equal(t, path, store.Path())
}

func TestRecordAndReadTranscript(t *testing.T) {
	store := openTestStore(t)

	require.NoError(t, store.RecordTurn("sess-1", completedSnap("t1", "price of TON?", "around five dollars")))
	require.NoError(t, store.RecordTurn("sess-1", completedSnap("t2", "should I buy?", "not financial advice")))

	turns, err := store.Transcript("sess-1")
	require.NoError(t, err)
	require.Len(t, turns, 2)

	assert.Equal(t, "price of TON?", turns[0].Question)
	assert.Equal(t, "around five dollars", turns[0].Answer)
	assert.Equal(t, turn.StatusComplete, turns[0].Status)
	assert.Equal(t, "should I buy?", turns[1].Question)
}

func TestRecordTurnIgnoresNonTerminal(t *testing.T) {
	store := openTestStore(t)

	snap := completedSnap("t1", "q", "streaming...")
	snap.Status = turn.StatusStreaming
	require.NoError(t, store.RecordTurn("sess-1", snap))

	_, err := store.Transcript("sess-1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRecordFailedTurn(t *testing.T) {
	store := openTestStore(t)

	snap := turn.Snapshot{
		ID:           "t1",
		Question:     "q",
		ErrorMessage: "model unavailable",
		Status:       turn.StatusFailed,
		CreatedAt:    time.Now(),
	}
	require.NoError(t, store.RecordTurn("sess-1", snap))

	turns, err := store.Transcript("sess-1")
	require.NoError(t, err)
	require.Len(t, turns, 1)
	assert.Equal(t, "model unavailable", turns[0].Error)
	assert.Equal(t, turn.StatusFailed, turns[0].Status)
}

func TestSessionsListing(t *testing.T) {
	store := openTestStore(t)

	older := completedSnap("t1", "first question", "a")
	older.CreatedAt = time.Now().Add(-time.Hour)
	require.NoError(t, store.RecordTurn("sess-old", older))

	require.NoError(t, store.RecordTurn("sess-new", completedSnap("t2", "newer question", "b")))
	require.NoError(t, store.RecordTurn("sess-new", completedSnap("t3", "follow-up", "c")))

	sessions, err := store.Sessions()
	require.NoError(t, err)
	require.Len(t, sessions, 2)

	assert.Equal(t, "sess-new", sessions[0].ID)
	assert.Equal(t, 2, sessions[0].TurnCount)
	assert.Equal(t, "newer question", sessions[0].Preview)
	assert.Equal(t, "sess-old", sessions[1].ID)
}

func TestSearch(t *testing.T) {
	store := openTestStore(t)

	require.NoError(t, store.RecordTurn("sess-1", completedSnap("t1", "staking rewards", "about 4 percent")))
	require.NoError(t, store.RecordTurn("sess-2", completedSnap("t2", "wallet setup", "use the official app")))

	hits, err := store.Search("staking")
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "sess-1", hits[0].ID)

	// Answers are searched too
	hits, err = store.Search("official app")
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "sess-2", hits[0].ID)

	hits, err = store.Search("nothing here")
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestDeleteSession(t *testing.T) {
	store := openTestStore(t)

	require.NoError(t, store.RecordTurn("sess-1", completedSnap("t1", "q", "a")))
	require.NoError(t, store.DeleteSession("sess-1"))

	_, err := store.Transcript("sess-1")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, store.DeleteSession("sess-1"), ErrNotFound)
}

func TestReopenPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")

	store, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, store.RecordTurn("sess-1", completedSnap("t1", "q", "a")))
	require.NoError(t, store.Close())

	store, err = Open(path)
	require.NoError(t, err)
	defer store.Close()

	turns, err := store.Transcript("sess-1")
	require.NoError(t, err)
	assert.Len(t, turns, 1)
}
