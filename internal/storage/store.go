// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage persists conversation transcripts in SQLite.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/jeranaias/askton-tui/internal/turn"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	ErrNotFound      = errors.New("session not found")
	ErrDatabaseError = errors.New("database error")
)

// =============================================================================
// TYPES
// =============================================================================

// SessionMeta summarizes one stored conversation for listings.
type SessionMeta struct {
	ID        string
	StartedAt time.Time
	TurnCount int
	Preview   string // first question, truncated by the renderer
}

// StoredTurn is one settled question/answer pair read back from the store.
type StoredTurn struct {
	ID        string
	Question  string
	Answer    string
	Error     string
	Status    turn.Status
	CreatedAt time.Time
}

// Store persists transcripts in a single SQLite database.
//
// Thread-safety. database/sql serializes access; Store adds no locking of
// its own and is safe for concurrent use.
type Store struct {
	db   *sql.DB
	path string
}

// =============================================================================
// LIFECYCLE
// =============================================================================

// DefaultPath returns the standard transcript database location,
// ~/.askton/history.db.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, ".askton", "history.db"), nil
}

// Open opens (creating if needed) the transcript database at path and
// applies the schema. An empty path selects DefaultPath.
func Open(path string) (*Store, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}

	// WAL keeps readers unblocked while a stream goroutine records turns.
	if _, err := db.Exec("PRAGMA journal_mode=WAL; PRAGMA foreign_keys=ON;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	if _, err := db.Exec(initMetadata); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to seed metadata: %w", err)
	}

	return &Store{db: db, path: path}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// =============================================================================
// WRITES
// =============================================================================

// RecordTurn persists one settled turn under the given session, creating
// the session row on first use. Non-terminal snapshots are ignored:
// transcripts only hold finished turns.
func (s *Store) RecordTurn(sessionID string, snap turn.Snapshot) error {
	if !snap.Status.Terminal() {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		`INSERT OR IGNORE INTO sessions (id, started_at) VALUES (?, ?)`,
		sessionID, snap.CreatedAt.Unix(),
	); err != nil {
		return fmt.Errorf("failed to record session: %w", err)
	}

	if _, err := tx.Exec(
		`INSERT OR REPLACE INTO turns (id, session_id, question, answer, error, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		snap.ID, sessionID, snap.Question, snap.DisplayText, snap.ErrorMessage,
		snap.Status.String(), snap.CreatedAt.Unix(),
	); err != nil {
		return fmt.Errorf("failed to record turn: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	return nil
}

// DeleteSession removes a session and its turns.
func (s *Store) DeleteSession(sessionID string) error {
	res, err := s.db.Exec(`DELETE FROM sessions WHERE id = ?`, sessionID)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// =============================================================================
// READS
// =============================================================================

// Sessions lists stored conversations, newest first.
func (s *Store) Sessions() ([]SessionMeta, error) {
	rows, err := s.db.Query(`
		SELECT s.id, s.started_at,
		       (SELECT COUNT(*) FROM turns WHERE session_id = s.id),
		       COALESCE((SELECT question FROM turns WHERE session_id = s.id ORDER BY seq LIMIT 1), '')
		FROM sessions s
		ORDER BY s.started_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	var sessions []SessionMeta
	for rows.Next() {
		var meta SessionMeta
		var startedAt int64
		if err := rows.Scan(&meta.ID, &startedAt, &meta.TurnCount, &meta.Preview); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
		}
		meta.StartedAt = time.Unix(startedAt, 0)
		sessions = append(sessions, meta)
	}
	return sessions, rows.Err()
}

// Transcript returns a session's turns in conversation order.
func (s *Store) Transcript(sessionID string) ([]StoredTurn, error) {
	var exists int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM sessions WHERE id = ?`, sessionID).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	if exists == 0 {
		return nil, ErrNotFound
	}

	rows, err := s.db.Query(`
		SELECT id, question, answer, error, status, created_at
		FROM turns WHERE session_id = ? ORDER BY seq`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	var turns []StoredTurn
	for rows.Next() {
		var st StoredTurn
		var status string
		var createdAt int64
		if err := rows.Scan(&st.ID, &st.Question, &st.Answer, &st.Error, &status, &createdAt); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
		}
		st.Status = turn.ParseStatus(status)
		st.CreatedAt = time.Unix(createdAt, 0)
		turns = append(turns, st)
	}
	return turns, rows.Err()
}

// Search returns sessions whose questions or answers match the query,
// newest first.
func (s *Store) Search(query string) ([]SessionMeta, error) {
	rows, err := s.db.Query(`
		SELECT DISTINCT s.id, s.started_at,
		       (SELECT COUNT(*) FROM turns WHERE session_id = s.id),
		       (SELECT question FROM turns WHERE session_id = s.id ORDER BY seq LIMIT 1)
		FROM sessions s
		JOIN turns t ON t.session_id = s.id
		WHERE t.question LIKE '%' || ? || '%' OR t.answer LIKE '%' || ? || '%'
		ORDER BY s.started_at DESC`, query, query)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	var sessions []SessionMeta
	for rows.Next() {
		var meta SessionMeta
		var startedAt int64
		if err := rows.Scan(&meta.ID, &startedAt, &meta.TurnCount, &meta.Preview); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
		}
		meta.StartedAt = time.Unix(startedAt, 0)
		sessions = append(sessions, meta)
	}
	return sessions, rows.Err()
}
