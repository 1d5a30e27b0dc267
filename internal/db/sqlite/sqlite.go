// Package sqlite provides a single-file SQLite store for local development and tests.
// It implements the same operations as the PostgreSQL store in internal/db.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite" // driver: sqlite
)

// DB wraps a SQLite database handle
type DB struct {
	sql *sql.DB
}

// Open opens (creating if needed) the database at path and ensures the schema exists.
// path may be a file path or a full "file:" DSN.
func Open(ctx context.Context, path string) (*DB, error) {
	if path == "" {
		path = "interview_coach.db"
	}

	dsn := path
	if !strings.HasPrefix(dsn, "file:") {
		dsn = "file:" + dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	dsn += sep + "_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)"

	handle, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// SQLite allows one writer; a single connection serializes writes in-process.
	handle.SetMaxOpenConns(1)

	if err := handle.PingContext(ctx); err != nil {
		_ = handle.Close()
		return nil, fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	db := &DB{sql: handle}
	if err := db.Migrate(ctx); err != nil {
		_ = handle.Close()
		return nil, err
	}
	return db, nil
}

// Close closes the database
func (s *DB) Close() {
	if s.sql != nil {
		_ = s.sql.Close()
	}
}

// Ping checks that the database file is still usable.
func (s *DB) Ping(ctx context.Context) error {
	return s.sql.PingContext(ctx)
}

// Migrate creates any missing tables and indexes.
func (s *DB) Migrate(ctx context.Context) error {
	if _, err := s.sql.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply sqlite schema: %w", err)
	}
	return nil
}

// Timestamps are stored as Unix nanoseconds so ordering is exact.
func toUnix(t time.Time) int64 {
	return t.UTC().UnixNano()
}

func fromUnix(n int64) time.Time {
	return time.Unix(0, n).UTC()
}

const schema = `
CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  email TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  resume_text TEXT NOT NULL DEFAULT '',
  created_at INTEGER NOT NULL,
  updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS interview_sessions (
  id TEXT PRIMARY KEY,
  owner_id TEXT NOT NULL,
  role TEXT NOT NULL,
  difficulty TEXT NOT NULL,
  created_at INTEGER NOT NULL,
  updated_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_interview_sessions_owner_created
  ON interview_sessions (owner_id, created_at DESC);

CREATE TABLE IF NOT EXISTS interview_questions (
  session_id TEXT NOT NULL REFERENCES interview_sessions(id) ON DELETE CASCADE,
  position INTEGER NOT NULL,
  question_id TEXT NOT NULL,
  text TEXT NOT NULL,
  difficulty TEXT NOT NULL,
  PRIMARY KEY (session_id, question_id),
  UNIQUE (session_id, position)
);

CREATE TABLE IF NOT EXISTS interview_answers (
  session_id TEXT NOT NULL,
  question_id TEXT NOT NULL,
  answer_text TEXT NOT NULL,
  score REAL NOT NULL CHECK (score >= 0 AND score <= 10),
  feedback TEXT NOT NULL,
  created_at INTEGER NOT NULL,
  updated_at INTEGER NOT NULL,
  PRIMARY KEY (session_id, question_id),
  FOREIGN KEY (session_id, question_id)
    REFERENCES interview_questions (session_id, question_id) ON DELETE CASCADE
);
`
