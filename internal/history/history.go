// internal/history/history.go
//
// SQLite log of solver sessions.
// Responsibilities:
//   - Opening SQLite with safe defaults (WAL, busy timeout, foreign keys).
//   - Applying the embedded migrations in sql/*.sql (idempotent, recorded in _migrations).
//   - Recording sessions and their observations so the server can replay a
//     session after a restart.

package history

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"
)

//go:embed sql/*.sql
var migrations embed.FS

// ErrNotFound is returned when a session has no row.
var ErrNotFound = errors.New("session not found")

// Status values stored in sessions.status.
const (
	StatusPlaying = "playing"
	StatusSolved  = "solved"
	StatusFailed  = "failed"
)

// Session is a row of the sessions table.
type Session struct {
	ID          string
	Fingerprint string // vocabulary fingerprint the observations refer to
	VocabSize   int
	StartedAt   time.Time
	FinishedAt  time.Time // zero while playing
	Status      string
}

// Observation is a row of the observations table.
type Observation struct {
	Row       int
	Guess     string
	Pattern   string
	Remaining int
	CreatedAt time.Time
}

// Store wraps the database handle.
type Store struct {
	db *sql.DB
}

/**
 * Open opens (and creates if missing) the SQLite file at dsn and migrates it.
 *
 * - Ensures the parent directory exists for relative paths (e.g. ./data/history.db).
 * - Configures busy timeout and WAL journaling; enforces foreign keys.
 */
func Open(dsn string) (*Store, error) {
	dir := filepath.Dir(dsn)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite3", dsn+"?_busy_timeout=5000&_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, err
	}
	// One writer; avoids SQLITE_BUSY between pooled connections.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`PRAGMA foreign_keys = ON;`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set pragmas: %w", err)
	}
	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close releases the database.
func (s *Store) Close() error { return s.db.Close() }

/**
 * migrate applies the embedded sql/*.sql files in lexical order.
 * Each file runs in its own transaction and is recorded in _migrations.
 */
func migrate(db *sql.DB) error {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS _migrations (name TEXT PRIMARY KEY);`); err != nil {
		return fmt.Errorf("create _migrations: %w", err)
	}

	files, err := fs.Glob(migrations, "sql/*.sql")
	if err != nil {
		return fmt.Errorf("list migrations: %w", err)
	}
	sort.Strings(files)

	for _, f := range files {
		var done int
		err := db.QueryRow(`SELECT 1 FROM _migrations WHERE name=?`, f).Scan(&done)
		if err == nil {
			log.Debug().Str("migration", f).Msg("already applied")
			continue
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("query _migrations: %w", err)
		}

		body, err := migrations.ReadFile(f)
		if err != nil {
			return fmt.Errorf("read %s: %w", f, err)
		}

		tx, err := db.Begin()
		if err != nil {
			return err
		}
		if _, err := tx.Exec(string(body)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("apply %s: %w", f, err)
		}
		if _, err := tx.Exec(`INSERT INTO _migrations(name) VALUES (?)`, f); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record %s: %w", f, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit %s: %w", f, err)
		}
		log.Info().Str("migration", f).Msg("applied")
	}
	return nil
}

/* ----------------------------- sessions --------------------------------- */

// StartSession inserts a new session row.
func (s *Store) StartSession(ctx context.Context, id, fingerprint string, vocabSize int) error {
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO sessions (id, vocab_fingerprint, vocab_size, started_at, status)
        VALUES (?, ?, ?, ?, ?)`,
		id, fingerprint, vocabSize, now(), StatusPlaying,
	)
	if err != nil {
		return fmt.Errorf("start session %s: %w", id, err)
	}
	return nil
}

// ResetSession drops a session's observations and marks it playing again,
// optionally against a new vocabulary.
func (s *Store) ResetSession(ctx context.Context, id, fingerprint string, vocabSize int) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM observations WHERE session_id=?`, id); err != nil {
		return fmt.Errorf("reset session %s: %w", id, err)
	}
	res, err := tx.ExecContext(ctx, `
        UPDATE sessions
        SET vocab_fingerprint=?, vocab_size=?, started_at=?, finished_at=NULL, status=?
        WHERE id=?`,
		fingerprint, vocabSize, now(), StatusPlaying, id,
	)
	if err != nil {
		return fmt.Errorf("reset session %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return tx.Commit()
}

// FinishSession stamps the session with a final status.
func (s *Store) FinishSession(ctx context.Context, id, status string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE sessions SET status=?, finished_at=? WHERE id=?`, status, now(), id)
	if err != nil {
		return fmt.Errorf("finish session %s: %w", id, err)
	}
	return nil
}

// Session loads one session row.
func (s *Store) Session(ctx context.Context, id string) (*Session, error) {
	var (
		out               Session
		started, finished sql.NullString
	)
	err := s.db.QueryRowContext(ctx, `
        SELECT id, vocab_fingerprint, vocab_size, started_at, finished_at, status
        FROM sessions WHERE id=?`, id,
	).Scan(&out.ID, &out.Fingerprint, &out.VocabSize, &started, &finished, &out.Status)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", id, err)
	}
	out.StartedAt = parseTime(started.String)
	if finished.Valid {
		out.FinishedAt = parseTime(finished.String)
	}
	return &out, nil
}

/* --------------------------- observations ------------------------------- */

// RecordObservation appends one row of feedback to a session.
func (s *Store) RecordObservation(ctx context.Context, id string, o Observation) error {
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO observations (session_id, row_no, guess, pattern, remaining, created_at)
        VALUES (?, ?, ?, ?, ?, ?)`,
		id, o.Row, o.Guess, o.Pattern, o.Remaining, now(),
	)
	if err != nil {
		return fmt.Errorf("record observation %s/%d: %w", id, o.Row, err)
	}
	return nil
}

// Observations returns a session's rows in entry order.
func (s *Store) Observations(ctx context.Context, id string) ([]Observation, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT row_no, guess, pattern, remaining, created_at
        FROM observations
        WHERE session_id=?
        ORDER BY row_no ASC`, id,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Observation
	for rows.Next() {
		var (
			o       Observation
			created string
		)
		if err := rows.Scan(&o.Row, &o.Guess, &o.Pattern, &o.Remaining, &created); err != nil {
			return nil, err
		}
		o.CreatedAt = parseTime(created)
		out = append(out, o)
	}
	return out, rows.Err()
}

func now() string { return time.Now().UTC().Format(time.RFC3339Nano) }

// parseTime parses stored timestamps; on error returns zero time.
func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t
}
