// Package history records completed transformation attempts.
//
// Every staged-commit cycle — whether it lands or is rolled back — leaves
// one row in a SQLite database under the user's home directory. This is
// read-only reporting for the operator ("what happened to the v2.1.0
// upgrade last week?"); it is never consulted for recovery. The staging
// tree's own metadata file remains the single source of truth for
// in-flight state.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// openDB is a package-level var to allow test injection.
var openDB = sql.Open

// Outcome is how a transformation attempt ended.
type Outcome string

const (
	OutcomeCommitted  Outcome = "committed"
	OutcomeRolledBack Outcome = "rolled-back"
)

// Attempt is one recorded transformation attempt.
type Attempt struct {
	ID             string  `json:"id"`
	TargetVersion  string  `json:"target_version"`
	Outcome        Outcome `json:"outcome"`
	FilesCommitted int     `json:"files_committed"`
	Reason         string  `json:"reason,omitempty"`
	DurationMS     int64   `json:"duration_ms"`
	RecordedAt     string  `json:"recorded_at"`
}

// Config holds store configuration.
type Config struct {
	DataDir string
}

// DefaultConfig places the database under ~/.specwright.
func DefaultConfig() Config {
	home, _ := os.UserHomeDir()
	return Config{DataDir: filepath.Join(home, ".specwright")}
}

// Store is the SQLite-backed attempt log.
type Store struct {
	db *sql.DB
}

// New opens (and if needed creates) the history database.
func New(cfg Config) (*Store, error) {
	if err := os.MkdirAll(cfg.DataDir, 0o700); err != nil {
		return nil, fmt.Errorf("history: create data dir: %w", err)
	}

	db, err := openDB("sqlite", filepath.Join(cfg.DataDir, "history.db"))
	if err != nil {
		return nil, fmt.Errorf("history: open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return nil, fmt.Errorf("history: pragma %q: %w", p, err)
		}
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("history: migration: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS attempts (
			id TEXT PRIMARY KEY,
			target_version TEXT NOT NULL,
			outcome TEXT NOT NULL,
			files_committed INTEGER NOT NULL DEFAULT 0,
			reason TEXT NOT NULL DEFAULT '',
			duration_ms INTEGER NOT NULL DEFAULT 0,
			recorded_at TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_attempts_version ON attempts(target_version);
	`)
	return err
}

// Record inserts one finished attempt and returns its generated ID.
func (s *Store) Record(targetVersion string, outcome Outcome, filesCommitted int, reason string, duration time.Duration) (string, error) {
	id := uuid.NewString()
	_, err := s.db.Exec(
		`INSERT INTO attempts (id, target_version, outcome, files_committed, reason, duration_ms, recorded_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, targetVersion, string(outcome), filesCommitted, reason,
		duration.Milliseconds(), time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return "", fmt.Errorf("history: record attempt: %w", err)
	}
	return id, nil
}

// List returns the most recent attempts, newest first.
func (s *Store) List(limit int) ([]Attempt, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(
		`SELECT id, target_version, outcome, files_committed, reason, duration_ms, recorded_at
		 FROM attempts ORDER BY recorded_at DESC, id LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("history: list attempts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var result []Attempt
	for rows.Next() {
		var a Attempt
		var outcome string
		if err := rows.Scan(&a.ID, &a.TargetVersion, &outcome, &a.FilesCommitted, &a.Reason, &a.DurationMS, &a.RecordedAt); err != nil {
			return nil, fmt.Errorf("history: scan attempt: %w", err)
		}
		a.Outcome = Outcome(outcome)
		result = append(result, a)
	}
	return result, rows.Err()
}
