// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package history keeps a local SQLite ledger of finished conversions.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/docconv/pkg/types"
)

const (
	dbFile       = "history.db"
	defaultLimit = 50

	// Fixed width so timestamps sort lexically.
	timeLayout = "2006-01-02T15:04:05.000000000Z"
)

// DefaultPath returns <user config dir>/docconv/history.db.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "docconv", dbFile)
}

// Record is one row of the ledger.
type Record struct {
	JobID       string     `json:"job_id" yaml:"job_id"`
	Kind        types.Kind `json:"kind" yaml:"kind"`
	Source      string     `json:"source" yaml:"source"`
	Destination string     `json:"destination" yaml:"destination"`
	Output      string     `json:"output,omitempty" yaml:"output,omitempty"`
	Success     bool       `json:"success" yaml:"success"`
	Reason      string     `json:"reason,omitempty" yaml:"reason,omitempty"`
	Skipped     int        `json:"skipped" yaml:"skipped"`
	StartedAt   time.Time  `json:"started_at" yaml:"started_at"`
	FinishedAt  time.Time  `json:"finished_at" yaml:"finished_at"`
}

// Filter narrows List results.
type Filter struct {
	// Kind limits results to one conversion kind.
	Kind types.Kind

	// FailedOnly drops successful conversions.
	FailedOnly bool

	// Limit caps the result count. Zero uses the default (50).
	Limit int
}

// Store manages the history database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at path and ensures the schema.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating history directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS conversions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			job_id TEXT NOT NULL UNIQUE,
			kind TEXT NOT NULL,
			source TEXT NOT NULL,
			destination TEXT NOT NULL,
			output TEXT,
			success INTEGER NOT NULL,
			reason TEXT,
			skipped INTEGER NOT NULL DEFAULT 0,
			started_at TEXT NOT NULL,
			finished_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_conversions_kind ON conversions(kind)`,
		`CREATE INDEX IF NOT EXISTS idx_conversions_finished ON conversions(finished_at)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Record stores the outcome of job. Recording the same job ID twice
// replaces the earlier row.
func (s *Store) Record(ctx context.Context, job types.ConversionJob, o types.Outcome) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO conversions (job_id, kind, source, destination, output, success, reason, skipped, started_at, finished_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(job_id) DO UPDATE SET
			kind=excluded.kind, source=excluded.source, destination=excluded.destination,
			output=excluded.output, success=excluded.success, reason=excluded.reason,
			skipped=excluded.skipped, started_at=excluded.started_at, finished_at=excluded.finished_at`,
		job.ID, string(job.Kind), job.SourcePath, job.DestinationPath, o.Path,
		o.Success, o.Reason, o.Skipped,
		o.StartedAt.UTC().Format(timeLayout), o.FinishedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("recording job %s: %w", job.ID, err)
	}
	return nil
}

// List returns matching records, newest first.
func (s *Store) List(ctx context.Context, f Filter) ([]Record, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = defaultLimit
	}

	var (
		qb   strings.Builder
		args []any
	)
	qb.WriteString(`SELECT job_id, kind, source, destination, output, success, reason, skipped, started_at, finished_at
		FROM conversions WHERE 1=1`)
	if f.Kind != "" {
		qb.WriteString(` AND kind = ?`)
		args = append(args, string(f.Kind))
	}
	if f.FailedOnly {
		qb.WriteString(` AND success = 0`)
	}
	qb.WriteString(` ORDER BY finished_at DESC, id DESC LIMIT ?`)
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var (
			r                 Record
			kind              string
			output, reason    sql.NullString
			started, finished string
		)
		if err := rows.Scan(&r.JobID, &kind, &r.Source, &r.Destination, &output,
			&r.Success, &reason, &r.Skipped, &started, &finished); err != nil {
			return nil, fmt.Errorf("scanning history row: %w", err)
		}
		r.Kind = types.Kind(kind)
		r.Output = output.String
		r.Reason = reason.String
		r.StartedAt, _ = time.Parse(timeLayout, started)
		r.FinishedAt, _ = time.Parse(timeLayout, finished)
		out = append(out, r)
	}
	return out, rows.Err()
}
