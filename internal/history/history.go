// Package history persists one row per batch run in a local SQLite database
// for the CLI history view. It is observability only: coordination between
// workers never reads or writes it.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"presswork/internal/convert"
	"presswork/internal/protect"
	"presswork/internal/reconcile"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS runs (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id TEXT NOT NULL,
    kind TEXT NOT NULL,
    status TEXT NOT NULL,
    started_at TEXT NOT NULL,
    finished_at TEXT NOT NULL,
    acquired INTEGER NOT NULL DEFAULT 0,
    successes INTEGER NOT NULL DEFAULT 0,
    failures INTEGER NOT NULL DEFAULT 0,
    skipped_existing INTEGER NOT NULL DEFAULT 0,
    moved_from_inflight INTEGER NOT NULL DEFAULT 0,
    moved_from_intake INTEGER NOT NULL DEFAULT 0,
    encrypted INTEGER NOT NULL DEFAULT 0,
    copied INTEGER NOT NULL DEFAULT 0,
    skipped INTEGER NOT NULL DEFAULT 0,
    failed INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);
`

// Run is one recorded batch run.
type Run struct {
	ID                int64
	RunID             string
	Kind              string
	Status            string
	StartedAt         time.Time
	FinishedAt        time.Time
	Acquired          int
	Successes         int
	Failures          int
	SkippedExisting   int
	MovedFromInFlight int
	MovedFromIntake   int
	Encrypted         int
	Copied            int
	Skipped           int
	Failed            int
}

// Store manages run history persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens (creating if necessary) the history database at path.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create history directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply %s: %w", pragma, err)
		}
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create history schema: %w", err)
	}
	return &Store{db: db, path: path}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// RecordConvert persists one orchestrator batch run.
func (s *Store) RecordConvert(ctx context.Context, runID string, summary convert.Summary, started, finished time.Time) error {
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO runs (run_id, kind, status, started_at, finished_at, acquired, successes, failures, skipped_existing)
        VALUES (?, 'convert', ?, ?, ?, ?, ?, ?, ?)`,
		runID, string(summary.Status), formatTime(started), formatTime(finished),
		summary.Acquired, summary.Successes, summary.Failures, summary.SkippedExisting)
	if err != nil {
		return fmt.Errorf("record convert run: %w", err)
	}
	return nil
}

// RecordReconcile persists one reconciliation sweep.
func (s *Store) RecordReconcile(ctx context.Context, runID string, result reconcile.Result, started, finished time.Time) error {
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO runs (run_id, kind, status, started_at, finished_at, moved_from_inflight, moved_from_intake)
        VALUES (?, 'reconcile', 'ok', ?, ?, ?, ?)`,
		runID, formatTime(started), formatTime(finished),
		result.MovedFromInFlight, result.MovedFromIntake)
	if err != nil {
		return fmt.Errorf("record reconcile run: %w", err)
	}
	return nil
}

// RecordProtect persists one protection pipeline run.
func (s *Store) RecordProtect(ctx context.Context, runID string, result protect.Result, started, finished time.Time) error {
	status := "ok"
	if result.Failed > 0 {
		status = "partial"
	}
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO runs (run_id, kind, status, started_at, finished_at, encrypted, copied, skipped, failed)
        VALUES (?, 'protect', ?, ?, ?, ?, ?, ?, ?)`,
		runID, status, formatTime(started), formatTime(finished),
		result.Encrypted, result.Copied, result.Skipped, result.Failed)
	if err != nil {
		return fmt.Errorf("record protect run: %w", err)
	}
	return nil
}

// Recent returns up to limit runs, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
        SELECT id, run_id, kind, status, started_at, finished_at,
               acquired, successes, failures, skipped_existing,
               moved_from_inflight, moved_from_intake,
               encrypted, copied, skipped, failed
        FROM runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var started, finished string
		if err := rows.Scan(&run.ID, &run.RunID, &run.Kind, &run.Status, &started, &finished,
			&run.Acquired, &run.Successes, &run.Failures, &run.SkippedExisting,
			&run.MovedFromInFlight, &run.MovedFromIntake,
			&run.Encrypted, &run.Copied, &run.Skipped, &run.Failed); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		run.StartedAt = parseTime(started)
		run.FinishedAt = parseTime(finished)
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func parseTime(value string) time.Time {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}
	}
	return t
}
