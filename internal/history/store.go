// Package history keeps a SQLite record of harness runs.
package history

import (
	"context"
	"database/sql"
	"errors"
	_ "embed"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/emberjson/runtests/internal/aggregate"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 1 - Initial schema
const currentSchemaVersion = 1

// Store provides durable storage for run history.
type Store struct {
	db *sql.DB
}

// Run is one recorded harness invocation.
type Run struct {
	ID        string
	StartedAt time.Time
	Duration  time.Duration
	Toolchain string
	Root      string
	Runs      int
	Passed    int
	Failed    int
	Total     int
	ExitCode  int
}

// Open creates or opens a history database at path.
// Applies required pragmas and the schema; safe to call on an existing file.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to history database: %w", err)
	}

	// SQLite supports one writer at a time.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}

func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}
	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}
	return nil
}

// RecordRun writes one invocation and its per-artifact rows in a single transaction.
func (s *Store) RecordRun(ctx context.Context, run Run, r *aggregate.Report) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs
		(id, started_at, duration_ms, toolchain, root, runs, passed, failed, total_tests, exit_code)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		run.ID,
		run.StartedAt.UnixMilli(),
		run.Duration.Milliseconds(),
		run.Toolchain,
		run.Root,
		run.Runs,
		run.Passed,
		run.Failed,
		run.Total,
		run.ExitCode,
	)
	if err != nil {
		return fmt.Errorf("record run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO artifacts
		(run_id, seq, path, verdict, count, exit_code, duration_ms, reason)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	defer stmt.Close()

	for i, e := range r.Results {
		if _, err := stmt.ExecContext(ctx,
			run.ID, i, e.Path, e.Verdict.String(), e.Count, e.ExitCode, e.Duration.Milliseconds(), e.Reason,
		); err != nil {
			return fmt.Errorf("record artifact %s: %w", e.Path, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	return nil
}

// RunFromReport fills in the summary columns of a run from its report.
func RunFromReport(id string, startedAt time.Time, toolchain, root string, r *aggregate.Report) Run {
	return Run{
		ID:        id,
		StartedAt: startedAt,
		Duration:  r.Duration,
		Toolchain: toolchain,
		Root:      root,
		Runs:      r.Runs,
		Passed:    r.Passed,
		Failed:    len(r.Failed),
		Total:     r.Total,
		ExitCode:  r.ExitCode(),
	}
}

// Recent returns up to limit runs, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, started_at, duration_ms, toolchain, root, runs, passed, failed, total_tests, exit_code
		FROM runs
		ORDER BY started_at DESC, rowid DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			run        Run
			startedMS  int64
			durationMS int64
		)
		if err := rows.Scan(
			&run.ID, &startedMS, &durationMS, &run.Toolchain, &run.Root,
			&run.Runs, &run.Passed, &run.Failed, &run.Total, &run.ExitCode,
		); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		run.StartedAt = time.UnixMilli(startedMS)
		run.Duration = time.Duration(durationMS) * time.Millisecond
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// FailedArtifacts returns the failed artifact paths of a run in discovery order.
func (s *Store) FailedArtifacts(ctx context.Context, runID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT path FROM artifacts
		WHERE run_id = ? AND verdict = 'fail'
		ORDER BY seq
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query failed artifacts: %w", err)
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("scan artifact: %w", err)
		}
		paths = append(paths, p)
	}
	return paths, rows.Err()
}

// ErrRunNotFound is returned when no run matches an identifier.
var ErrRunNotFound = errors.New("run not found")

// ResolveRunID expands a run identifier prefix, such as the short ID shown
// by RenderTable, to the full identifier. An ambiguous prefix is an error.
func (s *Store) ResolveRunID(ctx context.Context, prefix string) (string, error) {
	if prefix == "" {
		return "", ErrRunNotFound
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id FROM runs
		WHERE substr(id, 1, ?) = ?
		LIMIT 2
	`, len(prefix), prefix)
	if err != nil {
		return "", fmt.Errorf("query run id: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return "", fmt.Errorf("scan run id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("iterate run ids: %w", err)
	}

	switch len(ids) {
	case 0:
		return "", fmt.Errorf("%w: %s", ErrRunNotFound, prefix)
	case 1:
		return ids[0], nil
	default:
		return "", fmt.Errorf("run id prefix %q is ambiguous", prefix)
	}
}
