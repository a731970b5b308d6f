// Package history persists harness runs to a SQLite database so past
// diagnostics reports can be listed, re-rendered, and aggregated without
// re-running scenarios.
package history

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// RunRecord is one persisted harness run.
type RunRecord struct {
	ID                  string
	ScenarioFile        string
	ScenarioName        string
	StartedAt           time.Time
	FinishedAt          time.Time
	TraceEntries        int
	TraceErrors         int
	OperatorsPassed     int
	OperatorsFailed     int
	ScopesEvaluated     int
	ActionsDiscovered   int
	ExpectationFailures int
	// Report is the rendered plain-text diagnostics summary
	Report string
}

// Passed reports whether the run completed without failures.
func (r *RunRecord) Passed() bool {
	return r.TraceErrors == 0 && r.OperatorsFailed == 0 && r.ExpectationFailures == 0
}

// ScenarioStats aggregates run outcomes per scenario file.
type ScenarioStats struct {
	ScenarioFile string
	Runs         int
	Passed       int
	Failed       int
	LastRun      time.Time
}

// Store manages the SQLite run history database.
type Store struct {
	db     *sql.DB
	dbPath string
}

// NewStore opens (creating if needed) the history database at dbPath.
// ":memory:" opens an in-memory database for tests.
func NewStore(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, fmt.Errorf("create history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}

	// busy_timeout must be set first so later statements wait on locks
	// instead of failing immediately under concurrent harness runs.
	pragmas := []string{
		"PRAGMA busy_timeout=5000",
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
	}
	for _, pragma := range pragmas {
		if err := execWithRetry(db, pragma, 5, 10*time.Millisecond); err != nil {
			db.Close()
			return nil, fmt.Errorf("set %s: %w", pragma, err)
		}
	}

	if err := execWithRetry(db, schemaSQL, 5, 10*time.Millisecond); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &Store{db: db, dbPath: dbPath}, nil
}

// execWithRetry executes a statement with exponential backoff on
// "database is locked" errors.
func execWithRetry(db *sql.DB, stmt string, maxRetries int, baseDelay time.Duration) error {
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		_, err := db.Exec(stmt)
		if err == nil {
			return nil
		}
		if !strings.Contains(err.Error(), "database is locked") {
			return err
		}
		lastErr = err
		time.Sleep(baseDelay * time.Duration(1<<attempt))
	}
	return lastErr
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// RecordRun inserts one run record.
func (s *Store) RecordRun(ctx context.Context, rec *RunRecord) error {
	if rec.ID == "" {
		return fmt.Errorf("run record id cannot be empty")
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (
			id, scenario_file, scenario_name, started_at, finished_at,
			trace_entries, trace_errors, operators_passed, operators_failed,
			scopes_evaluated, actions_discovered, expectation_failures, report
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.ScenarioFile, rec.ScenarioName, rec.StartedAt, rec.FinishedAt,
		rec.TraceEntries, rec.TraceErrors, rec.OperatorsPassed, rec.OperatorsFailed,
		rec.ScopesEvaluated, rec.ActionsDiscovered, rec.ExpectationFailures, rec.Report,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// GetRun returns the run with the given id, or an error when it does not
// exist.
func (s *Store) GetRun(ctx context.Context, id string) (*RunRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, scenario_file, scenario_name, started_at, finished_at,
			trace_entries, trace_errors, operators_passed, operators_failed,
			scopes_evaluated, actions_discovered, expectation_failures, report
		FROM runs WHERE id = ?`, id)

	rec, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run %q not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("query run: %w", err)
	}
	return rec, nil
}

// RecentRuns returns up to limit runs, newest first.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, scenario_file, scenario_name, started_at, finished_at,
			trace_entries, trace_errors, operators_passed, operators_failed,
			scopes_evaluated, actions_discovered, expectation_failures, report
		FROM runs ORDER BY started_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent runs: %w", err)
	}
	defer rows.Close()

	var out []RunRecord
	for rows.Next() {
		rec, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

// Stats aggregates run outcomes grouped by scenario file.
func (s *Store) Stats(ctx context.Context) ([]ScenarioStats, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT scenario_file,
			COUNT(*),
			SUM(CASE WHEN trace_errors = 0 AND operators_failed = 0 AND expectation_failures = 0 THEN 1 ELSE 0 END),
			MAX(started_at)
		FROM runs
		GROUP BY scenario_file
		ORDER BY scenario_file`)
	if err != nil {
		return nil, fmt.Errorf("query stats: %w", err)
	}
	defer rows.Close()

	var out []ScenarioStats
	for rows.Next() {
		var st ScenarioStats
		var lastRun string
		// MAX() strips the column's TIMESTAMP type, so the driver hands
		// the aggregate back as a string.
		if err := rows.Scan(&st.ScenarioFile, &st.Runs, &st.Passed, &lastRun); err != nil {
			return nil, fmt.Errorf("scan stats: %w", err)
		}
		st.LastRun, err = parseTimestamp(lastRun)
		if err != nil {
			return nil, fmt.Errorf("parse last run time: %w", err)
		}
		st.Failed = st.Runs - st.Passed
		out = append(out, st)
	}
	return out, rows.Err()
}

// timestampLayouts are the formats the sqlite driver stores time.Time in.
var timestampLayouts = []string{
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02T15:04:05.999999999-07:00",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339Nano,
}

// parseTimestamp decodes a timestamp that came back untyped.
func parseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

// Clear deletes runs older than the retention window. retentionDays <= 0
// deletes everything. Returns the number of deleted runs.
func (s *Store) Clear(ctx context.Context, retentionDays int) (int64, error) {
	var res sql.Result
	var err error
	if retentionDays <= 0 {
		res, err = s.db.ExecContext(ctx, `DELETE FROM runs`)
	} else {
		cutoff := time.Now().AddDate(0, 0, -retentionDays)
		res, err = s.db.ExecContext(ctx, `DELETE FROM runs WHERE started_at < ?`, cutoff)
	}
	if err != nil {
		return 0, fmt.Errorf("clear runs: %w", err)
	}
	return res.RowsAffected()
}

// scanner covers *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

// scanRun reads one run row.
func scanRun(row scanner) (*RunRecord, error) {
	var rec RunRecord
	err := row.Scan(
		&rec.ID, &rec.ScenarioFile, &rec.ScenarioName, &rec.StartedAt, &rec.FinishedAt,
		&rec.TraceEntries, &rec.TraceErrors, &rec.OperatorsPassed, &rec.OperatorsFailed,
		&rec.ScopesEvaluated, &rec.ActionsDiscovered, &rec.ExpectationFailures, &rec.Report,
	)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}
