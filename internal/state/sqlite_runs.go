package state

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/rahulmdinesh/stock-market-data-pipeline/pkg/core"
)

const runColumns = `id, environment, destination, status, start_date, row_limit, watermark,
	rows_written, truncated, started_at, completed_at, error`

// CreateRun records a new run in the running state. ID, Status and
// StartedAt are filled in when empty.
func (s *SQLiteStore) CreateRun(run *core.Run) error {
	if s.db == nil {
		return errNotOpened
	}

	if run.ID == "" {
		run.ID = generateID()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now().UTC()
	}
	run.Status = core.RunStatusRunning

	s.logger.Debug("creating run", slog.String("id", run.ID), slog.String("environment", run.Environment))

	_, err := s.db.Exec(
		`INSERT INTO runs (id, environment, destination, status, start_date, row_limit, started_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Environment, run.Destination, string(run.Status), run.StartDate, run.RowLimit, run.StartedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create run: %w", err)
	}
	return nil
}

// CompleteRun records the outcome of a run.
func (s *SQLiteStore) CompleteRun(id string, outcome core.RunOutcome) error {
	if s.db == nil {
		return errNotOpened
	}

	var errMsg *string
	if outcome.Error != "" {
		errMsg = &outcome.Error
	}

	res, err := s.db.Exec(
		`UPDATE runs
		 SET status = ?, watermark = ?, rows_written = ?, truncated = ?, completed_at = ?, error = ?
		 WHERE id = ?`,
		string(outcome.Status), outcome.Watermark, outcome.RowsWritten, outcome.Truncated,
		time.Now().UTC(), errMsg, id,
	)
	if err != nil {
		return fmt.Errorf("failed to complete run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return nil
}

// GetRun retrieves a run by ID.
func (s *SQLiteStore) GetRun(id string) (*core.Run, error) {
	if s.db == nil {
		return nil, errNotOpened
	}

	run, err := scanRun(s.db.QueryRow(`SELECT `+runColumns+` FROM runs WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return run, nil
}

// GetLatestRun retrieves the most recent run for an environment.
func (s *SQLiteStore) GetLatestRun(env string) (*core.Run, error) {
	if s.db == nil {
		return nil, errNotOpened
	}

	run, err := scanRun(s.db.QueryRow(
		`SELECT `+runColumns+` FROM runs WHERE environment = ? ORDER BY started_at DESC, rowid DESC LIMIT 1`, env))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w for environment %s", ErrRunNotFound, env)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest run: %w", err)
	}
	return run, nil
}

// ListRuns returns the most recent runs, newest first. A non-positive limit returns all runs.
func (s *SQLiteStore) ListRuns(limit int) ([]*core.Run, error) {
	if s.db == nil {
		return nil, errNotOpened
	}
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.Query(`SELECT `+runColumns+` FROM runs ORDER BY started_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []*core.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (*core.Run, error) {
	var (
		run         core.Run
		status      string
		watermark   sql.NullTime
		completedAt sql.NullTime
		errMsg      sql.NullString
	)
	err := sc.Scan(&run.ID, &run.Environment, &run.Destination, &status, &run.StartDate, &run.RowLimit,
		&watermark, &run.RowsWritten, &run.Truncated, &run.StartedAt, &completedAt, &errMsg)
	if err != nil {
		return nil, err
	}

	run.Status = core.RunStatus(status)
	if watermark.Valid {
		t := watermark.Time.UTC()
		run.Watermark = &t
	}
	if completedAt.Valid {
		t := completedAt.Time.UTC()
		run.CompletedAt = &t
	}
	run.StartDate = run.StartDate.UTC()
	run.StartedAt = run.StartedAt.UTC()
	run.Error = errMsg.String
	return &run, nil
}
