package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_run_store.go -package=mocks notionsync/internal/storage RunStore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when a record is not found.
	ErrNotFound = errors.New("record not found")
)

// timeLayout sorts lexicographically as long as times are UTC.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// RunStore defines the interface for run ledger operations.
type RunStore interface {
	// Start records a new running run. An empty ID is filled with a UUID.
	Start(ctx context.Context, run *RunRecord) error
	// Finish sets the final status of a run.
	// Returns ErrNotFound if the run does not exist.
	Finish(ctx context.Context, id string, status string, stats json.RawMessage, runErr string, finishedAt time.Time) error
	// ListRecent returns the latest runs, newest first. An empty job lists
	// every job.
	ListRecent(ctx context.Context, job string, limit int) ([]RunRecord, error)
	// Latest returns the newest run of job.
	// Returns nil and ErrNotFound if the job never ran.
	Latest(ctx context.Context, job string) (*RunRecord, error)
	// MarkAbandoned flags every run still marked running.
	MarkAbandoned(ctx context.Context, at time.Time) (int64, error)
}

// RunRepo provides methods for run ledger operations.
// It implements the RunStore interface.
type RunRepo struct {
	db *sql.DB
}

// NewRunRepo creates a new RunRepo.
func NewRunRepo(db *sql.DB) *RunRepo {
	return &RunRepo{db: db}
}

// Start records a new running run.
func (r *RunRepo) Start(ctx context.Context, run *RunRecord) error {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}
	run.Status = StatusRunning

	_, err := r.db.ExecContext(ctx,
		"INSERT INTO sync_runs (id, job, started_at, status) VALUES (?, ?, ?, ?)",
		run.ID, run.Job, formatTime(run.StartedAt), run.Status,
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}
	return nil
}

// Finish sets the final status of a run.
func (r *RunRepo) Finish(ctx context.Context, id string, status string, stats json.RawMessage, runErr string, finishedAt time.Time) error {
	var statsArg any
	if len(stats) > 0 {
		statsArg = string(stats)
	}
	var errArg any
	if runErr != "" {
		errArg = runErr
	}

	res, err := r.db.ExecContext(ctx,
		"UPDATE sync_runs SET status = ?, stats = ?, error = ?, finished_at = ? WHERE id = ?",
		status, statsArg, errArg, formatTime(finishedAt), id,
	)
	if err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListRecent returns the latest runs, newest first.
func (r *RunRepo) ListRecent(ctx context.Context, job string, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	query := "SELECT id, job, started_at, finished_at, status, stats, error FROM sync_runs"
	args := []any{}
	if job != "" {
		query += " WHERE job = ?"
		args = append(args, job)
	}
	query += " ORDER BY started_at DESC LIMIT ?"
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var runs []RunRecord
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate runs: %w", err)
	}
	return runs, nil
}

// Latest returns the newest run of job.
func (r *RunRepo) Latest(ctx context.Context, job string) (*RunRecord, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT id, job, started_at, finished_at, status, stats, error FROM sync_runs WHERE job = ? ORDER BY started_at DESC LIMIT 1",
		job,
	)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return run, err
}

// MarkAbandoned flags every run still marked running. A process that died
// mid-run leaves such rows behind.
func (r *RunRepo) MarkAbandoned(ctx context.Context, at time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		"UPDATE sync_runs SET status = ?, finished_at = ? WHERE status = ?",
		StatusAbandoned, formatTime(at), StatusRunning,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to mark abandoned runs: %w", err)
	}
	return res.RowsAffected()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (*RunRecord, error) {
	var run RunRecord
	var startedAt string
	var finishedAt, stats, runErr sql.NullString

	if err := s.Scan(&run.ID, &run.Job, &startedAt, &finishedAt, &run.Status, &stats, &runErr); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan run: %w", err)
	}

	var err error
	run.StartedAt, err = time.Parse(timeLayout, startedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse started_at timestamp: %w", err)
	}
	if finishedAt.Valid {
		t, err := time.Parse(timeLayout, finishedAt.String)
		if err != nil {
			return nil, fmt.Errorf("failed to parse finished_at timestamp: %w", err)
		}
		run.FinishedAt = &t
	}
	if stats.Valid {
		run.Stats = json.RawMessage(stats.String)
	}
	run.Error = runErr.String

	return &run, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}
