package service

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_service.go -package=mocks notionsync/internal/service Job,RunService

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"notionsync/internal/contextutil"
	"notionsync/internal/storage"
	"notionsync/internal/telemetry"
)

const maxHistory = 100

// RunService executes sync jobs and reports their history.
type RunService interface {
	// Jobs returns the registered job names.
	Jobs() []string
	// Run waits for any run in progress, then runs job.
	Run(ctx context.Context, job string) (*storage.RunRecord, error)
	// TryRun runs job unless another run is in progress, in which case it
	// returns ErrRunInProgress.
	TryRun(ctx context.Context, job string) (*storage.RunRecord, error)
	// History returns recent runs, newest first. An empty job lists all jobs.
	History(ctx context.Context, job string, limit int) ([]storage.RunRecord, error)
	// Latest returns the newest run of job, or nil if it never ran.
	Latest(ctx context.Context, job string) (*storage.RunRecord, error)
}

// Runner serializes sync runs inside one process and records each one in
// the run ledger.
type Runner struct {
	mu      sync.Mutex
	jobs    map[string]Job
	runs    storage.RunStore
	metrics *telemetry.JobMetrics
	tracer  trace.Tracer
	logger  *slog.Logger
	now     func() time.Time
}

var _ RunService = (*Runner)(nil)

// NewRunner creates a Runner recording into runs.
func NewRunner(runs storage.RunStore, metrics *telemetry.JobMetrics) *Runner {
	if metrics == nil {
		metrics = telemetry.NewJobMetrics()
	}
	return &Runner{
		jobs:    make(map[string]Job),
		runs:    runs,
		metrics: metrics,
		tracer:  telemetry.Tracer("notionsync/service"),
		logger:  slog.Default(),
		now:     time.Now,
	}
}

// Register adds job under name, replacing any previous job of that name.
func (r *Runner) Register(name string, job Job) {
	r.jobs[name] = job
}

// Jobs returns the registered job names in sorted order.
func (r *Runner) Jobs() []string {
	names := make([]string, 0, len(r.jobs))
	for name := range r.jobs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Recover marks runs left behind by a previous process as abandoned.
func (r *Runner) Recover(ctx context.Context) error {
	n, err := r.runs.MarkAbandoned(ctx, r.now())
	if err != nil {
		return WrapError(err, "failed to recover run ledger")
	}
	if n > 0 {
		r.logger.WarnContext(ctx, "marked interrupted runs as abandoned", "count", n)
	}
	return nil
}

// Run waits for any run in progress, then runs job.
func (r *Runner) Run(ctx context.Context, job string) (*storage.RunRecord, error) {
	j, ok := r.jobs[job]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownJob, job)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.execute(ctx, job, j)
}

// TryRun runs job unless another run is in progress.
func (r *Runner) TryRun(ctx context.Context, job string) (*storage.RunRecord, error) {
	j, ok := r.jobs[job]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownJob, job)
	}
	if !r.mu.TryLock() {
		return nil, ErrRunInProgress
	}
	defer r.mu.Unlock()
	return r.execute(ctx, job, j)
}

// History returns recent runs, newest first.
func (r *Runner) History(ctx context.Context, job string, limit int) ([]storage.RunRecord, error) {
	if limit < 0 || limit > maxHistory {
		return nil, &ValidationError{Field: "limit", Message: fmt.Sprintf("must be between 0 and %d", maxHistory)}
	}
	if job != "" {
		if _, ok := r.jobs[job]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownJob, job)
		}
	}
	runs, err := r.runs.ListRecent(ctx, job, limit)
	if err != nil {
		return nil, WrapError(err, "failed to list runs")
	}
	return runs, nil
}

// Latest returns the newest run of job, or nil if it never ran.
func (r *Runner) Latest(ctx context.Context, job string) (*storage.RunRecord, error) {
	run, err := r.runs.Latest(ctx, job)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, WrapError(err, "failed to read latest run")
	}
	return run, nil
}

func (r *Runner) execute(ctx context.Context, name string, job Job) (*storage.RunRecord, error) {
	runID := uuid.New().String()
	ctx, span := r.tracer.Start(ctx, "job."+name,
		trace.WithAttributes(
			attribute.String("notionsync.job", name),
			attribute.String("notionsync.run_id", runID),
		),
	)
	defer span.End()

	logger := contextutil.LoggerFromContext(ctx).With("job", name, "run_id", runID)
	ctx = contextutil.WithLogger(ctx, logger)

	rec := &storage.RunRecord{
		ID:        runID,
		Job:       name,
		StartedAt: r.now(),
		Status:    storage.StatusRunning,
	}
	if err := r.runs.Start(ctx, rec); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "ledger unavailable")
		return nil, WrapError(err, "failed to record run start")
	}
	logger.InfoContext(ctx, "run started")

	start := time.Now()
	res, runErr := job.Run(ctx)
	elapsed := time.Since(start)

	rec.Status = storage.StatusSucceeded
	if runErr != nil {
		rec.Status = storage.StatusFailed
		rec.Error = runErr.Error()
	}
	if res.Stats != nil {
		stats, err := json.Marshal(res.Stats)
		if err != nil {
			logger.WarnContext(ctx, "failed to encode run stats", "error", err)
		} else {
			rec.Stats = stats
		}
	}
	finished := r.now()
	rec.FinishedAt = &finished

	if err := r.runs.Finish(ctx, rec.ID, rec.Status, rec.Stats, rec.Error, finished); err != nil {
		logger.ErrorContext(ctx, "failed to record run result", "error", err)
		if runErr == nil {
			runErr = WrapError(err, "failed to record run result")
		}
	}

	r.metrics.RecordRun(ctx, name, elapsed, res.Writes, runErr)
	span.SetAttributes(attribute.Int("notionsync.writes", res.Writes))

	if runErr != nil {
		span.RecordError(runErr)
		span.SetStatus(codes.Error, runErr.Error())
		logger.ErrorContext(ctx, "run failed", "error", runErr, "duration_ms", elapsed.Milliseconds())
		return rec, WrapError(runErr, fmt.Sprintf("job %s failed", name))
	}

	logger.InfoContext(ctx, "run finished", "duration_ms", elapsed.Milliseconds(), "writes", res.Writes)
	return rec, nil
}
