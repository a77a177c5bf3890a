package service

import (
	"context"

	"notionsync/internal/reconcile"
	"notionsync/internal/schema"
)

// JobResult is the outcome of one job run.
type JobResult struct {
	// Stats is stored as JSON in the run ledger.
	Stats any
	// Writes counts the remote mutations the run issued.
	Writes int
}

// Job is one kind of sync the runner can execute.
type Job interface {
	Run(ctx context.Context) (JobResult, error)
}

// JobFunc adapts a function to Job.
type JobFunc func(ctx context.Context) (JobResult, error)

// Run calls f.
func (f JobFunc) Run(ctx context.Context) (JobResult, error) {
	return f(ctx)
}

// Reconciler performs one two-way reconciliation.
type Reconciler interface {
	Run(ctx context.Context) (*reconcile.Result, error)
}

// Projector mirrors a collection into a relational table.
type Projector interface {
	Sync(ctx context.Context) (*schema.Result, error)
}

// ReconcileJob runs a reconciler built fresh for every run, so that adapter
// caches and staged commands never outlive a run.
func ReconcileJob(build func(ctx context.Context) (Reconciler, error)) Job {
	return JobFunc(func(ctx context.Context) (JobResult, error) {
		r, err := build(ctx)
		if err != nil {
			return JobResult{}, WrapError(err, "failed to prepare reconciliation")
		}
		res, err := r.Run(ctx)
		if res == nil {
			return JobResult{}, err
		}
		return JobResult{
			Stats:  res.Stats,
			Writes: len(res.SinkMutations) + len(res.SourceWrites),
		}, err
	})
}

// ProjectionJob runs a schema projection built fresh for every run.
func ProjectionJob(build func(ctx context.Context) (Projector, error)) Job {
	return JobFunc(func(ctx context.Context) (JobResult, error) {
		p, err := build(ctx)
		if err != nil {
			return JobResult{}, WrapError(err, "failed to prepare projection")
		}
		res, err := p.Sync(ctx)
		if res == nil {
			return JobResult{}, err
		}
		return JobResult{Stats: res, Writes: int(res.RowsAffected)}, err
	})
}
