package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// JobMetrics records run counters for sync jobs.
type JobMetrics struct {
	runs      metric.Int64Counter
	errs      metric.Int64Counter
	mutations metric.Int64Counter
	dur       metric.Float64Histogram
}

// NewJobMetrics creates the job instruments on the global meter provider.
func NewJobMetrics() *JobMetrics {
	m := Meter("")
	runs, _ := m.Int64Counter("notionsync.runs",
		metric.WithDescription("Sync runs started"),
	)
	errs, _ := m.Int64Counter("notionsync.run.errors",
		metric.WithDescription("Sync runs that ended with an error"),
	)
	mutations, _ := m.Int64Counter("notionsync.sink.mutations",
		metric.WithDescription("Remote writes issued by sync runs"),
	)
	dur, _ := m.Float64Histogram("notionsync.run.duration",
		metric.WithDescription("Sync run duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	return &JobMetrics{runs: runs, errs: errs, mutations: mutations, dur: dur}
}

// RecordRun counts one finished run of job.
func (m *JobMetrics) RecordRun(ctx context.Context, job string, elapsed time.Duration, writes int, err error) {
	attrs := metric.WithAttributes(attribute.String("notionsync.job", job))
	m.runs.Add(ctx, 1, attrs)
	m.dur.Record(ctx, float64(elapsed.Milliseconds()), attrs)
	if writes > 0 {
		m.mutations.Add(ctx, int64(writes), attrs)
	}
	if err != nil {
		m.errs.Add(ctx, 1, attrs)
	}
}
