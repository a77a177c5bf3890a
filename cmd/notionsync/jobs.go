package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"notionsync/internal/config"
	"notionsync/internal/notion"
	"notionsync/internal/reconcile"
	"notionsync/internal/schema"
	"notionsync/internal/service"
	"notionsync/internal/storage"
	"notionsync/internal/todoist"
)

const (
	jobTodoist  = "todoist"
	jobPostgres = "postgres"
)

func fieldMap(f config.Fields) notion.FieldMap {
	return notion.FieldMap{
		Due:          f.Date,
		LastModified: f.UpdatedAt,
		Category:     f.Projects,
		Completed:    f.Completed,
		ExternalID:   f.ExternalID,
	}
}

func todoistJob(cfg *config.Config) service.Job {
	return service.ReconcileJob(func(ctx context.Context) (service.Reconciler, error) {
		client := notion.NewClient(cfg.NotionBaseURL, cfg.NotionToken)
		source := notion.NewTaskSource(client, cfg.NotionTasksView, cfg.NotionProjectsView, fieldMap(cfg.Fields))
		if err := source.Init(ctx); err != nil {
			return nil, err
		}
		sink := todoist.NewSink(cfg.TodoistBaseURL, cfg.TodoistToken)
		return reconcile.New(source, sink, reconcile.Options{SkipInvalidDue: cfg.SkipInvalidDue}), nil
	})
}

func postgresJob(cfg *config.Config, store *storage.PostgresStore) service.Job {
	return service.ProjectionJob(func(ctx context.Context) (service.Projector, error) {
		client := notion.NewClient(cfg.NotionBaseURL, cfg.NotionToken)
		source := notion.NewCollectionSource(client, cfg.NotionTasksView)
		return schema.NewProjector(source, store, cfg.PostgresTable), nil
	})
}

// openLedger opens and migrates the SQLite run ledger.
func openLedger(cfg *config.Config) (*sql.DB, *storage.RunRepo, error) {
	if err := cfg.EnsureDataDir(); err != nil {
		return nil, nil, err
	}
	db, err := storage.New(cfg.RunsDBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open run ledger: %w", err)
	}
	if err := storage.Migrate(db); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("failed to migrate run ledger: %w", err)
	}
	slog.Debug("Run ledger initialized", "path", cfg.RunsDBPath)
	return db, storage.NewRunRepo(db), nil
}

// closers releases resources in reverse order of acquisition.
type closers []func() error

func (c closers) Close() {
	for i := len(c) - 1; i >= 0; i-- {
		_ = c[i]()
	}
}

// newRunner builds a runner with the jobs whose configuration is complete.
// With strict set, an incomplete configuration for a wanted job is an error.
func newRunner(ctx context.Context, cfg *config.Config, want []string, strict bool) (*service.Runner, closers, error) {
	var cleanup closers

	db, runs, err := openLedger(cfg)
	if err != nil {
		return nil, nil, err
	}
	cleanup = append(cleanup, db.Close)

	runner := service.NewRunner(runs, nil)
	if err := runner.Recover(ctx); err != nil {
		cleanup.Close()
		return nil, nil, err
	}

	for _, job := range want {
		switch job {
		case jobTodoist:
			if err := cfg.ValidateTodoist(); err != nil {
				if strict {
					cleanup.Close()
					return nil, nil, err
				}
				slog.Warn("Job disabled", "job", job, "reason", err)
				continue
			}
			runner.Register(jobTodoist, todoistJob(cfg))

		case jobPostgres:
			if err := cfg.ValidatePostgres(); err != nil {
				if strict {
					cleanup.Close()
					return nil, nil, err
				}
				slog.Warn("Job disabled", "job", job, "reason", err)
				continue
			}
			store, err := storage.OpenPostgres(ctx, cfg.PostgresConn)
			if err != nil {
				cleanup.Close()
				return nil, nil, err
			}
			cleanup = append(cleanup, store.Close)
			runner.Register(jobPostgres, postgresJob(cfg, store))
		}
	}

	if len(runner.Jobs()) == 0 {
		cleanup.Close()
		return nil, nil, fmt.Errorf("no job is fully configured")
	}
	return runner, cleanup, nil
}
