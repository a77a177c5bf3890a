package main

import (
	"context"
	"errors"
	"log/slog"
	nethttp "net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"notionsync/internal/http"
	"notionsync/internal/service"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the run API and optionally sync on an interval",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			runner, cleanup, err := newRunner(ctx, a.cfg, []string{jobTodoist, jobPostgres}, false)
			if err != nil {
				return err
			}
			defer cleanup.Close()

			if a.cfg.SyncInterval > 0 {
				go schedule(ctx, runner, a.cfg.SyncInterval)
			}

			srv := &nethttp.Server{
				Addr:              ":" + a.cfg.APIPort,
				Handler:           http.NewRouter(&http.Deps{Runs: runner}),
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				slog.Info("Starting API server", "addr", srv.Addr, "jobs", runner.Jobs())
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			slog.Info("Shutting down API server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
				return err
			}
			return nil
		},
	}
}

// schedule runs every registered job in sequence each interval until ctx
// is done. A failed run is logged and does not stop the schedule.
func schedule(ctx context.Context, runner *service.Runner, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	slog.Info("Scheduler started", "interval", interval.String())
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, job := range runner.Jobs() {
				if _, err := runner.Run(ctx, job); err != nil {
					slog.Error("Scheduled run failed", "job", job, "error", err)
				}
			}
		}
	}
}
