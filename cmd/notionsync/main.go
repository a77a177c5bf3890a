package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"notionsync/internal/config"
	"notionsync/internal/telemetry"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

// app carries what every subcommand needs once the root command has loaded
// configuration.
type app struct {
	configPath string
	logLevel   string
	logFormat  string
	cfg        *config.Config
}

func main() {
	err := newRootCmd().Execute()
	telemetry.Shutdown(context.Background())
	if err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "notionsync",
		Short:         "Synchronize a Notion task database with Todoist and Postgres",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd.Context())
		},
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "YAML config file (default $"+config.ConfigFileEnv+")")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error (overrides LOG_LEVEL)")
	root.PersistentFlags().StringVar(&a.logFormat, "log-format", "", "log format: text or json (overrides LOG_FORMAT)")

	root.AddCommand(
		newTodoistCmd(a),
		newPostgresCmd(a),
		newSchemaCmd(a),
		newServeCmd(a),
	)
	return root
}

// setup loads configuration, configures logging and starts telemetry.
func (a *app) setup(ctx context.Context) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}
	if a.logFormat != "" {
		cfg.LogFormat = a.logFormat
	}
	level, err := cfg.SlogLevel()
	if err != nil {
		return err
	}

	// Configure structured logging with configurable level and format
	opts := &slog.HandlerOptions{
		Level: level,
	}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
	slog.Debug("Logging configured", "level", level.String(), "format", cfg.LogFormat)

	if err := telemetry.Init(ctx, "notionsync", version); err != nil {
		return err
	}

	a.cfg = cfg
	return nil
}
