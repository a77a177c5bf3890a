package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"notionsync/internal/schema"
)

// ConfigFileEnv names the environment variable holding the config file path.
const ConfigFileEnv = "NOTIONSYNC_CONFIG"

// Fields names the task collection properties that carry each role.
type Fields struct {
	ExternalID string
	Date       string
	Completed  string
	UpdatedAt  string
	Projects   string
}

// Config holds all configuration for the application.
type Config struct {
	NotionToken        string
	NotionBaseURL      string
	NotionTasksView    string
	NotionProjectsView string
	TodoistToken       string
	TodoistBaseURL     string
	Fields             Fields
	PostgresConn       string
	PostgresTable      string
	SkipInvalidDue     bool
	RunsDBPath         string
	APIPort            string
	SyncInterval       time.Duration
	LogLevel           string
	LogFormat          string
}

// ValidationError reports a missing or malformed setting.
type ValidationError struct {
	Key     string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Key, e.Message)
}

var defaults = map[string]string{
	"NOTION_BASE_URL":  "https://api.notion.com",
	"TODOIST_BASE_URL": "https://api.todoist.com",
	"TODOIST_ID_FIELD": "TodoistId",
	"DATE_FIELD":       "Date",
	"COMPLETED_FIELD":  "Completed",
	"UPDATED_AT_FIELD": "UpdatedAt",
	"PROJECTS_FIELD":   "Project",
	"SKIP_INVALID_DUE": "false",
	"RUNS_DB_PATH":     "./data/notionsync.db",
	"API_PORT":         "9000",
	"SYNC_INTERVAL":    "0",
	"LOG_LEVEL":        "info",
	"LOG_FORMAT":       "text",
}

var keys = []string{
	"NOTION_TOKEN", "NOTION_BASE_URL", "NOTION_TASKS_VIEW", "NOTION_PROJECTS_VIEW",
	"TODOIST_TOKEN", "TODOIST_BASE_URL",
	"TODOIST_ID_FIELD", "DATE_FIELD", "COMPLETED_FIELD", "UPDATED_AT_FIELD", "PROJECTS_FIELD",
	"PSQL_CONN_STRING", "PSQL_TABLE_NAME",
	"SKIP_INVALID_DUE", "RUNS_DB_PATH", "API_PORT", "SYNC_INTERVAL", "LOG_LEVEL", "LOG_FORMAT",
}

// Load reads configuration and returns a Config struct.
// Sources, highest precedence first: environment variables, a .env file in
// the current directory or a parent, the YAML file at path (or at
// $NOTIONSYNC_CONFIG when path is empty), built-in defaults.
// Keys in the YAML file are the environment names in lower case.
func Load(path string) (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	wd, err := os.Getwd()
	if err == nil {
		dir := wd
		for i := 0; i < 5; i++ { // Limit search depth
			envPath := filepath.Join(dir, ".env")
			if _, err := os.Stat(envPath); err == nil {
				_ = godotenv.Load(envPath)
				break
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break // Reached filesystem root
			}
			dir = parent
		}
	}

	v := viper.New()
	for _, key := range keys {
		lower := strings.ToLower(key)
		if def, ok := defaults[key]; ok {
			v.SetDefault(lower, def)
		}
		_ = v.BindEnv(lower, key)
	}

	if path == "" {
		path = os.Getenv(ConfigFileEnv)
	}
	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	get := func(key string) string {
		return strings.TrimSpace(v.GetString(strings.ToLower(key)))
	}

	cfg := &Config{
		NotionToken:        get("NOTION_TOKEN"),
		NotionBaseURL:      get("NOTION_BASE_URL"),
		NotionTasksView:    get("NOTION_TASKS_VIEW"),
		NotionProjectsView: get("NOTION_PROJECTS_VIEW"),
		TodoistToken:       get("TODOIST_TOKEN"),
		TodoistBaseURL:     get("TODOIST_BASE_URL"),
		Fields: Fields{
			ExternalID: get("TODOIST_ID_FIELD"),
			Date:       get("DATE_FIELD"),
			Completed:  get("COMPLETED_FIELD"),
			UpdatedAt:  get("UPDATED_AT_FIELD"),
			Projects:   get("PROJECTS_FIELD"),
		},
		PostgresConn:  get("PSQL_CONN_STRING"),
		PostgresTable: get("PSQL_TABLE_NAME"),
		RunsDBPath:    get("RUNS_DB_PATH"),
		APIPort:       get("API_PORT"),
		LogLevel:      strings.ToLower(get("LOG_LEVEL")),
		LogFormat:     strings.ToLower(get("LOG_FORMAT")),
	}

	cfg.SkipInvalidDue, err = strconv.ParseBool(get("SKIP_INVALID_DUE"))
	if err != nil {
		return nil, &ValidationError{Key: "SKIP_INVALID_DUE", Message: "must be a boolean"}
	}

	interval := get("SYNC_INTERVAL")
	if interval == "0" {
		cfg.SyncInterval = 0
	} else if cfg.SyncInterval, err = time.ParseDuration(interval); err != nil {
		return nil, &ValidationError{Key: "SYNC_INTERVAL", Message: "must be a duration such as 15m"}
	}
	if cfg.SyncInterval < 0 {
		return nil, &ValidationError{Key: "SYNC_INTERVAL", Message: "must not be negative"}
	}

	if _, err := cfg.SlogLevel(); err != nil {
		return nil, err
	}
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return nil, &ValidationError{Key: "LOG_FORMAT", Message: "must be text or json"}
	}

	if _, err := strconv.Atoi(cfg.APIPort); err != nil {
		return nil, &ValidationError{Key: "API_PORT", Message: "must be a port number"}
	}

	return cfg, nil
}

// SlogLevel maps LogLevel onto a slog level.
func (c *Config) SlogLevel() (slog.Level, error) {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, &ValidationError{Key: "LOG_LEVEL", Message: "must be one of debug, info, warn, error"}
}

// ValidateTodoist checks the settings the reconciliation job needs.
func (c *Config) ValidateTodoist() error {
	return firstMissing(
		setting{"NOTION_TOKEN", c.NotionToken},
		setting{"NOTION_TASKS_VIEW", c.NotionTasksView},
		setting{"NOTION_PROJECTS_VIEW", c.NotionProjectsView},
		setting{"TODOIST_TOKEN", c.TodoistToken},
	)
}

// ValidatePostgres checks the settings the projection job needs.
func (c *Config) ValidatePostgres() error {
	if err := c.ValidateSchema(); err != nil {
		return err
	}
	if c.PostgresConn == "" {
		return &ValidationError{Key: "PSQL_CONN_STRING", Message: "is required"}
	}
	return nil
}

// ValidateSchema checks the settings needed to derive DDL without a database.
func (c *Config) ValidateSchema() error {
	if err := firstMissing(
		setting{"NOTION_TOKEN", c.NotionToken},
		setting{"NOTION_TASKS_VIEW", c.NotionTasksView},
		setting{"PSQL_TABLE_NAME", c.PostgresTable},
	); err != nil {
		return err
	}
	if !schema.ValidIdentifier(c.PostgresTable) {
		return &ValidationError{Key: "PSQL_TABLE_NAME", Message: "must be a plain SQL identifier"}
	}
	return nil
}

// EnsureDataDir creates the directory holding the run ledger.
func (c *Config) EnsureDataDir() error {
	dataDir := filepath.Dir(c.RunsDBPath)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	return nil
}

type setting struct {
	key   string
	value string
}

func firstMissing(settings ...setting) error {
	for _, s := range settings {
		if s.value == "" {
			return &ValidationError{Key: s.key, Message: "is required"}
		}
	}
	return nil
}
