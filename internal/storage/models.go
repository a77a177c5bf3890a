package storage

import (
	"encoding/json"
	"time"
)

// Run statuses.
const (
	StatusRunning   = "running"
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
	StatusAbandoned = "abandoned"
)

// RunRecord is one row of the sync run ledger.
type RunRecord struct {
	ID         string          `json:"id"`     // UUID
	Job        string          `json:"job"`    // todoist or postgres
	StartedAt  time.Time       `json:"started_at"`
	FinishedAt *time.Time      `json:"finished_at,omitempty"`
	Status     string          `json:"status"`
	Stats      json.RawMessage `json:"stats,omitempty"` // job specific counters
	Error      string          `json:"error,omitempty"`
}
