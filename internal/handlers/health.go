package handlers

import (
	"context"
	"net/http"
	"time"

	"notionsync/internal/contextutil"
	"notionsync/internal/service"
	"notionsync/internal/storage"
)

// HealthHandler handles HTTP requests for health checks.
type HealthHandler struct {
	runs               service.RunService
	healthCheckTimeout time.Duration
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(runs service.RunService) *HealthHandler {
	return &HealthHandler{
		runs:               runs,
		healthCheckTimeout: 5 * time.Second,
	}
}

// JobHealth is the last known state of one job.
type JobHealth struct {
	LastStatus string     `json:"last_status,omitempty"`
	LastRunAt  *time.Time `json:"last_run_at,omitempty"`
	LastError  string     `json:"last_error,omitempty"`
}

// HealthResponse represents the health check response.
//
// swagger:model HealthResponse
type HealthResponse struct {
	// Overall health status: "healthy", "degraded", or "unhealthy"
	Status string `json:"status"`

	// Timestamp of the health check
	Timestamp string `json:"timestamp"`

	// Individual check results
	Checks map[string]string `json:"checks"`

	// Last run per registered job
	Jobs map[string]JobHealth `json:"jobs"`

	// List of issues (only present if status is degraded or unhealthy)
	Issues []string `json:"issues,omitempty"`
}

// ServeHTTP handles HTTP requests for health checks.
//
// Returns 200 OK when the run ledger is readable, even if the last run of a
// job failed (reported as degraded). Returns 503 when the ledger is
// unavailable.
//
// swagger:route GET /api/health healthCheck
//
// ---
// produces:
// - application/json
// responses:
//
//	'200':
//	  description: Service is healthy or degraded
//	  schema:
//	    "$ref": "#/definitions/HealthResponse"
//	'503':
//	  description: Run ledger unavailable
//	  schema:
//	    "$ref": "#/definitions/HealthResponse"
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodGet {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	// Create context with timeout for health checks
	checkCtx, cancel := context.WithTimeout(ctx, h.healthCheckTimeout)
	defer cancel()

	checks := map[string]string{"ledger": "ok"}
	jobs := make(map[string]JobHealth)
	var issues []string
	ledgerOK := true

	for _, name := range h.runs.Jobs() {
		run, err := h.runs.Latest(checkCtx, name)
		if err != nil {
			logger.WarnContext(ctx, "run ledger health check failed", "job", name, "error", err)
			ledgerOK = false
			break
		}
		if run == nil {
			jobs[name] = JobHealth{}
			continue
		}
		jobs[name] = JobHealth{
			LastStatus: run.Status,
			LastRunAt:  &run.StartedAt,
			LastError:  run.Error,
		}
		if run.Status == storage.StatusFailed {
			issues = append(issues, name+"_last_run_failed")
		}
	}

	status := "healthy"
	httpStatus := http.StatusOK
	switch {
	case !ledgerOK:
		checks["ledger"] = "error"
		issues = append(issues, "ledger_unavailable")
		status = "unhealthy"
		httpStatus = http.StatusServiceUnavailable
	case len(issues) > 0:
		status = "degraded"
	}

	response := HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
		Jobs:      jobs,
		Issues:    issues,
	}
	writeJSON(w, httpStatus, response)
}
