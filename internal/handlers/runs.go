package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"notionsync/internal/contextutil"
	"notionsync/internal/service"
	"notionsync/internal/storage"
)

const defaultHistoryLimit = 20

// RunsHandler triggers sync jobs and lists their history.
type RunsHandler struct {
	runs service.RunService
}

// NewRunsHandler creates a new RunsHandler.
func NewRunsHandler(runs service.RunService) *RunsHandler {
	return &RunsHandler{runs: runs}
}

// RunFailedResponse is returned when a triggered run ends with an error.
type RunFailedResponse struct {
	Error string             `json:"error"`
	Run   *storage.RunRecord `json:"run,omitempty"`
}

// RunsResponse is the run history.
type RunsResponse struct {
	Runs []storage.RunRecord `json:"runs"`
}

// Trigger runs the job named in the path and waits for it to finish.
//
// swagger:route POST /api/runs/{job} triggerRun
//
// responses:
//
//	'200': run record
//	'404': unknown job
//	'409': another run is in progress
//	'500': run failed
func (h *RunsHandler) Trigger(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)
	job := chi.URLParam(r, "job")

	run, err := h.runs.TryRun(ctx, job)
	switch {
	case errors.Is(err, service.ErrUnknownJob):
		writeError(w, http.StatusNotFound, "Unknown job: "+job)
	case errors.Is(err, service.ErrRunInProgress):
		writeError(w, http.StatusConflict, "A sync run is already in progress")
	case err != nil:
		logger.ErrorContext(ctx, "triggered run failed", "job", job, "error", err)
		writeJSON(w, http.StatusInternalServerError, RunFailedResponse{Error: err.Error(), Run: run})
	default:
		writeJSON(w, http.StatusOK, run)
	}
}

// List returns recent runs, optionally filtered by job.
//
// swagger:route GET /api/runs listRuns
func (h *RunsHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)
	q := r.URL.Query()

	limit := defaultHistoryLimit
	if s := q.Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "limit must be an integer")
			return
		}
		limit = n
	}

	runs, err := h.runs.History(ctx, q.Get("job"), limit)
	if err != nil {
		var validationErr *service.ValidationError
		switch {
		case errors.As(err, &validationErr):
			writeError(w, http.StatusBadRequest, "Validation error: "+validationErr.Error())
		case errors.Is(err, service.ErrUnknownJob):
			writeError(w, http.StatusNotFound, "Unknown job: "+q.Get("job"))
		default:
			logger.ErrorContext(ctx, "failed to list runs", "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to list runs")
		}
		return
	}
	if runs == nil {
		runs = []storage.RunRecord{}
	}
	writeJSON(w, http.StatusOK, RunsResponse{Runs: runs})
}
