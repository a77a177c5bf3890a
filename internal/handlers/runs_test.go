package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"notionsync/internal/handlers"
	"notionsync/internal/service"
	"notionsync/internal/service/mocks"
	"notionsync/internal/storage"
)

// withJob sets the chi route parameter the way the router would.
func withJob(req *http.Request, job string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("job", job)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestRunsHandler_Trigger(t *testing.T) {
	tests := []struct {
		name       string
		job        string
		setupMock  func(*mocks.MockRunService)
		wantStatus int
		check      func(*testing.T, *httptest.ResponseRecorder)
	}{
		{
			name: "success",
			job:  "todoist",
			setupMock: func(m *mocks.MockRunService) {
				m.EXPECT().TryRun(gomock.Any(), "todoist").Return(&storage.RunRecord{
					ID: "r1", Job: "todoist", Status: storage.StatusSucceeded,
					Stats: json.RawMessage(`{"processed":1}`),
				}, nil)
			},
			wantStatus: http.StatusOK,
			check: func(t *testing.T, w *httptest.ResponseRecorder) {
				var rec storage.RunRecord
				require.NoError(t, json.NewDecoder(w.Body).Decode(&rec))
				assert.Equal(t, "r1", rec.ID)
				assert.JSONEq(t, `{"processed":1}`, string(rec.Stats))
			},
		},
		{
			name: "unknown job",
			job:  "nope",
			setupMock: func(m *mocks.MockRunService) {
				m.EXPECT().TryRun(gomock.Any(), "nope").Return(nil, fmt.Errorf("%w: nope", service.ErrUnknownJob))
			},
			wantStatus: http.StatusNotFound,
		},
		{
			name: "run in progress",
			job:  "todoist",
			setupMock: func(m *mocks.MockRunService) {
				m.EXPECT().TryRun(gomock.Any(), "todoist").Return(nil, service.ErrRunInProgress)
			},
			wantStatus: http.StatusConflict,
		},
		{
			name: "run failed",
			job:  "postgres",
			setupMock: func(m *mocks.MockRunService) {
				m.EXPECT().TryRun(gomock.Any(), "postgres").Return(
					&storage.RunRecord{ID: "r2", Status: storage.StatusFailed, Error: "boom"},
					errors.New("job postgres failed: boom"),
				)
			},
			wantStatus: http.StatusInternalServerError,
			check: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp handlers.RunFailedResponse
				require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
				assert.Equal(t, "job postgres failed: boom", resp.Error)
				require.NotNil(t, resp.Run)
				assert.Equal(t, "r2", resp.Run.ID)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			runs := mocks.NewMockRunService(ctrl)
			tt.setupMock(runs)

			req := withJob(httptest.NewRequest(http.MethodPost, "/api/runs/"+tt.job, nil), tt.job)
			w := httptest.NewRecorder()
			handlers.NewRunsHandler(runs).Trigger(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
			if tt.check != nil {
				tt.check(t, w)
			}
		})
	}
}

func TestRunsHandler_List(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		setupMock  func(*mocks.MockRunService)
		wantStatus int
		wantRuns   int
	}{
		{
			name:  "defaults",
			query: "",
			setupMock: func(m *mocks.MockRunService) {
				m.EXPECT().History(gomock.Any(), "", 20).Return([]storage.RunRecord{{ID: "a"}, {ID: "b"}}, nil)
			},
			wantStatus: http.StatusOK,
			wantRuns:   2,
		},
		{
			name:  "filtered and limited",
			query: "?job=todoist&limit=5",
			setupMock: func(m *mocks.MockRunService) {
				m.EXPECT().History(gomock.Any(), "todoist", 5).Return(nil, nil)
			},
			wantStatus: http.StatusOK,
			wantRuns:   0,
		},
		{
			name:       "bad limit",
			query:      "?limit=ten",
			setupMock:  func(*mocks.MockRunService) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:  "limit out of range",
			query: "?limit=1000",
			setupMock: func(m *mocks.MockRunService) {
				m.EXPECT().History(gomock.Any(), "", 1000).Return(nil, &service.ValidationError{Field: "limit", Message: "too large"})
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:  "unknown job",
			query: "?job=nope",
			setupMock: func(m *mocks.MockRunService) {
				m.EXPECT().History(gomock.Any(), "nope", 20).Return(nil, service.ErrUnknownJob)
			},
			wantStatus: http.StatusNotFound,
		},
		{
			name:  "ledger error",
			query: "",
			setupMock: func(m *mocks.MockRunService) {
				m.EXPECT().History(gomock.Any(), "", 20).Return(nil, errors.New("locked"))
			},
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			runs := mocks.NewMockRunService(ctrl)
			tt.setupMock(runs)

			w := httptest.NewRecorder()
			handlers.NewRunsHandler(runs).List(w, httptest.NewRequest(http.MethodGet, "/api/runs"+tt.query, nil))

			require.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus != http.StatusOK {
				return
			}
			var resp handlers.RunsResponse
			require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
			assert.NotNil(t, resp.Runs)
			assert.Len(t, resp.Runs, tt.wantRuns)
		})
	}
}
