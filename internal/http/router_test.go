package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/mock/gomock"

	"notionsync/internal/service"
	"notionsync/internal/service/mocks"
	"notionsync/internal/storage"
)

func TestNewRouter(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	router := NewRouter(&Deps{Runs: mocks.NewMockRunService(ctrl)})

	if router == nil {
		t.Fatal("NewRouter() returned nil")
	}
}

func TestRouter_Routes(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	runs := mocks.NewMockRunService(ctrl)
	runs.EXPECT().Jobs().Return([]string{"todoist"}).AnyTimes()
	runs.EXPECT().Latest(gomock.Any(), "todoist").Return(nil, nil).AnyTimes()
	runs.EXPECT().History(gomock.Any(), "", 20).Return([]storage.RunRecord{}, nil).AnyTimes()
	runs.EXPECT().TryRun(gomock.Any(), "todoist").Return(&storage.RunRecord{ID: "r1"}, nil).AnyTimes()
	runs.EXPECT().TryRun(gomock.Any(), "busy").Return(nil, service.ErrRunInProgress).AnyTimes()

	router := NewRouter(&Deps{Runs: runs})

	tests := []struct {
		name       string
		method     string
		path       string
		wantStatus int
	}{
		{
			name:       "GET /api/health",
			method:     http.MethodGet,
			path:       "/api/health",
			wantStatus: http.StatusOK,
		},
		{
			name:       "GET /api/runs",
			method:     http.MethodGet,
			path:       "/api/runs",
			wantStatus: http.StatusOK,
		},
		{
			name:       "POST /api/runs/{job}",
			method:     http.MethodPost,
			path:       "/api/runs/todoist",
			wantStatus: http.StatusOK,
		},
		{
			name:       "POST /api/runs/{job} while busy",
			method:     http.MethodPost,
			path:       "/api/runs/busy",
			wantStatus: http.StatusConflict,
		},
		{
			name:       "GET /api/runs/{job} method not allowed",
			method:     http.MethodGet,
			path:       "/api/runs/todoist",
			wantStatus: http.StatusMethodNotAllowed,
		},
		{
			name:       "unknown route",
			method:     http.MethodGet,
			path:       "/api/chat",
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "preflight",
			method:     http.MethodOptions,
			path:       "/api/runs/todoist",
			wantStatus: http.StatusNoContent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("Router %s %s status = %v, want %v", tt.method, tt.path, w.Code, tt.wantStatus)
			}
		})
	}
}
