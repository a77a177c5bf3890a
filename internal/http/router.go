package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"notionsync/internal/handlers"
	"notionsync/internal/service"
)

// Deps holds dependencies for the HTTP router.
type Deps struct {
	Runs service.RunService
}

// NewRouter creates a new HTTP router with the provided dependencies.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	// Add chi middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(LoggerMiddleware)
	r.Use(RequestLogger)

	// Add CORS middleware
	r.Use(CORS)

	runsHandler := handlers.NewRunsHandler(deps.Runs)

	// Register API routes
	r.Route("/api", func(r chi.Router) {
		r.Method(http.MethodGet, "/health", handlers.NewHealthHandler(deps.Runs))
		r.Get("/runs", runsHandler.List)
		r.Post("/runs/{job}", runsHandler.Trigger)
	})

	return r
}
