package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"finrag/internal/handlers"
	"finrag/internal/service"
)

// Deps holds dependencies for the HTTP router.
type Deps struct {
	RetrievalService service.RetrievalService
	IngestService    service.IngestService
	HealthChecks     []handlers.HealthCheck
	// AllowedOrigins restricts CORS; empty allows any origin.
	AllowedOrigins []string
}

// NewRouter creates a new HTTP router with the provided dependencies.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(LoggerMiddleware)
	r.Use(RequestLogger)
	r.Use(middleware.Recoverer)
	r.Use(CORS(deps.AllowedOrigins))

	retrieveHandler := handlers.NewRetrieveHandler(deps.RetrievalService)
	documentsHandler := handlers.NewDocumentsHandler(deps.IngestService)
	statsHandler := handlers.NewStatsHandler(deps.IngestService)
	healthHandler := handlers.NewHealthHandler(deps.HealthChecks...)

	r.Route("/api", func(r chi.Router) {
		r.Method(http.MethodGet, "/health", healthHandler)

		r.Route("/v1", func(r chi.Router) {
			r.Method(http.MethodPost, "/retrieve", retrieveHandler)
			r.Method(http.MethodPost, "/documents", documentsHandler)
			r.Method(http.MethodGet, "/stats", statsHandler)
		})
	})

	return r
}
