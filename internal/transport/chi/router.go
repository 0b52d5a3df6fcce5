package chi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/kailas-cloud/tabdex/internal/metrics"
)

// NewRouter mounts the API on a chi router with the standard middleware chain.
func NewRouter(s *Server, apiKeys []string) http.Handler {
	r := chi.NewRouter()
	r.Use(JSONRecoverer(s.logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(WideEventMiddleware(s.logger))
	r.Use(BearerAuthMiddleware(apiKeys))
	r.Use(metrics.Middleware())

	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/search", s.Search)
		r.Post("/ingest", s.Ingest)
		r.Post("/reindex", s.Reindex)
		r.Get("/sources", s.ListSources)
		r.Delete("/sources/{id}", s.DeleteSource)
		r.Get("/datasets", s.Datasets)
		r.Get("/catalog", s.ListCatalog)
		r.Get("/catalog/{surveyId}", s.GetCatalogEntry)
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, ErrorCodeNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, ErrorCodeMethodNotAllowed, "method not allowed")
	})
	return r
}
