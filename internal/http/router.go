// Package http wires the handlers into the service's route tree.
package http

import (
	"database/sql"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"tabular-rag/internal/handlers"
	"tabular-rag/internal/storage"
	"tabular-rag/internal/vectorstore"
)

// Deps holds dependencies for the HTTP router.
type Deps struct {
	DB         *sql.DB
	Containers storage.ContainerStore
	Stores     map[string]vectorstore.Store
	Scheduler  handlers.Scheduler
	Engine     handlers.QueryEngine
}

// NewRouter creates a new HTTP router with the provided dependencies.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(LoggerMiddleware)
	r.Use(CORS)

	createIndexHandler := handlers.NewCreateIndexHandler(deps.Containers, deps.Stores)
	ingestHandler := handlers.NewIngestHandler(deps.Containers, deps.Scheduler)
	searchHandler := handlers.NewSearchHandler(deps.Engine)

	backends := make([]string, 0, len(deps.Stores))
	for name := range deps.Stores {
		backends = append(backends, name)
	}
	healthHandler := handlers.NewHealthHandler(deps.DB, backends)

	r.Route("/api", func(r chi.Router) {
		r.Method(http.MethodGet, "/health", healthHandler)

		r.Route("/v1", func(r chi.Router) {
			r.Method(http.MethodPost, "/index/create", createIndexHandler)
			r.Method(http.MethodPost, "/ingest/start", ingestHandler)
			r.Method(http.MethodPost, "/search/query", searchHandler)
		})
	})

	return r
}
