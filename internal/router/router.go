// Package router mounts the Rare API on a chi router: global middleware,
// the operational endpoints, and the dispatch table as the catch-all.
package router

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"rare/internal/metrics"
	"rare/internal/middleware"
)

// New returns the configured chi router.
func New(db *sql.DB, d *Dispatcher) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.Metrics(d.resourceLabel))
	r.Use(middleware.CORS)
	r.Use(middleware.SecureHeaders)

	r.Get("/health", healthHandler(db))
	r.Handle("/metrics", metrics.Handler())

	// Everything else goes through the dispatch table, which answers 404
	// for unknown (method, resource) pairs itself.
	r.NotFound(d.ServeHTTP)
	r.MethodNotAllowed(d.ServeHTTP)

	return r
}

// healthHandler reports ok when the database answers a ping.
func healthHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
