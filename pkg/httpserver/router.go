package httpserver

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter builds a chi router preconfigured with panic recovery, request id
// and real client ip middleware, and mounts health endpoints: /healthz as a
// liveness probe and /readyz as a readiness probe over the supplied checks.
//
// Tenant resolution middleware is mounted by the caller on the routes that
// need it, so the health endpoints stay reachable without a tenant.
func NewRouter(ctx context.Context, log *slog.Logger, readiness ...func(context.Context) error) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", HealthCheckHandler(ctx, log))
	r.Get("/readyz", HealthCheckHandler(ctx, log, readiness...))

	return r
}

// Mount attaches a handler subtree under the given pattern, wrapped with the
// supplied middlewares in order. Convenience for mounting tenant-scoped route
// groups next to the unscoped health endpoints.
func Mount(r chi.Router, pattern string, h http.Handler, middlewares ...func(http.Handler) http.Handler) {
	r.Group(func(g chi.Router) {
		g.Use(middlewares...)
		g.Mount(pattern, h)
	})
}
