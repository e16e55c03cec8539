package tenant

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dmitrymomot/tenantkit/pkg/logger"
)

// ErrorHandler writes the HTTP response for a failed resolution.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

type middlewareConfig struct {
	skipPaths    []string
	errorHandler ErrorHandler
	log          *slog.Logger
}

// MiddlewareOption configures the middleware.
type MiddlewareOption func(*middlewareConfig)

// WithSkipPaths sets path prefixes that bypass tenant resolution entirely,
// such as health checks and static assets.
func WithSkipPaths(paths ...string) MiddlewareOption {
	return func(c *middlewareConfig) { c.skipPaths = append(c.skipPaths, paths...) }
}

// WithErrorHandler sets a custom rejection response writer.
func WithErrorHandler(handler ErrorHandler) MiddlewareOption {
	return func(c *middlewareConfig) {
		if handler != nil {
			c.errorHandler = handler
		}
	}
}

// WithMiddlewareLogger sets the logger used by the middleware.
func WithMiddlewareLogger(log *slog.Logger) MiddlewareOption {
	return func(c *middlewareConfig) {
		if log != nil {
			c.log = log
		}
	}
}

// Middleware wraps one HTTP request with the tenant context lifecycle:
// resolve, install, run the handler, clear. The clear runs in a defer so it
// fires on every exit path, including handler panics and timeouts. Worker
// goroutines are reused across requests; a missed clear would silently serve
// the next request with the previous tenant's context.
//
// A resolver rejection short-circuits before the wrapped handler runs and is
// written by the error handler (403-equivalent for unknown tenants in strict
// mode, 410-equivalent for suspended tenants).
func Middleware(resolver *Resolver, opts ...MiddlewareOption) func(http.Handler) http.Handler {
	cfg := &middlewareConfig{
		errorHandler: DefaultErrorHandler,
		log:          slog.Default(),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, skip := range cfg.skipPaths {
				if strings.HasPrefix(r.URL.Path, skip) {
					next.ServeHTTP(w, r)
					return
				}
			}

			res, err := resolver.Resolve(r)
			if err != nil {
				cfg.errorHandler(w, r, err)
				return
			}

			// Permissive mode with no tenant: run the handler unscoped.
			if !res.Context.Valid() {
				next.ServeHTTP(w, r)
				return
			}

			// Record what resolution produced before any path rewriting, so
			// diagnostics can compare it against the installed context even
			// after the matched prefix is stripped from the request.
			ctx := withResolvedAlias(r.Context(), res.Context.DBAlias)

			ctx, scope := NewScope(ctx)
			if err := scope.Push(res.Context); err != nil {
				cfg.log.ErrorContext(r.Context(), "tenant scope occupied before request start",
					logger.DBAlias(res.Context.DBAlias),
					logger.SecurityEvent(),
				)
				cfg.errorHandler(w, r, err)
				return
			}
			defer scope.Clear()

			if res.StripPrefix != "" {
				r = stripPathPrefix(r, res.StripPrefix)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireTenant ensures a tenant is present in the context, protecting
// routes that must never run unscoped.
func RequireTenant(errorHandler ErrorHandler) func(http.Handler) http.Handler {
	if errorHandler == nil {
		errorHandler = DefaultErrorHandler
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := FromContext(r.Context()); !ok {
				errorHandler(w, r, ErrNoTenantInContext)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// DefaultErrorHandler maps resolution failures to HTTP statuses without
// leaking internal detail to the caller.
func DefaultErrorHandler(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrTenantNotFound):
		http.Error(w, "Forbidden", http.StatusForbidden)
	case errors.Is(err, ErrTenantSuspended):
		http.Error(w, "Gone", http.StatusGone)
	case errors.Is(err, ErrNoTenantInContext):
		http.Error(w, "Forbidden", http.StatusForbidden)
	case errors.Is(err, ErrInvalidIdentifier):
		http.Error(w, "Bad Request", http.StatusBadRequest)
	default:
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

// stripPathPrefix removes the matched tenant prefix so downstream routing
// sees the tenant-relative path.
func stripPathPrefix(r *http.Request, prefix string) *http.Request {
	r2 := r.Clone(r.Context())
	r2.URL.Path = strings.TrimPrefix(r.URL.Path, prefix)
	if r2.URL.Path == "" {
		r2.URL.Path = "/"
	}
	if r2.URL.RawPath != "" {
		r2.URL.RawPath = strings.TrimPrefix(r.URL.RawPath, prefix)
	}
	return r2
}
