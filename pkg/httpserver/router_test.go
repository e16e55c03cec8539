package httpserver_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/tenantkit/pkg/httpserver"
)

func noopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewRouter(t *testing.T) {
	t.Parallel()

	t.Run("liveness always responds", func(t *testing.T) {
		t.Parallel()

		r := httpserver.NewRouter(context.Background(), noopLogger())

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "ALIVE", rec.Body.String())
	})

	t.Run("readiness reflects dependency checks", func(t *testing.T) {
		t.Parallel()

		healthy := func(context.Context) error { return nil }
		broken := func(context.Context) error { return errors.New("down") }

		r := httpserver.NewRouter(context.Background(), noopLogger(), healthy)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "READY", rec.Body.String())

		r = httpserver.NewRouter(context.Background(), noopLogger(), healthy, broken)
		rec = httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "NOT_READY", rec.Body.String())
	})

	t.Run("mount wraps subtree with middleware", func(t *testing.T) {
		t.Parallel()

		r := httpserver.NewRouter(context.Background(), noopLogger())

		var sawMiddleware bool
		mw := func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				sawMiddleware = true
				next.ServeHTTP(w, req)
			})
		}
		h := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		})
		httpserver.Mount(r, "/app", h, mw)

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/app", nil))

		require.Equal(t, http.StatusNoContent, rec.Code)
		assert.True(t, sawMiddleware)

		// Health endpoints stay outside the wrapped subtree.
		sawMiddleware = false
		rec = httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.False(t, sawMiddleware)
	})
}
