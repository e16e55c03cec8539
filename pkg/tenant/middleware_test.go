package tenant_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/tenantkit/pkg/tenant"
)

func TestMiddleware(t *testing.T) {
	t.Parallel()

	t.Run("installs tenant context for known host", func(t *testing.T) {
		t.Parallel()

		resolver, err := tenant.NewResolver(testRegistry(t))
		require.NoError(t, err)

		handler := tenant.Middleware(resolver)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tc, ok := tenant.FromContext(r.Context())
			require.True(t, ok)
			assert.Equal(t, "db_acme", tc.DBAlias)
			w.WriteHeader(http.StatusOK)
		}))

		req := httptest.NewRequest("GET", "http://acme.example.com/", nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("unknown host rejected before handler runs", func(t *testing.T) {
		t.Parallel()

		resolver, err := tenant.NewResolver(testRegistry(t))
		require.NoError(t, err)

		handler := tenant.Middleware(resolver)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Error("handler must not run for unknown tenant")
		}))

		req := httptest.NewRequest("GET", "http://unknown.example.com/", nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("suspended tenant maps to 410", func(t *testing.T) {
		t.Parallel()

		resolver, err := tenant.NewResolver(testRegistry(t))
		require.NoError(t, err)

		handler := tenant.Middleware(resolver)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Error("handler must not run for suspended tenant")
		}))

		req := httptest.NewRequest("GET", "http://initech.example.com/", nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		assert.Equal(t, http.StatusGone, w.Code)
	})

	t.Run("malformed identifier maps to 400", func(t *testing.T) {
		t.Parallel()

		resolver, err := tenant.NewResolver(testRegistry(t), tenant.WithMode(tenant.ModePath))
		require.NoError(t, err)

		handler := tenant.Middleware(resolver)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Error("handler must not run for a malformed identifier")
		}))

		req := httptest.NewRequest("GET", "http://app.example.com/t/-bad!/x", nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("skip paths bypass resolution", func(t *testing.T) {
		t.Parallel()

		resolver, err := tenant.NewResolver(testRegistry(t))
		require.NoError(t, err)

		handler := tenant.Middleware(resolver, tenant.WithSkipPaths("/health"))(
			http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, ok := tenant.FromContext(r.Context())
				assert.False(t, ok)
				w.WriteHeader(http.StatusOK)
			}))

		// Unknown host would normally be rejected; the skip path lets it through.
		req := httptest.NewRequest("GET", "http://unknown.example.com/health", nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("path prefix stripped before handler", func(t *testing.T) {
		t.Parallel()

		resolver, err := tenant.NewResolver(testRegistry(t), tenant.WithMode(tenant.ModePath))
		require.NoError(t, err)

		handler := tenant.Middleware(resolver)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/dashboard", r.URL.Path)
			tc := tenant.MustFromContext(r.Context())
			assert.Equal(t, "db_globex", tc.DBAlias)
			w.WriteHeader(http.StatusOK)
		}))

		req := httptest.NewRequest("GET", "http://app.example.com/t/globex/dashboard", nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("scope cleared after handler", func(t *testing.T) {
		t.Parallel()

		resolver, err := tenant.NewResolver(testRegistry(t))
		require.NoError(t, err)

		var scope *tenant.Scope
		handler := tenant.Middleware(resolver)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			scope, _ = tenant.ScopeFromContext(r.Context())
			w.WriteHeader(http.StatusOK)
		}))

		req := httptest.NewRequest("GET", "http://acme.example.com/", nil)
		handler.ServeHTTP(httptest.NewRecorder(), req)

		require.NotNil(t, scope)
		_, ok := scope.Active()
		assert.False(t, ok, "scope must be empty after the request completes")
	})

	t.Run("scope cleared even when handler panics", func(t *testing.T) {
		t.Parallel()

		resolver, err := tenant.NewResolver(testRegistry(t))
		require.NoError(t, err)

		var scope *tenant.Scope
		handler := tenant.Middleware(resolver)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			scope, _ = tenant.ScopeFromContext(r.Context())
			panic("handler exploded")
		}))

		req := httptest.NewRequest("GET", "http://acme.example.com/", nil)
		assert.Panics(t, func() {
			handler.ServeHTTP(httptest.NewRecorder(), req)
		})

		require.NotNil(t, scope)
		_, ok := scope.Active()
		assert.False(t, ok, "scope must be empty even after a panic")
	})

	t.Run("sequential requests on one worker do not leak", func(t *testing.T) {
		t.Parallel()

		// Registry {a -> db_a-like}: request to acme, then unknown, then
		// globex, processed sequentially as a reused worker would.
		resolver, err := tenant.NewResolver(testRegistry(t))
		require.NoError(t, err)

		var seen []string
		handler := tenant.Middleware(resolver)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tc := tenant.MustFromContext(r.Context())
			seen = append(seen, tc.DBAlias)
			w.WriteHeader(http.StatusOK)
		}))

		first := httptest.NewRecorder()
		handler.ServeHTTP(first, httptest.NewRequest("GET", "http://acme.example.com/", nil))
		assert.Equal(t, http.StatusOK, first.Code)

		second := httptest.NewRecorder()
		handler.ServeHTTP(second, httptest.NewRequest("GET", "http://unknown.example.com/", nil))
		assert.Equal(t, http.StatusForbidden, second.Code)

		third := httptest.NewRecorder()
		handler.ServeHTTP(third, httptest.NewRequest("GET", "http://globex.example.com/", nil))
		assert.Equal(t, http.StatusOK, third.Code)

		assert.Equal(t, []string{"db_acme", "db_globex"}, seen,
			"rejected request must not run the handler and no alias may carry over")
	})

	t.Run("permissive mode runs handler unscoped", func(t *testing.T) {
		t.Parallel()

		resolver, err := tenant.NewResolver(testRegistry(t), tenant.WithPermissiveMode(""))
		require.NoError(t, err)

		handler := tenant.Middleware(resolver)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, ok := tenant.FromContext(r.Context())
			assert.False(t, ok)
			w.WriteHeader(http.StatusOK)
		}))

		req := httptest.NewRequest("GET", "http://unknown.example.com/", nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestRequireTenant(t *testing.T) {
	t.Parallel()

	t.Run("rejects request without tenant", func(t *testing.T) {
		t.Parallel()

		handler := tenant.RequireTenant(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Error("handler must not run without tenant")
		}))

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest("GET", "/x", nil))
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("passes request with tenant", func(t *testing.T) {
		t.Parallel()

		handler := tenant.RequireTenant(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

		req := httptest.NewRequest("GET", "/x", nil)
		ctx := tenant.WithContext(req.Context(), tenant.Context{Slug: "acme", DBAlias: "db_acme"})
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req.WithContext(ctx))
		assert.Equal(t, http.StatusOK, w.Code)
	})
}
