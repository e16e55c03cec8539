package tenant

import (
	"context"
	"encoding/json"
	"net/http"
)

// resolvedAliasKey carries the alias produced by resolution, captured by the
// middleware before any request mutation (path-prefix stripping).
type resolvedAliasKey struct{}

func withResolvedAlias(ctx context.Context, alias string) context.Context {
	return context.WithValue(ctx, resolvedAliasKey{}, alias)
}

func resolvedAliasFromContext(ctx context.Context) (string, bool) {
	alias, ok := ctx.Value(resolvedAliasKey{}).(string)
	return alias, ok
}

// DiagReport compares the alias the resolver would pick for the current
// request with the alias actually installed in the request context. The two
// must agree; a mismatch means propagation is broken and isolation can no
// longer be trusted.
type DiagReport struct {
	ResolvedAlias string `json:"resolved_alias"`
	ContextAlias  string `json:"context_alias"`
	Mismatch      bool   `json:"mismatch"`
}

func buildReport(resolver *Resolver, r *http.Request) DiagReport {
	var report DiagReport

	// Prefer the alias recorded at resolution time: the middleware may have
	// rewritten the request since (stripped the tenant path prefix), so
	// re-resolving the mutated request would miss a path-resolved tenant.
	if alias, ok := resolvedAliasFromContext(r.Context()); ok {
		report.ResolvedAlias = alias
	} else if res, err := resolver.Resolve(r); err == nil {
		report.ResolvedAlias = res.Context.DBAlias
	}
	if tc, ok := FromContext(r.Context()); ok {
		report.ContextAlias = tc.DBAlias
	}
	report.Mismatch = report.ResolvedAlias != report.ContextAlias

	return report
}

// DiagnosticsHandler returns a read-only, privileged endpoint reporting the
// resolved and installed aliases for the current request. Mount it behind
// the tenant middleware so the context alias is populated; it is meant for
// monitoring, never for business logic.
func DiagnosticsHandler(resolver *Resolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(buildReport(resolver, r))
	}
}

// HealthHandler reports healthy when the resolved and installed aliases
// agree, degraded otherwise.
func HealthHandler(resolver *Resolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report := buildReport(resolver, r)
		if report.Mismatch {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte("DEGRADED"))
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("HEALTHY"))
	}
}
