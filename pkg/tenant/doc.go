// Package tenant resolves tenant identity from inbound work and propagates
// it through an execution-scoped context with guaranteed cleanup.
//
// The package is built around three pieces:
//
//  1. Resolver - extracts an external identifier (hostname, path prefix,
//     header, token claim) and maps it to a tenant via the registry
//  2. Scope - the execution-scoped cell holding the active tenant context
//     for exactly one unit of work
//  3. Middleware / Runner - wrap one HTTP request or one background task,
//     installing the context before the body runs and clearing it on every
//     exit path
//
// Worker goroutines are reused across units of work, so the cleanup contract
// is the safety-critical part: a scope left occupied after one request would
// silently bleed into the next request served by the same worker. Both
// wrappers clear the scope in a defer and Scope.Push refuses to overwrite an
// occupied slot.
//
// # Usage
//
//	reg, _ := registry.LoadFile("tenants.yaml")
//	resolver, _ := tenant.NewResolver(reg, tenant.WithMode(tenant.ModeAuto))
//
//	r := chi.NewRouter()
//	r.Use(tenant.Middleware(resolver,
//		tenant.WithSkipPaths("/health", "/static/"),
//	))
//
//	r.Get("/dashboard", func(w http.ResponseWriter, r *http.Request) {
//		tc, ok := tenant.FromContext(r.Context())
//		if !ok {
//			// permissive mode, no tenant
//		}
//		_ = tc.DBAlias
//	})
//
// Background tasks use the Runner with an identifier taken from the task
// payload:
//
//	runner := tenant.NewRunner(reg, log)
//	err := runner.RunAs(ctx, payload.TenantSlug, func(ctx context.Context) error {
//		// same FromContext access as in handlers
//		return nil
//	})
//
// # Resolution modes
//
// ModeHostname is the production default: exact, case-insensitive host
// matching against registered hostnames. ModePath matches /t/{slug}/ and
// strips the prefix before routing. ModeHeader and ModeToken trust an
// already-authenticated caller. ModeAuto chains all of them in that order.
//
// In strict mode (the default) an unresolved tenant is rejected with a
// 403-equivalent before the handler runs. Permissive mode, for local
// development, falls back to a configured default tenant or to no tenant.
// Suspended tenants are always rejected distinctly (410-equivalent) and
// logged as security events.
package tenant
