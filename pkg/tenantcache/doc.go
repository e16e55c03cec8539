// Package tenantcache scopes a shared cache backend per tenant.
//
// All tenants share one backend (Redis in production), so isolation depends
// entirely on key derivation: every caller key is prefixed with
// "tenant:<db_alias>:" where the alias comes from the tenant context - or an
// explicitly bound alias for batch jobs - and never from caller input. Two
// tenants can write the same caller key without colliding, and a caller key
// containing another tenant's alias as a substring still lands inside the
// caller's own prefix.
//
// Every write also records the scoped key in the tenant's key-tracking set,
// which is what makes ClearAll possible without a backend key-scan: the set
// is read, the tracked keys bulk-deleted, then the set itself removed.
//
// Cache failures are availability problems, not correctness problems, so
// they never propagate: Get degrades to a miss, Set and Delete to a false
// return. The request path must not fail because the cache is down.
//
// # Usage
//
//	cache := tenantcache.New(tenantcache.NewRedisBackend(redisClient),
//		tenantcache.WithDefaultTTL(30*time.Minute),
//	)
//
//	// inside a request handler, behind tenant.Middleware:
//	if data, ok := cache.Get(r.Context(), "dashboard"); ok {
//		// serve cached
//	}
//	cache.Set(r.Context(), "dashboard", rendered, 0)
//
//	// batch job with an explicit alias:
//	n := cache.ForAlias("db_acme").ClearAll(ctx)
package tenantcache
