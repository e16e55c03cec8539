package tenantcache

import "errors"

var (
	// ErrCacheMiss is returned by backends when a key does not exist.
	ErrCacheMiss = errors.New("cache miss")

	// ErrBackendUnavailable wraps transient backend failures. The cache
	// degrades gracefully and never surfaces it to the request path.
	ErrBackendUnavailable = errors.New("cache backend unavailable")

	// ErrNoScope is returned when neither the context nor the cache instance
	// carries a tenant alias to scope keys with.
	ErrNoScope = errors.New("no tenant scope for cache operation")
)
