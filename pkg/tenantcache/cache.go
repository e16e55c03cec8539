package tenantcache

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/dmitrymomot/tenantkit/pkg/tenant"
)

const (
	scopePrefix    = "tenant:"
	trackingSuffix = ":__keys__"
)

// Cache wraps the shared cache backend with tenant-scoped keys. The tenant
// component of every key comes from the context installed by the tenant
// middleware - or from an alias bound with ForAlias for batch jobs - never
// from caller-supplied data, so a caller cannot smuggle another tenant's
// prefix into a key.
//
// Backend failures degrade instead of propagating: Get reports a miss,
// Set and Delete report false. A broken cache makes requests slower, never
// broken.
type Cache struct {
	backend Backend
	ttl     time.Duration
	alias   string // explicitly bound alias; empty means read from context
	log     *slog.Logger
}

// CacheOption configures the cache.
type CacheOption func(*Cache)

// WithDefaultTTL sets the TTL applied when Set is called with zero TTL.
func WithDefaultTTL(ttl time.Duration) CacheOption {
	return func(c *Cache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithCacheLogger sets the logger for degradation events.
func WithCacheLogger(log *slog.Logger) CacheOption {
	return func(c *Cache) {
		if log != nil {
			c.log = log
		}
	}
}

// New creates a tenant-scoped cache over the given backend.
func New(backend Backend, opts ...CacheOption) *Cache {
	c := &Cache{
		backend: backend,
		ttl:     time.Hour,
		log:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ForAlias returns a cache bound to an explicit database alias, for use
// outside the request pipeline (batch jobs, admin tooling). The bound alias
// takes precedence over any tenant context.
func (c *Cache) ForAlias(alias string) *Cache {
	bound := *c
	bound.alias = alias
	return &bound
}

// scope resolves the alias keys are scoped under.
func (c *Cache) scope(ctx context.Context) (string, bool) {
	if c.alias != "" {
		return c.alias, true
	}
	return tenant.DBAliasFromContext(ctx)
}

// ScopedKey returns the full backend key for a caller key under the current
// scope. Exposed for diagnostics; business code never needs it.
func (c *Cache) ScopedKey(ctx context.Context, key string) (string, error) {
	alias, ok := c.scope(ctx)
	if !ok {
		return "", ErrNoScope
	}
	return scopedKey(alias, key), nil
}

func scopedKey(alias, key string) string {
	return scopePrefix + alias + ":" + key
}

func trackingKey(alias string) string {
	return scopePrefix + alias + trackingSuffix
}

// Get returns the value under the caller key for the current tenant.
// Any failure, including a missing scope or an unreachable backend, reads
// as a miss so the caller falls back to its default.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool) {
	alias, ok := c.scope(ctx)
	if !ok {
		c.log.ErrorContext(ctx, "cache get without tenant scope", slog.String("key", key))
		return nil, false
	}
	value, err := c.backend.Get(ctx, scopedKey(alias, key))
	if err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			c.logDegraded(ctx, "get", err)
		}
		return nil, false
	}
	return value, true
}

// GetMany returns the values that exist for the caller keys, keyed by the
// original caller keys. Backend failure returns an empty map.
func (c *Cache) GetMany(ctx context.Context, keys []string) map[string][]byte {
	result := make(map[string][]byte, len(keys))
	alias, ok := c.scope(ctx)
	if !ok {
		c.log.ErrorContext(ctx, "cache get_many without tenant scope")
		return result
	}

	scoped := make([]string, len(keys))
	for i, key := range keys {
		scoped[i] = scopedKey(alias, key)
	}
	values, err := c.backend.GetMany(ctx, scoped...)
	if err != nil {
		c.logDegraded(ctx, "get_many", err)
		return result
	}
	for i, key := range keys {
		if value, found := values[scoped[i]]; found {
			result[key] = value
		}
	}
	return result
}

// Set writes the value under the caller key for the current tenant and
// records the scoped key in the tenant's key-tracking set. Zero TTL applies
// the cache default. Returns false on failure.
func (c *Cache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) bool {
	alias, ok := c.scope(ctx)
	if !ok {
		c.log.ErrorContext(ctx, "cache set without tenant scope", slog.String("key", key))
		return false
	}
	if ttl <= 0 {
		ttl = c.ttl
	}

	sk := scopedKey(alias, key)
	if err := c.backend.Set(ctx, sk, value, ttl); err != nil {
		c.logDegraded(ctx, "set", err)
		return false
	}
	if err := c.backend.AddToSet(ctx, trackingKey(alias), sk); err != nil {
		// The entry is written but untracked: ClearAll will miss it until it
		// expires via TTL. Tolerable, the key still carries the tenant prefix.
		c.logDegraded(ctx, "track", err)
	}
	return true
}

// SetMany writes all entries and tracks their keys. Returns false if any
// write failed; successfully written entries stay written.
func (c *Cache) SetMany(ctx context.Context, items map[string][]byte, ttl time.Duration) bool {
	alias, ok := c.scope(ctx)
	if !ok {
		c.log.ErrorContext(ctx, "cache set_many without tenant scope")
		return false
	}
	if ttl <= 0 {
		ttl = c.ttl
	}

	written := make([]string, 0, len(items))
	success := true
	for key, value := range items {
		sk := scopedKey(alias, key)
		if err := c.backend.Set(ctx, sk, value, ttl); err != nil {
			c.logDegraded(ctx, "set_many", err)
			success = false
			continue
		}
		written = append(written, sk)
	}
	if len(written) > 0 {
		if err := c.backend.AddToSet(ctx, trackingKey(alias), written...); err != nil {
			c.logDegraded(ctx, "track", err)
		}
	}
	return success
}

// Delete removes the caller key for the current tenant. Returns false on
// failure or missing scope.
func (c *Cache) Delete(ctx context.Context, key string) bool {
	alias, ok := c.scope(ctx)
	if !ok {
		c.log.ErrorContext(ctx, "cache delete without tenant scope", slog.String("key", key))
		return false
	}
	if _, err := c.backend.Delete(ctx, scopedKey(alias, key)); err != nil {
		c.logDegraded(ctx, "delete", err)
		return false
	}
	return true
}

// ClearAll removes every tracked key for the current tenant and then the
// tracking set itself, returning how many data keys were removed. A missing
// or unreadable tracking set is a no-op returning zero: at worst eviction is
// delayed, the orphaned keys still carry the tenant prefix and expire via
// TTL.
func (c *Cache) ClearAll(ctx context.Context) int {
	alias, ok := c.scope(ctx)
	if !ok {
		c.log.ErrorContext(ctx, "cache clear_all without tenant scope")
		return 0
	}

	tk := trackingKey(alias)
	tracked, err := c.backend.SetMembers(ctx, tk)
	if err != nil {
		c.logDegraded(ctx, "clear_all", err)
		return 0
	}
	if len(tracked) == 0 {
		return 0
	}

	deleted, err := c.backend.Delete(ctx, tracked...)
	if err != nil {
		c.logDegraded(ctx, "clear_all", err)
		return 0
	}
	if _, err := c.backend.Delete(ctx, tk); err != nil {
		c.logDegraded(ctx, "clear_all", err)
	}
	return int(deleted)
}

// Healthcheck returns a readiness probe for the underlying backend.
func (c *Cache) Healthcheck() func(context.Context) error {
	return func(ctx context.Context) error {
		return c.backend.Ping(ctx)
	}
}

func (c *Cache) logDegraded(ctx context.Context, op string, err error) {
	c.log.WarnContext(ctx, "cache backend degraded",
		slog.String("op", op),
		slog.Any("error", err),
	)
}
