package tenantcache

import (
	"context"
	"time"
)

// Backend is the shared cache the tenant cache scopes keys into. Every
// operation is independently atomic at the single-key level; no multi-key
// transactions are assumed.
type Backend interface {
	// Get returns the value under the key, or ErrCacheMiss.
	Get(ctx context.Context, key string) ([]byte, error)

	// GetMany returns the values for the keys that exist. Missing keys are
	// simply absent from the result.
	GetMany(ctx context.Context, keys ...string) (map[string][]byte, error)

	// Set writes the value with the given TTL. Zero TTL means no expiry.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes the keys and returns how many existed.
	Delete(ctx context.Context, keys ...string) (int64, error)

	// AddToSet adds members to the set stored under the key.
	AddToSet(ctx context.Context, key string, members ...string) error

	// SetMembers returns all members of the set under the key.
	SetMembers(ctx context.Context, key string) ([]string, error)

	// Ping verifies the backend is reachable.
	Ping(ctx context.Context) error
}
