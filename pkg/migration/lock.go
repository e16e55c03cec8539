package migration

import (
	"context"
	"time"
)

// Lock is the record written to the shared lock store while a migration is
// in flight. A lock older than its TTL is considered abandoned and may be
// reclaimed; the TTL bounds how long a crashed migration can block future
// ones without manual intervention.
type Lock struct {
	DBAlias       string    `json:"db_alias"`
	Component     string    `json:"component"`
	CorrelationID string    `json:"correlation_id"`
	AcquiredAt    time.Time `json:"acquired_at"`
	TTLSeconds    int64     `json:"ttl_seconds"`
}

// Expired reports whether the lock has outlived its TTL.
func (l Lock) Expired(now time.Time) bool {
	return now.Sub(l.AcquiredAt) > time.Duration(l.TTLSeconds)*time.Second
}

// LockStore persists migration locks in the shared backend. Each operation
// is independently atomic at the single-key level; no multi-key transactions
// are assumed.
type LockStore interface {
	// Acquire writes the lock if no unexpired lock exists under the key.
	// Returns false without error when the key is already held.
	Acquire(ctx context.Context, key string, lock Lock, ttl time.Duration) (bool, error)

	// Get returns the current lock under the key, or nil when unheld.
	Get(ctx context.Context, key string) (*Lock, error)

	// Release removes the lock under the key. Releasing an unheld key is not
	// an error.
	Release(ctx context.Context, key string) error

	// LockedForDB reports whether any component holds a lock for the given
	// database alias.
	LockedForDB(ctx context.Context, dbAlias string) (bool, error)
}

const lockKeyPrefix = "migration:lock:"

// lockKey derives the store key for one (database, component) pair.
func lockKey(dbAlias, component string) string {
	return lockKeyPrefix + dbAlias + ":" + component
}

// lockKeyPatternForDB matches every component lock of one database.
func lockKeyPatternForDB(dbAlias string) string {
	return lockKeyPrefix + dbAlias + ":*"
}
