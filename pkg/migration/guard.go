package migration

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/tenantkit/pkg/logger"
)

// DatabaseSet answers whether an alias is a configured physical database.
// *router.Router satisfies it.
type DatabaseSet interface {
	Has(alias string) bool
}

// Guard authorizes schema migrations per (database, component) pair. The
// decision sequence is short-circuiting and fail-closed: unknown database,
// allowlist miss, held lock, or any lock-store error all deny. Migrations
// never run speculatively.
//
// The allowlist is a strict subset of configured databases - typically only
// the database holding shared control-plane schema. Per-tenant databases are
// excluded unless explicitly listed, forcing migration opt-in per database.
type Guard struct {
	databases DatabaseSet
	allowlist map[string]struct{}
	locks     LockStore
	ttl       time.Duration
	log       *slog.Logger
}

// Status is the side-effect-free operational view of one database's
// migration state.
type Status struct {
	IsValid   bool `json:"is_valid"`
	IsAllowed bool `json:"is_allowed"`
	IsLocked  bool `json:"is_locked"`
}

// GuardOption configures the guard.
type GuardOption func(*Guard)

// WithGuardLogger sets the logger for decision audit entries.
func WithGuardLogger(log *slog.Logger) GuardOption {
	return func(g *Guard) {
		if log != nil {
			g.log = log
		}
	}
}

// NewGuard creates a migration guard.
// Every allowlisted alias must be a configured database; an allowlist entry
// outside the database set is a startup error, not something to discover
// during a deploy.
func NewGuard(databases DatabaseSet, allowlist []string, locks LockStore, ttl time.Duration, opts ...GuardOption) (*Guard, error) {
	if locks == nil {
		return nil, ErrMissingLockStore
	}
	if ttl <= 0 {
		ttl = DefaultLockTTL
	}

	g := &Guard{
		databases: databases,
		allowlist: make(map[string]struct{}, len(allowlist)),
		locks:     locks,
		ttl:       ttl,
		log:       slog.Default(),
	}
	for _, alias := range allowlist {
		if !databases.Has(alias) {
			return nil, ErrAllowlistUnknownDatabase
		}
		g.allowlist[alias] = struct{}{}
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// DefaultLockTTL bounds the blast radius of a crashed migration.
const DefaultLockTTL = 15 * time.Minute

// Allow decides whether a schema migration may run against the given
// database for the given application component. On success the caller holds
// the migration lock and must Release it when the migration completes; a
// crash mid-migration is covered by the lock TTL.
//
// Every decision, allow or deny, is logged with a correlation id binding
// (db_alias, component, decision, reason) for audit.
func (g *Guard) Allow(ctx context.Context, dbAlias, component string) bool {
	correlationID := uuid.NewString()

	if !g.databases.Has(dbAlias) {
		g.logDecision(ctx, correlationID, dbAlias, component, false, "unknown_database")
		return false
	}
	if _, ok := g.allowlist[dbAlias]; !ok {
		g.logDecision(ctx, correlationID, dbAlias, component, false, "not_allowlisted")
		return false
	}

	lock := Lock{
		DBAlias:       dbAlias,
		Component:     component,
		CorrelationID: correlationID,
		AcquiredAt:    time.Now().UTC(),
		TTLSeconds:    int64(g.ttl / time.Second),
	}
	acquired, err := g.locks.Acquire(ctx, lockKey(dbAlias, component), lock, g.ttl)
	if err != nil {
		// Fail closed: an unreachable lock store denies the migration.
		g.logDecision(ctx, correlationID, dbAlias, component, false, "lock_store_error")
		return false
	}
	if !acquired {
		g.logDecision(ctx, correlationID, dbAlias, component, false, "migration_in_flight")
		return false
	}

	g.logDecision(ctx, correlationID, dbAlias, component, true, "lock_acquired")
	return true
}

// Release frees the migration lock after a completed migration.
func (g *Guard) Release(ctx context.Context, dbAlias, component string) error {
	return g.locks.Release(ctx, lockKey(dbAlias, component))
}

// Status reports the migration state of a database without side effects.
// A lock-store failure is reported as locked: operational tooling must not
// read "unknown" as "safe to migrate".
func (g *Guard) Status(ctx context.Context, dbAlias string) Status {
	st := Status{IsValid: g.databases.Has(dbAlias)}
	_, st.IsAllowed = g.allowlist[dbAlias]

	locked, err := g.locks.LockedForDB(ctx, dbAlias)
	if err != nil {
		st.IsLocked = true
		return st
	}
	st.IsLocked = locked
	return st
}

// LockTTL returns the configured lock TTL.
func (g *Guard) LockTTL() time.Duration {
	return g.ttl
}

func (g *Guard) logDecision(ctx context.Context, correlationID, dbAlias, component string, allowed bool, reason string) {
	attrs := []slog.Attr{
		logger.CorrelationID(correlationID),
		logger.DBAlias(dbAlias),
		logger.Component(component),
		slog.Bool("allowed", allowed),
		slog.String("reason", reason),
	}
	level := slog.LevelInfo
	if !allowed {
		level = slog.LevelWarn
		attrs = append(attrs, logger.SecurityEvent())
	}
	g.log.LogAttrs(ctx, level, "migration decision", attrs...)
}
