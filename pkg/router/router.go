package router

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/tenantkit/pkg/logger"
	"github.com/dmitrymomot/tenantkit/pkg/tenant"
)

// DB is the scoped query-execution capability handed to domain code. Any
// data-access type used by business logic takes this interface, which keeps
// "is this access tenant-scoped" a compile-time property instead of a
// runtime check. *pgxpool.Pool satisfies it.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Router turns the active tenant context into a physical database handle.
// It holds one pgx pool per configured database alias plus a default alias
// used for tenant-agnostic control-plane data. The set of databases is fixed
// at startup; Select and Pool are called on every data access and are safe
// for concurrent use.
type Router struct {
	pools        map[string]*pgxpool.Pool
	defaultAlias string
	log          *slog.Logger
}

// Option configures the router.
type Option func(*Router)

// WithLogger sets the logger used for security events.
func WithLogger(log *slog.Logger) Option {
	return func(r *Router) {
		if log != nil {
			r.log = log
		}
	}
}

// New creates a router with the given default alias. The default database
// must be registered before the router is used.
func New(defaultAlias string, opts ...Option) (*Router, error) {
	if defaultAlias == "" {
		return nil, ErrMissingDefaultAlias
	}
	r := &Router{
		pools:        make(map[string]*pgxpool.Pool),
		defaultAlias: defaultAlias,
		log:          slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Register adds a physical database under the given alias.
// Registration happens during startup wiring only; it is not safe to call
// concurrently with Select or Pool.
func (r *Router) Register(alias string, pool *pgxpool.Pool) error {
	if alias == "" {
		return ErrMissingAlias
	}
	if _, exists := r.pools[alias]; exists {
		return fmt.Errorf("%w: %q", ErrAliasAlreadyRegistered, alias)
	}
	r.pools[alias] = pool
	return nil
}

// Select returns the database alias for the current context: the active
// tenant's alias when one is installed, the default alias otherwise. An
// installed alias that is not a configured database is a fatal
// misconfiguration - the operation is rejected and logged as a security
// event, never silently defaulted.
func (r *Router) Select(ctx context.Context) (string, error) {
	alias, ok := tenant.DBAliasFromContext(ctx)
	if !ok {
		return r.defaultAlias, nil
	}
	if _, configured := r.pools[alias]; !configured {
		r.log.ErrorContext(ctx, "tenant context references unconfigured database",
			logger.DBAlias(alias),
			logger.SecurityEvent(),
		)
		return "", fmt.Errorf("%w: %q", ErrInvalidDatabaseAlias, alias)
	}
	return alias, nil
}

// Pool returns the physical pool for the current context, applying the same
// selection rules as Select.
func (r *Router) Pool(ctx context.Context) (*pgxpool.Pool, error) {
	alias, err := r.Select(ctx)
	if err != nil {
		return nil, err
	}
	pool, ok := r.pools[alias]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDatabaseAlias, alias)
	}
	return pool, nil
}

// DB returns the scoped query-execution capability for the current context.
func (r *Router) DB(ctx context.Context) (DB, error) {
	return r.Pool(ctx)
}

// PoolByAlias returns the pool registered under an alias directly, bypassing
// tenant context. For startup wiring and migration tooling only; request
// handlers must go through Pool or DB.
func (r *Router) PoolByAlias(alias string) (*pgxpool.Pool, bool) {
	pool, ok := r.pools[alias]
	return pool, ok
}

// Has reports whether an alias is a configured database.
func (r *Router) Has(alias string) bool {
	_, ok := r.pools[alias]
	return ok
}

// DefaultAlias returns the alias used when no tenant context is installed.
func (r *Router) DefaultAlias() string {
	return r.defaultAlias
}

// Aliases returns all configured database aliases.
func (r *Router) Aliases() []string {
	aliases := make([]string, 0, len(r.pools))
	for alias := range r.pools {
		aliases = append(aliases, alias)
	}
	return aliases
}

// Close closes all registered pools.
func (r *Router) Close() {
	for _, pool := range r.pools {
		if pool != nil {
			pool.Close()
		}
	}
}
