package tenant

import (
	"context"
	"log/slog"
	"sync"
)

// scopeKey is a private type to prevent collisions with other context keys.
type scopeKey struct{}

// Scope is the execution-scoped cell holding the active tenant context for
// one unit of work. It is a single-slot stack: at most one tenant context is
// active at a time, the slot must be empty before the unit of work starts and
// empty again before the worker goroutine is reused.
//
// The scope is owned exclusively by the unit of work it was created for. The
// mutex only guards against monitoring code observing the slot from another
// goroutine; there is no multi-writer use case.
type Scope struct {
	mu  sync.Mutex
	cur *Context
}

// NewScope derives a child context carrying a fresh, empty scope.
// The returned Scope must be cleared by the caller on every exit path.
func NewScope(ctx context.Context) (context.Context, *Scope) {
	s := &Scope{}
	return context.WithValue(ctx, scopeKey{}, s), s
}

// Push installs a tenant context into the slot.
// Returns ErrScopeOccupied if a tenant is already active: an occupied slot at
// push time means a previous unit of work leaked its context, which is
// exactly the cross-tenant bug this package exists to prevent.
func (s *Scope) Push(tc Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cur != nil {
		return ErrScopeOccupied
	}
	s.cur = &tc
	return nil
}

// Pop removes and returns the active tenant context.
// Returns false if the slot was already empty.
func (s *Scope) Pop() (Context, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cur == nil {
		return Context{}, false
	}
	tc := *s.cur
	s.cur = nil
	return tc, true
}

// Clear empties the slot unconditionally. Safe to call on an empty scope,
// which makes it suitable for deferred cleanup.
func (s *Scope) Clear() {
	s.mu.Lock()
	s.cur = nil
	s.mu.Unlock()
}

// Active returns the tenant context currently occupying the slot.
func (s *Scope) Active() (Context, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cur == nil {
		return Context{}, false
	}
	return *s.cur, true
}

// ScopeFromContext retrieves the scope installed by the middleware or task
// wrapper. Monitoring code uses this to verify the slot state; business code
// should use FromContext instead.
func ScopeFromContext(ctx context.Context) (*Scope, bool) {
	s, ok := ctx.Value(scopeKey{}).(*Scope)
	return s, ok
}

// WithContext returns a context with the given tenant installed. Intended for
// batch jobs and tests that need tenant scoping outside the request pipeline;
// the HTTP middleware and task wrapper manage scopes themselves.
func WithContext(ctx context.Context, tc Context) context.Context {
	ctx, s := NewScope(ctx)
	_ = s.Push(tc)
	return ctx
}

// FromContext retrieves the active tenant context.
// Returns false if no scope is installed or the slot is empty.
func FromContext(ctx context.Context) (Context, bool) {
	s, ok := ScopeFromContext(ctx)
	if !ok {
		return Context{}, false
	}
	return s.Active()
}

// DBAliasFromContext returns just the database alias of the active tenant.
func DBAliasFromContext(ctx context.Context) (string, bool) {
	tc, ok := FromContext(ctx)
	if !ok {
		return "", false
	}
	return tc.DBAlias, true
}

// MustFromContext retrieves the tenant context or panics. Use only in
// handlers that cannot function without a tenant.
func MustFromContext(ctx context.Context) Context {
	tc, ok := FromContext(ctx)
	if !ok {
		panic("tenant: no tenant in context")
	}
	return tc
}

// LoggerExtractor returns a ContextExtractor for the logger that enriches
// log records with the active tenant slug and database alias.
func LoggerExtractor() func(ctx context.Context) (slog.Attr, bool) {
	return func(ctx context.Context) (slog.Attr, bool) {
		tc, ok := FromContext(ctx)
		if !ok {
			return slog.Attr{}, false
		}
		return slog.Group("tenant",
			slog.String("slug", tc.Slug),
			slog.String("db_alias", tc.DBAlias),
		), true
	}
}
