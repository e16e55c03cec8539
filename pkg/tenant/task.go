package tenant

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dmitrymomot/tenantkit/pkg/logger"
	"github.com/dmitrymomot/tenantkit/pkg/registry"
)

// TaskFunc is the body of one background task execution.
type TaskFunc func(ctx context.Context) error

// Runner gives background tasks the same tenant lifecycle the HTTP
// middleware gives requests. The tenant identifier comes from task arguments
// or message headers instead of a request host, but the contract is
// identical: push before the body runs, clear after, on every exit path
// including task failure and panic.
type Runner struct {
	registry *registry.Registry
	log      *slog.Logger
}

// NewRunner creates a task runner bound to the tenant registry.
func NewRunner(reg *registry.Registry, log *slog.Logger) *Runner {
	if log == nil {
		log = slog.Default()
	}
	return &Runner{registry: reg, log: log}
}

// RunAs executes fn with the tenant identified by slug or numeric id
// installed in scope. Unknown identifiers fail with ErrTenantNotFound and
// suspended tenants with ErrTenantSuspended before the task body runs.
func (r *Runner) RunAs(ctx context.Context, identifier string, fn TaskFunc) error {
	tenant, ok := r.registry.Lookup(identifier)
	if !ok {
		return fmt.Errorf("%w: %q", ErrTenantNotFound, identifier)
	}
	if tenant.Suspended {
		r.log.WarnContext(ctx, "task execution attempted for suspended tenant",
			logger.TenantSlug(tenant.Slug),
			logger.SecurityEvent(),
		)
		return ErrTenantSuspended
	}

	ctx, scope := NewScope(ctx)
	if err := scope.Push(fromRegistry(tenant)); err != nil {
		return err
	}
	defer scope.Clear()

	return fn(ctx)
}

// RunUnscoped executes fn with an installed but empty scope, for
// control-plane tasks that operate on the default database. The empty scope
// still lets monitoring verify no tenant leaked into the task.
func (r *Runner) RunUnscoped(ctx context.Context, fn TaskFunc) error {
	ctx, scope := NewScope(ctx)
	defer scope.Clear()
	return fn(ctx)
}
