package startup

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/dmitrymomot/tenantkit/pkg/registry"
)

// DatabaseSet answers whether a database alias has a registered connection
// pool. Satisfied by *router.Router.
type DatabaseSet interface {
	Has(alias string) bool
	DefaultAlias() string
}

// Probe checks one external dependency. Probes follow the healthcheck
// function shape so cache and lock store healthchecks plug in directly.
type Probe func(context.Context) error

// Validator cross-checks the tenant configuration before the process starts
// serving: every database alias the registry references must be routable,
// the default alias must be registered, the migration allowlist must not
// name unknown databases, and every declared dependency must respond.
//
// It collects all failures in one run instead of stopping at the first, so
// a misconfigured deployment surfaces every problem in a single boot attempt.
type Validator struct {
	registry  *registry.Registry
	databases DatabaseSet
	allowlist []string
	probes    map[string]Probe
	log       *slog.Logger
}

// Option configures the validator.
type Option func(*Validator)

// WithAllowlist declares the migration allowlist to verify against the
// registered databases.
func WithAllowlist(aliases []string) Option {
	return func(v *Validator) {
		v.allowlist = aliases
	}
}

// WithProbe registers a named dependency probe, e.g. the cache backend ping
// or the migration lock store.
func WithProbe(name string, probe Probe) Option {
	return func(v *Validator) {
		if probe != nil {
			v.probes[name] = probe
		}
	}
}

// WithLogger sets the logger for validation results.
func WithLogger(log *slog.Logger) Option {
	return func(v *Validator) {
		if log != nil {
			v.log = log
		}
	}
}

// NewValidator creates a validator over the given registry and database set.
func NewValidator(reg *registry.Registry, databases DatabaseSet, opts ...Option) *Validator {
	v := &Validator{
		registry:  reg,
		databases: databases,
		probes:    make(map[string]Probe),
		log:       slog.Default(),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Validate runs all checks and returns every failure joined under
// ErrValidationFailed, or nil when the configuration is consistent.
// Call it once at boot, before accepting traffic, and treat any error as
// fatal: a registry entry pointing at an unroutable database means some
// tenant's requests would fail or, worse, fall through to the wrong pool.
func (v *Validator) Validate(ctx context.Context) error {
	var failures []error

	for _, alias := range v.registry.Aliases() {
		if !v.databases.Has(alias) {
			failures = append(failures,
				fmt.Errorf("%w: %q", ErrUnroutableAlias, alias))
		}
	}

	if def := v.databases.DefaultAlias(); def != "" && !v.databases.Has(def) {
		failures = append(failures,
			fmt.Errorf("%w: %q", ErrDefaultAliasMissing, def))
	}

	for _, alias := range v.allowlist {
		if !v.databases.Has(alias) {
			failures = append(failures,
				fmt.Errorf("%w: %q", ErrAllowlistMismatch, alias))
		}
	}

	for _, name := range v.probeNames() {
		if err := v.probes[name](ctx); err != nil {
			failures = append(failures,
				fmt.Errorf("%w: %s: %w", ErrProbeFailed, name, err))
		}
	}

	if len(failures) > 0 {
		err := errors.Join(append([]error{ErrValidationFailed}, failures...)...)
		v.log.ErrorContext(ctx, "startup validation failed",
			slog.Int("failures", len(failures)),
			slog.Any("error", err),
		)
		return err
	}

	v.log.InfoContext(ctx, "startup validation passed",
		slog.Int("tenants", v.registry.Len()),
		slog.Int("databases", len(v.registry.Aliases())),
	)
	return nil
}

// probeNames returns probe names in stable order so repeated failing runs
// log identically.
func (v *Validator) probeNames() []string {
	names := make([]string, 0, len(v.probes))
	for name := range v.probes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
