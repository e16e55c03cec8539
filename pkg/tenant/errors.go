package tenant

import "errors"

var (
	// ErrTenantNotFound is returned when no resolution strategy matched.
	ErrTenantNotFound = errors.New("tenant not found")

	// ErrTenantSuspended is returned when a tenant resolved but is
	// administratively suspended. Never collapsed into ErrTenantNotFound.
	ErrTenantSuspended = errors.New("tenant is suspended")

	// ErrInvalidIdentifier is returned when an external identifier is malformed.
	ErrInvalidIdentifier = errors.New("invalid tenant identifier")

	// ErrNoTenantInContext is returned when a required tenant is missing from context.
	ErrNoTenantInContext = errors.New("no tenant in context")

	// ErrScopeOccupied is returned when pushing into a scope that already
	// holds a tenant. Indicates a context leak from a previous unit of work.
	ErrScopeOccupied = errors.New("tenant scope already occupied")

	// ErrInvalidResolutionMode is returned for an unknown resolution mode.
	ErrInvalidResolutionMode = errors.New("invalid tenant resolution mode")

	// ErrMissingSigningKey is returned when the token source is configured
	// without a credential verification key.
	ErrMissingSigningKey = errors.New("token source requires a signing key")
)
