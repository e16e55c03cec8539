package registry

import "errors"

var (
	// ErrMissingSlug is returned when a registry entry has no slug.
	ErrMissingSlug = errors.New("registry entry is missing a tenant slug")

	// ErrMissingDBAlias is returned when a registry entry has no database alias.
	ErrMissingDBAlias = errors.New("registry entry is missing a database alias")

	// ErrDuplicateEntry is returned when two entries share a slug, id or hostname.
	ErrDuplicateEntry = errors.New("duplicate registry entry")

	// ErrFailedToLoadRegistry is returned when the mapping file cannot be read or parsed.
	ErrFailedToLoadRegistry = errors.New("failed to load tenant registry")
)
