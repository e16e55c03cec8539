package startup

import "errors"

var (
	// ErrUnroutableAlias indicates a registry entry references a database
	// alias with no registered connection pool.
	ErrUnroutableAlias = errors.New("registry references an unregistered database alias")

	// ErrDefaultAliasMissing indicates the router's default alias has no
	// registered connection pool.
	ErrDefaultAliasMissing = errors.New("default database alias is not registered")

	// ErrAllowlistMismatch indicates the migration allowlist names a database
	// that is not registered with the router.
	ErrAllowlistMismatch = errors.New("migration allowlist references an unregistered database")

	// ErrProbeFailed indicates a dependency probe (cache backend, lock store)
	// did not respond.
	ErrProbeFailed = errors.New("dependency probe failed")

	// ErrValidationFailed wraps all individual failures of a validation run.
	ErrValidationFailed = errors.New("startup validation failed")
)
