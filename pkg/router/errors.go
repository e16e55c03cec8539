package router

import "errors"

var (
	// ErrMissingDefaultAlias is returned when the router is built without a default database.
	ErrMissingDefaultAlias = errors.New("router requires a default database alias")

	// ErrMissingAlias is returned when registering a database without an alias.
	ErrMissingAlias = errors.New("database alias cannot be empty")

	// ErrAliasAlreadyRegistered is returned when an alias is registered twice.
	ErrAliasAlreadyRegistered = errors.New("database alias already registered")

	// ErrInvalidDatabaseAlias is returned when a context alias has no
	// configured database. Always fatal for the operation; never defaulted.
	ErrInvalidDatabaseAlias = errors.New("database alias is not configured")
)
