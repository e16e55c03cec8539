package migration

import "errors"

var (
	// ErrMissingLockStore is returned when the guard is built without a lock store.
	ErrMissingLockStore = errors.New("migration guard requires a lock store")

	// ErrAllowlistUnknownDatabase is returned when the allowlist names a
	// database that is not configured.
	ErrAllowlistUnknownDatabase = errors.New("migration allowlist references unknown database")

	// ErrLockStoreUnavailable wraps transient lock store failures. The guard
	// treats it as a denial.
	ErrLockStoreUnavailable = errors.New("migration lock store unavailable")

	// ErrMigrationDenied is returned by the runner when the guard refuses a
	// (database, component) pair.
	ErrMigrationDenied = errors.New("migration denied")

	// ErrFailedToApplyMigrations wraps goose failures during an allowed migration.
	ErrFailedToApplyMigrations = errors.New("failed to apply migrations")

	// ErrMigrationPathNotProvided is returned when no migrations directory is configured.
	ErrMigrationPathNotProvided = errors.New("migration path not provided")

	// ErrMigrationsDirNotFound is returned when the migrations directory does not exist.
	ErrMigrationsDirNotFound = errors.New("migrations directory not found")
)
