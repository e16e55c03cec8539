package migration

import "time"

type Config struct {
	Allowlist       []string      `env:"MIGRATION_ALLOWLIST" envSeparator:","`                 // Allowlist is the set of database aliases migrations may touch.
	LockTTL         time.Duration `env:"MIGRATION_LOCK_TTL" envDefault:"15m"`                  // LockTTL bounds how long a crashed migration blocks the next one.
	MigrationsPath  string        `env:"MIGRATIONS_PATH" envDefault:"internal/db/migrations"`  // MigrationsPath is the path to the goose migrations directory.
	MigrationsTable string        `env:"MIGRATIONS_TABLE" envDefault:"schema_migrations"`      // MigrationsTable is the goose version table name.
}
