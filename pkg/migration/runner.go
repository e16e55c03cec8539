package migration

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// PoolSource supplies physical pools per database alias.
// *router.Router satisfies it.
type PoolSource interface {
	Aliases() []string
	PoolByAlias(alias string) (*pgxpool.Pool, bool)
}

// Runner applies goose migrations to the databases the guard permits.
// It is deploy-time tooling, never part of the request path.
type Runner struct {
	guard *Guard
	path  string
	table string
	log   *slog.Logger
}

// NewRunner creates a migration runner.
func NewRunner(guard *Guard, cfg Config, log *slog.Logger) *Runner {
	if log == nil {
		log = slog.Default()
	}
	return &Runner{
		guard: guard,
		path:  cfg.MigrationsPath,
		table: cfg.MigrationsTable,
		log:   log,
	}
}

// Apply runs pending migrations against one database, if the guard allows
// it. The migration lock is held for the duration and released afterward;
// a crash mid-migration leaves the lock to expire via its TTL.
func (r *Runner) Apply(ctx context.Context, dbAlias, component string, pool *pgxpool.Pool) error {
	if r.path == "" {
		return errors.Join(ErrFailedToApplyMigrations, ErrMigrationPathNotProvided)
	}
	if _, err := os.Stat(r.path); err != nil {
		if os.IsNotExist(err) {
			return errors.Join(ErrMigrationsDirNotFound, err)
		}
		return errors.Join(ErrFailedToApplyMigrations, err)
	}

	if !r.guard.Allow(ctx, dbAlias, component) {
		return fmt.Errorf("%w: database %q component %q", ErrMigrationDenied, dbAlias, component)
	}
	defer func() {
		if err := r.guard.Release(ctx, dbAlias, component); err != nil {
			r.log.ErrorContext(ctx, "failed to release migration lock",
				slog.String("db_alias", dbAlias),
				slog.String("component", component),
				slog.Any("error", err),
			)
		}
	}()

	// Bridge the pgx pool to the database/sql interface goose expects.
	db := stdlib.OpenDBFromPool(pool)
	defer func(db *sql.DB) {
		if err := db.Close(); err != nil {
			r.log.ErrorContext(ctx, "failed to close migration db handle", slog.Any("error", err))
		}
	}(db)

	goose.SetLogger(newGooseSlogAdapter(ctx, r.log))
	if r.table != "" {
		goose.SetTableName(r.table)
	}
	if err := goose.SetDialect("postgres"); err != nil {
		return errors.Join(ErrFailedToApplyMigrations, err)
	}
	if err := goose.UpContext(ctx, db, r.path); err != nil {
		return errors.Join(ErrFailedToApplyMigrations, err)
	}
	return nil
}

// ApplyAll runs migrations for every configured database in sequence. Denied
// databases (not allowlisted, or locked by a concurrent deploy) are skipped
// and reported in the returned error; allowed databases still migrate.
func (r *Runner) ApplyAll(ctx context.Context, component string, pools PoolSource) error {
	var errs []error
	for _, alias := range pools.Aliases() {
		pool, ok := pools.PoolByAlias(alias)
		if !ok || pool == nil {
			continue
		}
		if err := r.Apply(ctx, alias, component, pool); err != nil {
			if errors.Is(err, ErrMigrationDenied) {
				r.log.InfoContext(ctx, "skipping database, migration not permitted",
					slog.String("db_alias", alias),
					slog.String("component", component),
				)
				continue
			}
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// gooseSlogAdapter routes goose's Printf-style output through slog.
type gooseSlogAdapter struct {
	ctx context.Context
	log *slog.Logger
}

func newGooseSlogAdapter(ctx context.Context, log *slog.Logger) goose.Logger {
	return &gooseSlogAdapter{ctx: ctx, log: log}
}

func (a *gooseSlogAdapter) Fatalf(format string, v ...any) {
	a.log.ErrorContext(a.ctx, fmt.Sprintf(format, v...))
}

func (a *gooseSlogAdapter) Printf(format string, v ...any) {
	a.log.InfoContext(a.ctx, fmt.Sprintf(format, v...))
}
