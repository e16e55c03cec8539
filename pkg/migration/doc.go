// Package migration authorizes and applies schema migrations across the
// fleet of physical databases.
//
// The Guard answers one question: may component X migrate database Y right
// now. The decision is short-circuiting and fail-closed - unknown database,
// allowlist miss, a migration already in flight, or a lock-store failure all
// deny. The allowlist is a strict subset of configured databases, so
// per-tenant databases are excluded from migrations unless explicitly opted
// in.
//
// Locks live in the shared Redis backend under one key per (database,
// component) pair, acquired with SET NX and a server-side TTL. The TTL is
// the only recovery path for a migration that crashed mid-flight: once it
// elapses the lock is reclaimable and the next deploy proceeds. Two
// concurrent Allow calls for the same pair cannot both succeed, acquisition
// is a single atomic operation.
//
// # Usage
//
//	locks := migration.NewRedisLockStore(redisClient)
//	guard, err := migration.NewGuard(rtr, cfg.Allowlist, locks, cfg.LockTTL)
//
//	runner := migration.NewRunner(guard, cfg, log)
//	if err := runner.ApplyAll(ctx, "core", rtr); err != nil {
//		// deploy tooling surfaces the failure; end users never see it
//	}
//
// Status exposes {IsValid, IsAllowed, IsLocked} per database for operational
// tooling, without side effects.
package migration
