// Package startup validates the tenant configuration once at boot.
//
// The registry, the database router and the migration allowlist are
// configured independently, so nothing stops a deployment from shipping a
// registry entry whose db_alias has no pool behind it. The validator catches
// that class of mismatch before the process accepts traffic, and probes the
// external dependencies (cache backend, lock store) while it is at it.
//
// All failures from one run are joined into a single error, so operators fix
// a broken deployment in one iteration instead of playing whack-a-mole.
//
//	v := startup.NewValidator(reg, dbRouter,
//		startup.WithAllowlist(cfg.MigrationAllowlist),
//		startup.WithProbe("cache", cache.Healthcheck()),
//	)
//	if err := v.Validate(ctx); err != nil {
//		log.Error("refusing to start", "error", err)
//		os.Exit(1)
//	}
package startup
