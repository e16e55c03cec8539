// Package router selects the physical database for the active tenant.
//
// The router owns one pgx pool per configured database alias. On every data
// access it reads the tenant context installed by the tenant middleware and
// hands back the matching pool; with no tenant installed it falls back to
// the configured default database, which holds shared control-plane data.
//
// A context alias with no configured database is treated as a fatal
// misconfiguration: the operation is rejected and logged as a security
// event. Silently defaulting would turn a wiring bug into a cross-tenant
// data leak.
//
// # Usage
//
//	rtr, _ := router.New("db_default")
//	rtr.Register("db_default", defaultPool)
//	rtr.Register("db_acme", acmePool)
//
//	// inside a request handler, behind tenant.Middleware:
//	db, err := rtr.DB(r.Context())
//	if err != nil {
//		// reject the operation
//	}
//	rows, err := db.Query(r.Context(), "SELECT ...")
//
// Objects loaded through the same context always belong to the same physical
// database, so cross-object references need no per-object checks; isolation
// is enforced by which database was selected, not by inspecting rows.
package router
