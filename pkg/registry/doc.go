// Package registry holds the static mapping from external tenant identifiers
// to physical database aliases.
//
// The registry is the single source of truth for which tenants exist, which
// hostnames and slugs they answer to, and which database alias their data
// lives in. It is constructed once at process start, either programmatically
// via New or from a YAML mapping file via LoadFile, and is immutable
// afterwards. All lookups are safe for concurrent use.
//
// # Usage
//
//	reg, err := registry.LoadFile("tenants.yaml")
//	if err != nil {
//		// fail startup
//	}
//
//	if t, ok := reg.LookupHost(r.Host); ok {
//		// route to t.DBAlias
//	}
//
// The mapping file looks like:
//
//	tenants:
//	  - id: 1
//	    slug: acme
//	    name: Acme Inc.
//	    db_alias: db_acme
//	    hostnames: [acme.example.com]
//	  - id: 2
//	    slug: globex
//	    db_alias: db_globex
//	    hostnames: [globex.example.com]
//	    suspended: true
//
// Suspended tenants stay in the registry so resolution can distinguish
// "unknown tenant" from "known but suspended" - the two must never be
// conflated, a suspended tenant is a security-relevant rejection.
package registry
