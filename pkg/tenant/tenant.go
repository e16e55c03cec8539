package tenant

import "github.com/dmitrymomot/tenantkit/pkg/registry"

// Context is the request-scoped tenant identity: who the tenant is and which
// physical database its data lives in. It is a value object produced by the
// resolver and is immutable for the lifetime of one unit of work; it is never
// persisted.
type Context struct {
	ID      int64  `json:"id"`
	Slug    string `json:"slug"`
	Name    string `json:"name"`
	DBAlias string `json:"db_alias"`
}

// Valid reports whether the context identifies a tenant. The zero Context
// means "no tenant" (shared/control-plane access).
func (c Context) Valid() bool {
	return c.DBAlias != ""
}

// fromRegistry converts a registry record into a request-scoped context.
// The Suspended flag deliberately does not carry over: suspended tenants are
// rejected during resolution and must never reach a live context.
func fromRegistry(t *registry.Tenant) Context {
	return Context{
		ID:      t.ID,
		Slug:    t.Slug,
		Name:    t.Name,
		DBAlias: t.DBAlias,
	}
}
