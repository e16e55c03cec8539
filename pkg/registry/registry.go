package registry

import (
	"net"
	"strconv"
	"strings"
)

// Tenant describes a single tenant as known to the registry: its external
// identifiers and the canonical database alias its data lives in.
type Tenant struct {
	ID        int64    `yaml:"id" json:"id"`
	Slug      string   `yaml:"slug" json:"slug"`
	Name      string   `yaml:"name" json:"name"`
	DBAlias   string   `yaml:"db_alias" json:"db_alias"`
	Hostnames []string `yaml:"hostnames" json:"hostnames"`
	Suspended bool     `yaml:"suspended" json:"suspended"`
}

// Registry maps external tenant identifiers (hostname, slug, numeric id) to
// tenant records. It is built once at process start and is read-only
// afterwards, so all lookups are safe for concurrent use without locking.
type Registry struct {
	byHost map[string]*Tenant
	bySlug map[string]*Tenant
	byID   map[int64]*Tenant
	all    []*Tenant
}

// New builds a registry from the given tenant entries.
// It rejects duplicate slugs, ids and hostnames, and entries without a
// db alias, so a misconfigured mapping table fails at startup instead of
// routing requests to the wrong database later.
func New(tenants []Tenant) (*Registry, error) {
	r := &Registry{
		byHost: make(map[string]*Tenant, len(tenants)),
		bySlug: make(map[string]*Tenant, len(tenants)),
		byID:   make(map[int64]*Tenant, len(tenants)),
		all:    make([]*Tenant, 0, len(tenants)),
	}

	for i := range tenants {
		t := tenants[i]
		if t.Slug == "" {
			return nil, ErrMissingSlug
		}
		if t.DBAlias == "" {
			return nil, ErrMissingDBAlias
		}

		slug := strings.ToLower(t.Slug)
		if _, exists := r.bySlug[slug]; exists {
			return nil, ErrDuplicateEntry
		}
		t.Slug = slug
		r.bySlug[slug] = &t

		if t.ID != 0 {
			if _, exists := r.byID[t.ID]; exists {
				return nil, ErrDuplicateEntry
			}
			r.byID[t.ID] = &t
		}

		for _, h := range t.Hostnames {
			host := strings.ToLower(strings.TrimSpace(h))
			if host == "" {
				continue
			}
			if _, exists := r.byHost[host]; exists {
				return nil, ErrDuplicateEntry
			}
			r.byHost[host] = &t
		}

		r.all = append(r.all, &t)
	}

	return r, nil
}

// LookupHost finds a tenant by request hostname. The lookup is exact and
// case-insensitive; a port suffix is stripped before matching, and a
// bracketed IPv6 literal matches its unbracketed registration.
func (r *Registry) LookupHost(host string) (*Tenant, bool) {
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	} else {
		// No port. Unwrap a bare bracketed literal like "[::1]" so it
		// matches the same entry as "[::1]:8080" would.
		host = strings.Trim(host, "[]")
	}
	t, ok := r.byHost[strings.ToLower(host)]
	return t, ok
}

// LookupSlug finds a tenant by its slug, case-insensitively.
func (r *Registry) LookupSlug(slug string) (*Tenant, bool) {
	t, ok := r.bySlug[strings.ToLower(slug)]
	return t, ok
}

// LookupID finds a tenant by its numeric id.
func (r *Registry) LookupID(id int64) (*Tenant, bool) {
	t, ok := r.byID[id]
	return t, ok
}

// Lookup resolves any external identifier: it tries the slug map first and
// falls back to numeric id when the identifier parses as an integer.
func (r *Registry) Lookup(identifier string) (*Tenant, bool) {
	if t, ok := r.LookupSlug(identifier); ok {
		return t, true
	}
	if id, err := strconv.ParseInt(identifier, 10, 64); err == nil {
		return r.LookupID(id)
	}
	return nil, false
}

// Aliases returns the set of database aliases referenced by any tenant.
// Each alias appears once regardless of how many tenants share it.
func (r *Registry) Aliases() []string {
	seen := make(map[string]struct{}, len(r.all))
	aliases := make([]string, 0, len(r.all))
	for _, t := range r.all {
		if _, ok := seen[t.DBAlias]; ok {
			continue
		}
		seen[t.DBAlias] = struct{}{}
		aliases = append(aliases, t.DBAlias)
	}
	return aliases
}

// Tenants returns all registered tenants in load order.
func (r *Registry) Tenants() []*Tenant {
	return r.all
}

// Len returns the number of registered tenants.
func (r *Registry) Len() int {
	return len(r.all)
}
