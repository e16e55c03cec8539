package tenant

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/dmitrymomot/tenantkit/pkg/registry"
)

// Mode selects which resolution strategies run, and in which order.
type Mode string

const (
	// ModeHostname matches the request host against registered hostnames.
	ModeHostname Mode = "hostname"
	// ModePath matches a leading /t/{slug}/ path segment.
	ModePath Mode = "path"
	// ModeHeader reads an explicit tenant header. Trust it only behind auth.
	ModeHeader Mode = "header"
	// ModeToken reads a tenant claim from a verified bearer token.
	ModeToken Mode = "token"
	// ModeAuto tries hostname, path, header, then token until one matches.
	ModeAuto Mode = "auto"
)

// Config carries resolver settings loadable from the environment.
type Config struct {
	Mode          Mode          `env:"TENANT_RESOLUTION_MODE" envDefault:"hostname"` // Mode is the resolution strategy: hostname|path|header|token|auto.
	Strict        bool          `env:"TENANT_STRICT_MODE" envDefault:"true"`         // Strict rejects requests with no resolvable tenant. Production default.
	DefaultTenant string        `env:"TENANT_DEFAULT"`                               // DefaultTenant is the permissive-mode fallback slug. Development only.
	HeaderName    string        `env:"TENANT_HEADER" envDefault:"X-Tenant-ID"`       // HeaderName is the header carrying the tenant identifier.
	CacheTTL      time.Duration `env:"TENANT_RESOLUTION_CACHE_TTL" envDefault:"5m"`  // CacheTTL bounds how long a resolved tenant is cached.
	CacheSize     int           `env:"TENANT_RESOLUTION_CACHE_SIZE" envDefault:"1000"`
}

// Resolver turns inbound requests into tenant contexts using the configured
// strategy chain and the tenant registry.
type Resolver struct {
	registry      *registry.Registry
	sources       []Source
	strict        bool
	defaultTenant string
	cache         *resolutionCache
	log           *slog.Logger
}

type resolverConfig struct {
	mode          Mode
	strict        bool
	defaultTenant string
	headerName    string
	signingKey    []byte
	cacheTTL      time.Duration
	cacheSize     int
	cacheDisabled bool
	log           *slog.Logger
}

// ResolverOption configures the resolver.
type ResolverOption func(*resolverConfig)

// WithMode sets the resolution strategy.
func WithMode(m Mode) ResolverOption {
	return func(c *resolverConfig) { c.mode = m }
}

// WithPermissiveMode disables strict rejection of unresolved tenants and
// falls back to the given default tenant slug (or no tenant when empty).
// Intended for local development only; strict mode is the production default.
func WithPermissiveMode(defaultTenant string) ResolverOption {
	return func(c *resolverConfig) {
		c.strict = false
		c.defaultTenant = defaultTenant
	}
}

// WithHeaderName sets the header read by the header source.
func WithHeaderName(name string) ResolverOption {
	return func(c *resolverConfig) { c.headerName = name }
}

// WithSigningKey enables the token source with the given HMAC key.
func WithSigningKey(key []byte) ResolverOption {
	return func(c *resolverConfig) { c.signingKey = key }
}

// WithResolutionCache bounds the resolution cache. A non-positive TTL
// disables caching.
func WithResolutionCache(ttl time.Duration, size int) ResolverOption {
	return func(c *resolverConfig) {
		if ttl <= 0 {
			c.cacheDisabled = true
			return
		}
		c.cacheTTL = ttl
		c.cacheSize = size
	}
}

// WithoutResolutionCache disables caching of resolved tenants.
func WithoutResolutionCache() ResolverOption {
	return func(c *resolverConfig) { c.cacheDisabled = true }
}

// WithResolverLogger sets the logger used for resolution security events.
func WithResolverLogger(log *slog.Logger) ResolverOption {
	return func(c *resolverConfig) {
		if log != nil {
			c.log = log
		}
	}
}

// NewResolver builds a resolver for the given registry.
func NewResolver(reg *registry.Registry, opts ...ResolverOption) (*Resolver, error) {
	cfg := &resolverConfig{
		mode:       ModeHostname,
		strict:     true,
		headerName: "X-Tenant-ID",
		cacheTTL:   5 * time.Minute,
		cacheSize:  1000,
		log:        slog.Default(),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	sources, err := buildSources(cfg)
	if err != nil {
		return nil, err
	}

	r := &Resolver{
		registry:      reg,
		sources:       sources,
		strict:        cfg.strict,
		defaultTenant: cfg.defaultTenant,
		log:           cfg.log,
	}
	if !cfg.cacheDisabled {
		r.cache = newResolutionCache(cfg.cacheSize, cfg.cacheTTL)
	}
	return r, nil
}

// NewResolverFromConfig builds a resolver from environment configuration.
func NewResolverFromConfig(reg *registry.Registry, cfg Config, opts ...ResolverOption) (*Resolver, error) {
	base := []ResolverOption{
		WithMode(cfg.Mode),
		WithHeaderName(cfg.HeaderName),
		WithResolutionCache(cfg.CacheTTL, cfg.CacheSize),
	}
	if !cfg.Strict {
		base = append(base, WithPermissiveMode(cfg.DefaultTenant))
	}
	return NewResolver(reg, append(base, opts...)...)
}

func buildSources(cfg *resolverConfig) ([]Source, error) {
	switch cfg.mode {
	case ModeHostname:
		return []Source{HostSource()}, nil
	case ModePath:
		return []Source{PathSource()}, nil
	case ModeHeader:
		return []Source{HeaderSource(cfg.headerName)}, nil
	case ModeToken:
		src, err := TokenSource(cfg.signingKey)
		if err != nil {
			return nil, err
		}
		return []Source{src}, nil
	case ModeAuto:
		sources := []Source{HostSource(), PathSource(), HeaderSource(cfg.headerName)}
		// Token source joins the chain only when a verification key exists.
		if len(cfg.signingKey) > 0 {
			src, err := TokenSource(cfg.signingKey)
			if err != nil {
				return nil, err
			}
			sources = append(sources, src)
		}
		return sources, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidResolutionMode, cfg.mode)
	}
}
