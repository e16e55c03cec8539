package tenant

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v4"

	"github.com/dmitrymomot/tenantkit/pkg/logger"
	"github.com/dmitrymomot/tenantkit/pkg/registry"
)

const (
	// MaxIdentifierLength caps external identifiers to DNS label size,
	// rejecting oversized caller-supplied values early.
	MaxIdentifierLength = 63

	pathPrefixMarker = "/t/"
)

// identifierPattern ensures safe identifiers: alphanumeric start, allows hyphens.
var identifierPattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9-]*$`)

func isValidIdentifier(id string) bool {
	return id != "" && len(id) <= MaxIdentifierLength && identifierPattern.MatchString(id)
}

// Kind tells the resolver which registry index an external key belongs to.
type Kind int

const (
	// KindHost keys are request hostnames, matched exactly and case-insensitively.
	KindHost Kind = iota + 1
	// KindIdentifier keys are tenant slugs or numeric ids.
	KindIdentifier
)

// Match is one extracted external identifier.
// A zero Match means the source found nothing.
type Match struct {
	Key  string
	Kind Kind
	// StripPrefix is the leading path segment to remove from the request
	// path before further routing. Only set by the path source.
	StripPrefix string
}

// Source extracts an external tenant identifier from an HTTP request.
// Sources never consult the registry; they only read the request.
type Source func(r *http.Request) (Match, error)

// HostSource matches the request host against registered tenant hostnames.
func HostSource() Source {
	return func(req *http.Request) (Match, error) {
		host := strings.ToLower(strings.TrimSpace(req.Host))
		if host == "" {
			return Match{}, nil
		}
		return Match{Key: host, Kind: KindHost}, nil
	}
}

// PathSource matches a leading "/t/{slug}/" path segment. On a match the
// resolver reports the matched prefix so the middleware can strip it before
// the request reaches the router.
func PathSource() Source {
	return func(req *http.Request) (Match, error) {
		path := req.URL.Path
		if !strings.HasPrefix(path, pathPrefixMarker) {
			return Match{}, nil
		}
		rest := path[len(pathPrefixMarker):]
		slug, _, _ := strings.Cut(rest, "/")
		if slug == "" {
			return Match{}, nil
		}
		if !isValidIdentifier(slug) {
			return Match{}, fmt.Errorf("%w: path segment %q", ErrInvalidIdentifier, slug)
		}
		return Match{
			Key:         slug,
			Kind:        KindIdentifier,
			StripPrefix: pathPrefixMarker + slug,
		}, nil
	}
}

// HeaderSource reads a tenant slug or numeric id from an HTTP header.
// Defaults to "X-Tenant-ID" if headerName is empty. Only deploy this source
// behind authentication; the header is caller-controlled.
func HeaderSource(headerName string) Source {
	if headerName == "" {
		headerName = "X-Tenant-ID"
	}
	return func(req *http.Request) (Match, error) {
		value := strings.TrimSpace(req.Header.Get(headerName))
		if value == "" {
			return Match{}, nil
		}
		if !isValidIdentifier(value) {
			return Match{}, fmt.Errorf("%w: header value %q", ErrInvalidIdentifier, value)
		}
		return Match{Key: value, Kind: KindIdentifier}, nil
	}
}

// TokenSource reads a tenant claim from a bearer token in the Authorization
// header. The token must verify against the given HMAC signing key; an
// unverifiable token is treated as no match, not as an error, so other
// sources in an auto chain still get a chance.
//
// Recognized claims: "tenant_slug" (string) and "tenant_id" (number).
func TokenSource(signingKey []byte) (Source, error) {
	if len(signingKey) == 0 {
		return nil, ErrMissingSigningKey
	}

	keyFunc := func(_ *jwt.Token) (any, error) { return signingKey, nil }

	return func(req *http.Request) (Match, error) {
		auth := req.Header.Get("Authorization")
		raw, found := strings.CutPrefix(auth, "Bearer ")
		if !found || raw == "" {
			return Match{}, nil
		}

		claims := jwt.MapClaims{}
		token, err := jwt.ParseWithClaims(raw, claims, keyFunc,
			jwt.WithValidMethods([]string{"HS256"}))
		if err != nil || !token.Valid {
			return Match{}, nil
		}

		if slug, ok := claims["tenant_slug"].(string); ok && slug != "" {
			if !isValidIdentifier(slug) {
				return Match{}, fmt.Errorf("%w: token claim %q", ErrInvalidIdentifier, slug)
			}
			return Match{Key: slug, Kind: KindIdentifier}, nil
		}
		if id, ok := claims["tenant_id"].(float64); ok && id > 0 {
			return Match{Key: strconv.FormatInt(int64(id), 10), Kind: KindIdentifier}, nil
		}

		return Match{}, nil
	}, nil
}

// Resolution is the outcome of resolving one request. A zero Context with a
// nil error means "no tenant" (only possible in permissive mode).
type Resolution struct {
	Context     Context
	StripPrefix string
}

// Resolve produces the tenant context for an inbound request by trying each
// configured source in order and looking the extracted key up in the
// registry. A key that extracts but does not map is skipped so later sources
// still run. Suspended tenants short-circuit with ErrTenantSuspended and a
// security-event log entry. A malformed identifier that no later source
// recovers from is reported as ErrInvalidIdentifier in strict mode, so
// callers can answer 400 instead of 403.
func (r *Resolver) Resolve(req *http.Request) (Resolution, error) {
	var invalidErr error
	for _, src := range r.sources {
		m, err := src(req)
		if err != nil {
			r.log.DebugContext(req.Context(), "tenant source error", slog.Any("error", err))
			if invalidErr == nil && errors.Is(err, ErrInvalidIdentifier) {
				invalidErr = err
			}
			continue
		}
		if m.Key == "" {
			continue
		}

		cacheKey := cacheKeyFor(m)
		if r.cache != nil {
			if tc, ok := r.cache.get(cacheKey); ok {
				return Resolution{Context: tc, StripPrefix: m.StripPrefix}, nil
			}
		}

		tenant, ok := r.lookup(m)
		if !ok {
			continue
		}
		if tenant.Suspended {
			r.log.WarnContext(req.Context(), "resolution attempt for suspended tenant",
				logger.TenantSlug(tenant.Slug),
				slog.String("external_key", m.Key),
				logger.SecurityEvent(),
			)
			return Resolution{}, ErrTenantSuspended
		}

		tc := fromRegistry(tenant)
		if r.cache != nil {
			r.cache.set(cacheKey, tc)
		}
		return Resolution{Context: tc, StripPrefix: m.StripPrefix}, nil
	}

	// No source yielded a registered tenant.
	if r.strict {
		if invalidErr != nil {
			return Resolution{}, invalidErr
		}
		return Resolution{}, ErrTenantNotFound
	}
	if r.defaultTenant != "" {
		if tenant, ok := r.registry.LookupSlug(r.defaultTenant); ok && !tenant.Suspended {
			return Resolution{Context: fromRegistry(tenant)}, nil
		}
	}
	return Resolution{}, nil
}

func (r *Resolver) lookup(m Match) (*registry.Tenant, bool) {
	switch m.Kind {
	case KindHost:
		return r.registry.LookupHost(m.Key)
	case KindIdentifier:
		return r.registry.Lookup(m.Key)
	default:
		return nil, false
	}
}

// cacheKeyFor derives the resolution-cache key from the raw external key
// only, prefixed with the key kind so host and identifier spaces cannot
// collide. Nothing else caller-supplied participates in the key.
func cacheKeyFor(m Match) string {
	switch m.Kind {
	case KindHost:
		return "host:" + m.Key
	default:
		return "ident:" + strings.ToLower(m.Key)
	}
}
