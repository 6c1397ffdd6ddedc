// Package cors decides, per request, whether a cross-origin browser client
// may receive a response, and which headers communicate that permission.
//
// The package is purely functional over its inputs: a Policy is immutable
// once built, evaluation performs no I/O and takes no locks, and the same
// (policy, request) pair always yields the same Decision. Hot reload of
// configuration is handled by swapping whole Policy snapshots through a
// Store, never by mutating a Policy in place.
package cors

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/net/http/httpguts"
)

// ErrInvalidPolicy is returned by NewPolicy for contradictory or malformed
// configuration. It is only ever raised at construction time; evaluation
// itself cannot fail.
var ErrInvalidPolicy = errors.New("cors: invalid policy")

// Config is the validated shape handed over by the configuration loader.
// Zero values mean "unset"; see Default for the documented defaults.
type Config struct {
	AllowAnyOrigin   bool
	Origins          []string
	AllowCredentials bool
	AllowHeaders     []string
	Methods          []string
	ExposeHeaders    []string
	MaxAge           int // preflight cache duration in seconds, 0 = not advertised
}

// Default returns the documented default configuration: a single trusted
// origin, Content-Type as the only extra request header, and the three
// methods a browser needs for plain GraphQL-style traffic.
func Default() Config {
	return Config{
		Origins:      []string{"https://studio.apollographql.com"},
		AllowHeaders: []string{"Content-Type"},
		Methods:      []string{"GET", "POST", "OPTIONS"},
	}
}

// Policy is the immutable, validated form of a Config. It is shared
// read-only across all concurrently executing request handlers and must
// never be mutated after NewPolicy returns.
type Policy struct {
	allowAnyOrigin   bool
	allowCredentials bool
	maxAge           int

	origins map[string]struct{}

	// Configured order is preserved for emission; the sets carry the
	// normalized forms used for membership checks.
	allowHeaders   []string
	allowHeaderSet map[string]struct{} // keys byte-lowercased
	methods        []string
	methodSet      map[string]struct{}
	exposeHeaders  []string

	// Joined header values are precomputed so evaluation allocates nothing.
	allowHeadersJoined  string
	methodsJoined       string
	exposeHeadersJoined string
	maxAgeValue         string
}

// NewPolicy validates cfg and builds an immutable Policy from it.
//
// The combination allow_credentials=true with allow_any_origin=true is
// legal: it forces echo mode, in which the request's Origin value is
// reflected back instead of the literal "*". Emitting "*" alongside
// Access-Control-Allow-Credentials: true would over-permit credentialed
// access, so echo mode is not optional there.
func NewPolicy(cfg Config) (*Policy, error) {
	p := &Policy{
		allowAnyOrigin:   cfg.AllowAnyOrigin,
		allowCredentials: cfg.AllowCredentials,
		maxAge:           cfg.MaxAge,
		origins:          make(map[string]struct{}, len(cfg.Origins)),
		allowHeaderSet:   make(map[string]struct{}, len(cfg.AllowHeaders)),
		methodSet:        make(map[string]struct{}, len(cfg.Methods)),
	}

	if cfg.MaxAge < 0 {
		return nil, fmt.Errorf("%w: negative max_age %d", ErrInvalidPolicy, cfg.MaxAge)
	}

	for _, o := range cfg.Origins {
		o = strings.TrimSpace(o)
		if o == "" {
			continue
		}
		if o == "*" {
			return nil, fmt.Errorf("%w: origin %q: use allow_any_origin instead of a wildcard entry", ErrInvalidPolicy, o)
		}
		// Origins are opaque tokens: no normalization, exact bytes only.
		p.origins[o] = struct{}{}
	}

	for _, h := range cfg.AllowHeaders {
		h = strings.TrimSpace(h)
		if h == "" {
			continue
		}
		if !httpguts.ValidHeaderFieldName(h) {
			return nil, fmt.Errorf("%w: invalid allow_headers entry %q", ErrInvalidPolicy, h)
		}
		if _, dup := p.allowHeaderSet[byteLowercase(h)]; dup {
			continue
		}
		p.allowHeaderSet[byteLowercase(h)] = struct{}{}
		p.allowHeaders = append(p.allowHeaders, h)
	}

	for _, m := range cfg.Methods {
		m = strings.TrimSpace(m)
		if m == "" {
			continue
		}
		// Method tokens share the header-name production.
		if !httpguts.ValidHeaderFieldName(m) {
			return nil, fmt.Errorf("%w: invalid methods entry %q", ErrInvalidPolicy, m)
		}
		m = strings.ToUpper(m)
		if _, dup := p.methodSet[m]; dup {
			continue
		}
		p.methodSet[m] = struct{}{}
		p.methods = append(p.methods, m)
	}
	if len(p.methods) == 0 {
		return nil, fmt.Errorf("%w: no methods configured", ErrInvalidPolicy)
	}

	for _, h := range cfg.ExposeHeaders {
		h = strings.TrimSpace(h)
		if h == "" {
			continue
		}
		if !httpguts.ValidHeaderFieldName(h) {
			return nil, fmt.Errorf("%w: invalid expose_headers entry %q", ErrInvalidPolicy, h)
		}
		p.exposeHeaders = append(p.exposeHeaders, h)
	}

	p.allowHeadersJoined = strings.Join(p.allowHeaders, ", ")
	p.methodsJoined = strings.Join(p.methods, ", ")
	p.exposeHeadersJoined = strings.Join(p.exposeHeaders, ", ")
	if p.maxAge > 0 {
		p.maxAgeValue = strconv.Itoa(p.maxAge)
	}

	return p, nil
}

// AllowCredentials reports whether the policy permits credentialed requests.
func (p *Policy) AllowCredentials() bool { return p.allowCredentials }

// effectiveOrigin returns the value to emit as Access-Control-Allow-Origin
// for an allowed request from origin. The literal "*" is only ever emitted
// for credential-less any-origin policies; otherwise the origin is echoed.
func (p *Policy) effectiveOrigin(origin string) string {
	if p.allowAnyOrigin && !p.allowCredentials {
		return "*"
	}
	return origin
}

func (p *Policy) methodAllowed(method string) bool {
	_, ok := p.methodSet[method]
	return ok
}

func (p *Policy) headerAllowed(name string) bool {
	_, ok := p.allowHeaderSet[byteLowercase(name)]
	return ok
}

// byteLowercase lowercases ASCII letters only. Header-name comparison is
// byte-case-insensitive, unlike origin comparison, which is exact.
func byteLowercase(s string) string {
	return strings.Map(func(r rune) rune {
		if 'A' <= r && r <= 'Z' {
			return r + ('a' - 'A')
		}
		return r
	}, s)
}
