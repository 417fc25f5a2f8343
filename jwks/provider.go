// Package jwks retrieves JSON Web Key Sets for token signature
// verification. The CachingProvider is the one you will normally want:
// the JWKS endpoint is an external, fallible dependency, so fetched key
// sets are cached with a bounded lifetime and refreshed in the background
// instead of being pulled on every request.
package jwks

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwk"

	"github.com/scaffoldkit/go-rbac-middleware/internal/oidc"
)

const defaultCacheTTL = 15 * time.Minute

func applyOptions(opts []ProviderOption) (*settings, error) {
	s := &settings{
		client:   &http.Client{Timeout: 30 * time.Second},
		cacheTTL: defaultCacheTTL,
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, fmt.Errorf("invalid option: %w", err)
		}
	}

	if s.issuerURL == nil && s.jwksURI == nil {
		return nil, fmt.Errorf("either an issuer URL or a custom JWKS URI is required")
	}

	return s, nil
}

// Provider fetches the key set on every call. Use CachingProvider unless
// you have your own caching layer.
type Provider struct {
	issuerURL *url.URL
	jwksURI   *url.URL
	client    *http.Client
}

// NewProvider builds a Provider. Either WithIssuerURL or
// WithCustomJWKSURI must be given.
func NewProvider(opts ...ProviderOption) (*Provider, error) {
	s, err := applyOptions(opts)
	if err != nil {
		return nil, err
	}

	return &Provider{issuerURL: s.issuerURL, jwksURI: s.jwksURI, client: s.client}, nil
}

// KeyFunc satisfies the token.KeyProvider signature. As long as the error
// is nil the returned value is a jwk.Set.
func (p *Provider) KeyFunc(ctx context.Context) (any, error) {
	jwksURI := p.jwksURI
	if jwksURI == nil {
		endpoints, err := oidc.GetWellKnownEndpoints(ctx, p.client, *p.issuerURL)
		if err != nil {
			return nil, err
		}
		jwksURI, err = url.Parse(endpoints.JWKSURI)
		if err != nil {
			return nil, fmt.Errorf("could not parse JWKS URI from well known endpoints: %w", err)
		}
	}

	set, err := jwk.Fetch(ctx, jwksURI.String(), jwk.WithHTTPClient(p.client))
	if err != nil {
		return nil, fmt.Errorf("could not fetch JWKS: %w", err)
	}

	return set, nil
}

// CachingProvider serves the key set from an in-memory cache, refreshing
// it in the background once it passes 80% of its lifetime so that a cache
// expiry does not stall request handling. The effective lifetime honors a
// Cache-Control max-age from the endpoint when it extends the configured
// TTL, within bounds.
type CachingProvider struct {
	issuerURL *url.URL
	client    *http.Client
	ttl       time.Duration

	uriMu   sync.Mutex
	jwksURI string

	mu         sync.RWMutex
	cached     jwk.Set
	expiresAt  time.Time
	refreshAt  time.Time
	refreshing atomic.Bool
	fetchMu    sync.Mutex
}

// NewCachingProvider builds a CachingProvider. Either WithIssuerURL or
// WithCustomJWKSURI must be given; WithCacheTTL tunes the refresh
// interval.
func NewCachingProvider(opts ...ProviderOption) (*CachingProvider, error) {
	s, err := applyOptions(opts)
	if err != nil {
		return nil, err
	}

	c := &CachingProvider{
		issuerURL: s.issuerURL,
		client:    s.client,
		ttl:       s.cacheTTL,
	}
	if s.jwksURI != nil {
		c.jwksURI = s.jwksURI.String()
	}

	return c, nil
}

// KeyFunc satisfies the token.KeyProvider signature. As long as the error
// is nil the returned value is a jwk.Set. Safe for concurrent use.
func (c *CachingProvider) KeyFunc(ctx context.Context) (any, error) {
	uri, err := c.resolveURI(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now()

	c.mu.RLock()
	if c.cached != nil && now.Before(c.expiresAt) {
		set := c.cached
		stale := now.After(c.refreshAt)
		c.mu.RUnlock()

		if stale && c.refreshing.CompareAndSwap(false, true) {
			go c.backgroundRefresh(uri)
		}
		return set, nil
	}
	c.mu.RUnlock()

	// One fetch at a time; everyone else waits and reuses the result.
	c.fetchMu.Lock()
	defer c.fetchMu.Unlock()

	c.mu.RLock()
	valid := c.cached != nil && time.Now().Before(c.expiresAt)
	set := c.cached
	c.mu.RUnlock()
	if valid {
		return set, nil
	}

	set, maxAge, err := c.fetch(ctx, uri)
	if err != nil {
		return nil, fmt.Errorf("could not fetch JWKS: %w", err)
	}

	c.store(set, maxAge)
	return set, nil
}

// resolveURI performs OIDC discovery and caches the resulting URI. The
// discovery endpoint is a fallible external dependency, so a failure is
// not sticky: the next call tries again.
func (c *CachingProvider) resolveURI(ctx context.Context) (string, error) {
	c.uriMu.Lock()
	defer c.uriMu.Unlock()

	if c.jwksURI != "" {
		return c.jwksURI, nil
	}

	endpoints, err := oidc.GetWellKnownEndpoints(ctx, c.client, *c.issuerURL)
	if err != nil {
		return "", fmt.Errorf("failed to discover JWKS URI: %w", err)
	}

	c.jwksURI = endpoints.JWKSURI
	return c.jwksURI, nil
}

func (c *CachingProvider) store(set jwk.Set, maxAge time.Duration) {
	ttl := c.ttl
	if maxAge > ttl {
		ttl = maxAge
	}

	now := time.Now()
	c.mu.Lock()
	c.cached = set
	c.expiresAt = now.Add(ttl)
	c.refreshAt = now.Add(ttl * 4 / 5)
	c.mu.Unlock()
}

func (c *CachingProvider) backgroundRefresh(uri string) {
	defer c.refreshing.Store(false)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	set, maxAge, err := c.fetch(ctx, uri)
	if err != nil {
		// Keep serving the cached set until it actually expires.
		return
	}

	c.store(set, maxAge)
}

// fetch retrieves and parses the key set, returning the Cache-Control
// max-age when the endpoint supplies a reasonable one.
func (c *CachingProvider) fetch(ctx context.Context, uri string) (jwk.Set, time.Duration, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, 0, fmt.Errorf("request returned status %d", resp.StatusCode)
	}

	// 1MB is generous for a key set.
	set, err := jwk.ParseReader(io.LimitReader(resp.Body, 1*1024*1024))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to parse JWKS: %w", err)
	}

	return set, parseMaxAge(resp.Header.Get("Cache-Control")), nil
}

// parseMaxAge extracts max-age from a Cache-Control header. Values outside
// [1s, 7d] are ignored so the endpoint can neither force rapid refetching
// nor pin keys indefinitely.
func parseMaxAge(cacheControl string) time.Duration {
	const (
		prefix = "max-age="
		minAge = 1 * time.Second
		maxAge = 7 * 24 * time.Hour
	)

	for _, directive := range strings.Split(cacheControl, ",") {
		directive = strings.TrimSpace(directive)
		if !strings.HasPrefix(directive, prefix) {
			continue
		}

		seconds, err := strconv.ParseInt(strings.TrimPrefix(directive, prefix), 10, 64)
		if err != nil || seconds <= 0 {
			continue
		}

		age := time.Duration(seconds) * time.Second
		if age < minAge || age > maxAge {
			return 0
		}
		return age
	}

	return 0
}
