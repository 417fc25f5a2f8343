package jwks

import (
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// settings collects the configuration shared by Provider and
// CachingProvider so both constructors accept the same options.
type settings struct {
	issuerURL *url.URL
	jwksURI   *url.URL
	client    *http.Client
	cacheTTL  time.Duration
}

// ProviderOption configures a Provider or CachingProvider.
type ProviderOption func(*settings) error

// WithIssuerURL sets the OIDC issuer whose discovery document names the
// JWKS endpoint. Required unless WithCustomJWKSURI is given.
func WithIssuerURL(issuerURL *url.URL) ProviderOption {
	return func(s *settings) error {
		if issuerURL == nil {
			return fmt.Errorf("issuer URL cannot be nil")
		}
		s.issuerURL = issuerURL
		return nil
	}
}

// WithCustomJWKSURI sets the JWKS endpoint directly, skipping OIDC
// discovery entirely.
func WithCustomJWKSURI(jwksURI *url.URL) ProviderOption {
	return func(s *settings) error {
		if jwksURI == nil {
			return fmt.Errorf("JWKS URI cannot be nil")
		}
		s.jwksURI = jwksURI
		return nil
	}
}

// WithHTTPClient sets the HTTP client used for discovery and key fetches.
func WithHTTPClient(client *http.Client) ProviderOption {
	return func(s *settings) error {
		if client == nil {
			return fmt.Errorf("http client cannot be nil")
		}
		s.client = client
		return nil
	}
}

// WithCacheTTL sets how long a fetched key set is served from cache
// before it must be refreshed. Only meaningful for CachingProvider.
//
// Default: 15 minutes.
func WithCacheTTL(ttl time.Duration) ProviderOption {
	return func(s *settings) error {
		if ttl <= 0 {
			return fmt.Errorf("cache TTL must be positive")
		}
		s.cacheTTL = ttl
		return nil
	}
}
