// Package oidc fetches OpenID Connect discovery metadata so the jwks
// package can locate an issuer's published key set.
package oidc

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
)

// WellKnownEndpoints holds the subset of the discovery document we need.
type WellKnownEndpoints struct {
	Issuer  string `json:"issuer"`
	JWKSURI string `json:"jwks_uri"`
}

// maxMetadataSize bounds the discovery response body. Discovery documents
// are small; anything larger is suspect.
const maxMetadataSize = 1 * 1024 * 1024

// GetWellKnownEndpoints fetches the .well-known/openid-configuration
// document for the given issuer URL. The issuer embedded in the metadata
// must match the requested issuer, which guards against a misconfigured or
// hostile endpoint serving another issuer's keys.
func GetWellKnownEndpoints(ctx context.Context, client *http.Client, issuerURL url.URL) (*WellKnownEndpoints, error) {
	expectedIssuer := issuerURL.String()
	issuerURL.Path = path.Join(issuerURL.Path, ".well-known/openid-configuration")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, issuerURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("could not build request for well known endpoints: %w", err)
	}

	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("could not get well known endpoints from %s: %w", issuerURL.String(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("well known endpoints request returned status %d", resp.StatusCode)
	}

	var endpoints WellKnownEndpoints
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxMetadataSize)).Decode(&endpoints); err != nil {
		return nil, fmt.Errorf("could not decode well known endpoints: %w", err)
	}

	if endpoints.Issuer != "" && !issuerMatches(endpoints.Issuer, expectedIssuer) {
		return nil, fmt.Errorf("metadata issuer %q does not match expected issuer %q", endpoints.Issuer, expectedIssuer)
	}

	if endpoints.JWKSURI == "" {
		return nil, fmt.Errorf("well known endpoints document has no jwks_uri")
	}

	return &endpoints, nil
}

// issuerMatches compares issuers while tolerating a single trailing slash,
// which providers are inconsistent about.
func issuerMatches(got, want string) bool {
	trim := func(s string) string {
		if len(s) > 0 && s[len(s)-1] == '/' {
			return s[:len(s)-1]
		}
		return s
	}
	return trim(got) == trim(want)
}
