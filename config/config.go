// Package config resolves the process-wide authorization settings from the
// environment. The configuration is loaded once at startup and treated as
// immutable afterwards; changing a value requires a restart.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Environment variable names recognized at runtime.
const (
	EnvEnableJWTAuth = "ENABLE_JWT_AUTH"
	EnvSecretKey     = "JWT_SECRET_KEY"
	EnvExpirationMS  = "JWT_EXPIRATION_MS"
	EnvIssuerURI     = "JWT_ISSUER_URI"
	EnvJWKSetURI     = "JWT_JWK_SET_URI"
	EnvRootUsers     = "APP_ROOT_USERS"
	EnvAdminUsers    = "APP_ADMIN_USERS"
)

// MinSecretKeyLength is the minimum accepted length, in bytes, of the
// shared HMAC signing key.
const MinSecretKeyLength = 32

// DefaultExpiration is the token lifetime used when JWT_EXPIRATION_MS
// is not set.
const DefaultExpiration = time.Hour

// ErrSecretKeyMissing is returned when JWT auth is enabled with local
// signature verification but no usable secret key is configured. This is
// a fatal startup condition, never a request-time one.
var ErrSecretKeyMissing = fmt.Errorf(
	"%s must be set to at least %d bytes when JWT auth is enabled", EnvSecretKey, MinSecretKeyLength)

// Config holds the resolved authorization settings. It is built once via
// New and never mutated; pass it by reference into the issuer, validator
// and resolver constructors.
type Config struct {
	// EnableJWTAuth mirrors the scaffold-time enableJwtAuth flag. When
	// false the application is expected to use session authentication
	// and token issuance is refused.
	EnableJWTAuth bool

	// SecretKey is the shared HMAC signing and verification key.
	SecretKey string

	// Expiration is the lifetime of issued tokens.
	Expiration time.Duration

	// IssuerURI is the optional OAuth2 issuer identity. When set it is
	// embedded in issued tokens and checked during validation.
	IssuerURI string

	// JWKSetURI is the optional public-key discovery endpoint. When set,
	// validation uses the published key set instead of the shared secret.
	JWKSetURI string

	// RootUsers and AdminUsers are the email membership lists driving
	// role assignment. Empty lists are valid.
	RootUsers  []string
	AdminUsers []string
}

// New loads the configuration from the environment, reading a .env file
// first if one is present, and validates it. Validation failures are
// returned as errors so the caller can treat them as fatal at startup.
func New() (*Config, error) {
	// Missing .env files are fine, real env vars still apply.
	_ = godotenv.Load(".env")

	enableJWTAuth, err := getEnvAsBool(EnvEnableJWTAuth, true)
	if err != nil {
		return nil, err
	}
	expiration, err := getEnvAsMillis(EnvExpirationMS, DefaultExpiration)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		EnableJWTAuth: enableJWTAuth,
		SecretKey:     os.Getenv(EnvSecretKey),
		Expiration:    expiration,
		IssuerURI:     os.Getenv(EnvIssuerURI),
		JWKSetURI:     os.Getenv(EnvJWKSetURI),
		RootUsers:     getEnvAsList(EnvRootUsers),
		AdminUsers:    getEnvAsList(EnvAdminUsers),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the configuration for fatal misconfiguration.
func (c *Config) Validate() error {
	if c.Expiration <= 0 {
		return fmt.Errorf("%s must be a positive number of milliseconds", EnvExpirationMS)
	}

	if err := validateURI(EnvIssuerURI, c.IssuerURI); err != nil {
		return err
	}
	if err := validateURI(EnvJWKSetURI, c.JWKSetURI); err != nil {
		return err
	}

	// With external key discovery the shared secret is not used, so it
	// is only required for locally verified tokens.
	if c.EnableJWTAuth && !c.ExternalValidation() && len(c.SecretKey) < MinSecretKeyLength {
		return ErrSecretKeyMissing
	}

	return nil
}

// ExternalValidation reports whether token signatures are verified against
// an externally published key set rather than the shared secret.
func (c *Config) ExternalValidation() bool {
	return c.JWKSetURI != "" || c.IssuerURI != ""
}

// validateURI rejects values url.Parse would wave through, like plain
// words with no scheme, so a misconfigured endpoint fails at startup
// rather than at the first token validation.
func validateURI(name, value string) error {
	if value == "" {
		return nil
	}

	u, err := url.ParseRequestURI(value)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", name, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid %s: %q has no scheme or host", name, value)
	}
	return nil
}

// An unset variable falls back to its default; a set but unparsable one
// is a fatal misconfiguration, not something to paper over.
func getEnvAsBool(key string, fallback bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return parsed, nil
}

func getEnvAsMillis(key string, fallback time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	ms, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return time.Duration(ms) * time.Millisecond, nil
}

func getEnvAsList(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}

	var items []string
	for _, item := range strings.Split(value, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			items = append(items, item)
		}
	}
	return items
}
