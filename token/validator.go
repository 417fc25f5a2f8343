package token

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/lestrrat-go/jwx/v2/jws"
	"github.com/lestrrat-go/jwx/v2/jwt"

	"github.com/scaffoldkit/go-rbac-middleware/config"
	"github.com/scaffoldkit/go-rbac-middleware/jwks"
	"github.com/scaffoldkit/go-rbac-middleware/rbac"
)

// KeyProvider supplies the key material used to verify token signatures.
// The returned value is either a jwk.Set (external key discovery) or a
// raw key understood by the HS256 verifier. Providers may block on the
// network and must honor the context.
type KeyProvider func(ctx context.Context) (any, error)

// Validator verifies bearer tokens and returns the claims they carry.
// Depending on configuration it verifies signatures against the shared
// secret or against an externally published JWK set.
//
// A Validator is immutable after construction and safe for concurrent use.
type Validator struct {
	key         []byte
	keyProvider KeyProvider
	issuerURI   string
	clockSkew   time.Duration
	clock       jwt.Clock
}

// ValidatorOption configures a Validator.
type ValidatorOption func(*Validator) error

// WithKeyProvider overrides the source of verification keys. Use this to
// supply a custom jwks provider or a static key set in tests.
func WithKeyProvider(provider KeyProvider) ValidatorOption {
	return func(v *Validator) error {
		if provider == nil {
			return fmt.Errorf("key provider cannot be nil")
		}
		v.keyProvider = provider
		return nil
	}
}

// WithClockSkew sets the tolerance applied to exp and nbf comparisons to
// absorb clock drift between systems. Default: none.
func WithClockSkew(skew time.Duration) ValidatorOption {
	return func(v *Validator) error {
		if skew < 0 {
			return fmt.Errorf("clock skew cannot be negative")
		}
		v.clockSkew = skew
		return nil
	}
}

// WithValidationClock overrides the time source used for expiry
// comparisons. Intended for tests.
func WithValidationClock(now func() time.Time) ValidatorOption {
	return func(v *Validator) error {
		if now == nil {
			return fmt.Errorf("validation clock cannot be nil")
		}
		v.clock = jwt.ClockFunc(now)
		return nil
	}
}

// NewValidator builds a Validator from the resolved configuration.
//
// When the configuration names a JWK set URI or an issuer URI, signatures
// are verified against the published key set, fetched through a caching
// jwks provider (or the provider given via WithKeyProvider). Otherwise the
// shared secret key is used.
func NewValidator(cfg *config.Config, opts ...ValidatorOption) (*Validator, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if !cfg.EnableJWTAuth {
		return nil, ErrJWTAuthDisabled
	}

	v := &Validator{issuerURI: cfg.IssuerURI}

	for _, opt := range opts {
		if err := opt(v); err != nil {
			return nil, fmt.Errorf("invalid option: %w", err)
		}
	}

	if cfg.ExternalValidation() {
		if v.keyProvider == nil {
			provider, err := newConfiguredProvider(cfg)
			if err != nil {
				return nil, err
			}
			v.keyProvider = provider.KeyFunc
		}
		return v, nil
	}

	if len(cfg.SecretKey) < config.MinSecretKeyLength {
		return nil, config.ErrSecretKeyMissing
	}
	v.key = []byte(cfg.SecretKey)

	return v, nil
}

func newConfiguredProvider(cfg *config.Config) (*jwks.CachingProvider, error) {
	var providerOpts []jwks.ProviderOption

	if cfg.JWKSetURI != "" {
		jwksURI, err := url.Parse(cfg.JWKSetURI)
		if err != nil {
			return nil, fmt.Errorf("invalid JWK set URI: %w", err)
		}
		providerOpts = append(providerOpts, jwks.WithCustomJWKSURI(jwksURI))
	}

	if cfg.IssuerURI != "" {
		issuerURL, err := url.Parse(cfg.IssuerURI)
		if err != nil {
			return nil, fmt.Errorf("invalid issuer URI: %w", err)
		}
		providerOpts = append(providerOpts, jwks.WithIssuerURL(issuerURL))
	}

	return jwks.NewCachingProvider(providerOpts...)
}

// Validate verifies the signature and claims of the passed in token and
// returns its claims. Failures are reported through the distinguished
// sentinel errors in this package; callers should surface all of them to
// the outside world identically as access denied.
func (v *Validator) Validate(ctx context.Context, rawToken string) (*Claims, error) {
	raw := []byte(rawToken)

	// Parse without verification first so a garbled token is reported as
	// malformed rather than as a bad signature.
	tok, err := jwt.Parse(raw, jwt.WithVerify(false), jwt.WithValidate(false))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenMalformed, err)
	}

	if err := v.verifySignature(ctx, raw); err != nil {
		return nil, err
	}

	validateOpts := []jwt.ValidateOption{jwt.WithAcceptableSkew(v.clockSkew)}
	if v.clock != nil {
		validateOpts = append(validateOpts, jwt.WithClock(v.clock))
	}
	if v.issuerURI != "" {
		validateOpts = append(validateOpts, jwt.WithIssuer(v.issuerURI))
	}

	if err := jwt.Validate(tok, validateOpts...); err != nil {
		if errors.Is(err, jwt.ErrTokenExpired()) {
			return nil, fmt.Errorf("%w: %v", ErrTokenExpired, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	return v.extractClaims(tok)
}

func (v *Validator) verifySignature(ctx context.Context, raw []byte) error {
	var err error

	if v.keyProvider != nil {
		var material any
		material, err = v.keyProvider(ctx)
		if err != nil {
			return fmt.Errorf("could not fetch verification keys: %w", err)
		}

		switch key := material.(type) {
		case jwk.Set:
			_, err = jwt.Parse(raw,
				jwt.WithKeySet(key, jws.WithInferAlgorithmFromKey(true)),
				jwt.WithValidate(false),
			)
		default:
			_, err = jwt.Parse(raw, jwt.WithKey(jwa.HS256, key), jwt.WithValidate(false))
		}
	} else {
		_, err = jwt.Parse(raw, jwt.WithKey(jwa.HS256, v.key), jwt.WithValidate(false))
	}

	if err != nil {
		return fmt.Errorf("%w: %v", ErrSignatureInvalid, err)
	}
	return nil
}

func (v *Validator) extractClaims(tok jwt.Token) (*Claims, error) {
	rawRole, ok := tok.Get(RoleClaim)
	if !ok {
		return nil, fmt.Errorf("%w: missing %q claim", ErrTokenInvalid, RoleClaim)
	}

	roleName, ok := rawRole.(string)
	if !ok {
		return nil, fmt.Errorf("%w: %q claim is not a string", ErrTokenInvalid, RoleClaim)
	}

	role, err := rbac.ParseRole(roleName)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	return &Claims{
		Subject:  tok.Subject(),
		Role:     role,
		Issuer:   tok.Issuer(),
		ID:       tok.JwtID(),
		IssuedAt: tok.IssuedAt(),
		Expiry:   tok.Expiration(),
	}, nil
}
