package token

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"

	"github.com/scaffoldkit/go-rbac-middleware/config"
	"github.com/scaffoldkit/go-rbac-middleware/rbac"
)

// Issuer mints signed HS256 bearer tokens for authenticated principals.
// It is immutable after construction and safe for concurrent use.
type Issuer struct {
	key       []byte
	issuerURI string
	lifetime  time.Duration
	now       func() time.Time
}

// IssuerOption configures an Issuer.
type IssuerOption func(*Issuer) error

// WithIssueClock overrides the time source used to stamp iat and exp.
// Intended for tests.
func WithIssueClock(now func() time.Time) IssuerOption {
	return func(i *Issuer) error {
		if now == nil {
			return fmt.Errorf("issue clock cannot be nil")
		}
		i.now = now
		return nil
	}
}

// NewIssuer builds an Issuer from the resolved configuration. It fails
// when JWT auth is disabled (session authentication should be used
// instead) or when the secret key is unset or too short.
func NewIssuer(cfg *config.Config, opts ...IssuerOption) (*Issuer, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if !cfg.EnableJWTAuth {
		return nil, ErrJWTAuthDisabled
	}
	if len(cfg.SecretKey) < config.MinSecretKeyLength {
		return nil, config.ErrSecretKeyMissing
	}

	i := &Issuer{
		key:       []byte(cfg.SecretKey),
		issuerURI: cfg.IssuerURI,
		lifetime:  cfg.Expiration,
		now:       time.Now,
	}

	for _, opt := range opts {
		if err := opt(i); err != nil {
			return nil, fmt.Errorf("invalid option: %w", err)
		}
	}

	return i, nil
}

// Issue produces a signed token for the principal, carrying its email as
// the subject, its role claim, and exp = issue time + the configured
// lifetime.
func (i *Issuer) Issue(principal rbac.Principal) (string, error) {
	if principal.Email == "" {
		return "", fmt.Errorf("principal email cannot be empty")
	}
	if !principal.Role.Valid() {
		return "", fmt.Errorf("principal has unknown role %d", int(principal.Role))
	}

	now := i.now()

	builder := jwt.NewBuilder().
		Subject(principal.Email).
		JwtID(uuid.NewString()).
		IssuedAt(now).
		Expiration(now.Add(i.lifetime)).
		Claim(RoleClaim, principal.Role.String())

	if i.issuerURI != "" {
		builder = builder.Issuer(i.issuerURI)
	}

	tok, err := builder.Build()
	if err != nil {
		return "", fmt.Errorf("could not build token: %w", err)
	}

	signed, err := jwt.Sign(tok, jwt.WithKey(jwa.HS256, i.key))
	if err != nil {
		return "", fmt.Errorf("could not sign token: %w", err)
	}

	return string(signed), nil
}
