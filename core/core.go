// Package core provides the transport-agnostic credential check shared by
// the HTTP middleware and the gRPC interceptor. It validates a bearer
// token, classifies failures, and enforces the role required by the
// protected operation.
package core

import (
	"context"
	"errors"
	"time"

	"github.com/scaffoldkit/go-rbac-middleware/rbac"
	"github.com/scaffoldkit/go-rbac-middleware/token"
)

// TokenValidator validates a raw bearer token and returns its claims.
// Satisfied by *token.Validator.
type TokenValidator interface {
	Validate(ctx context.Context, rawToken string) (*token.Claims, error)
}

// Logger is an optional structured logging interface compatible with
// log/slog and the adapters in the root package.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Core is the credential check engine. It holds no per-request state and
// is safe for concurrent use.
type Core struct {
	validator           TokenValidator
	credentialsOptional bool
	logger              Logger
}

// Option configures a Core.
type Option func(*Core) error

// WithValidator sets the token validator. Required.
func WithValidator(v TokenValidator) Option {
	return func(c *Core) error {
		if v == nil {
			return errors.New("validator cannot be nil")
		}
		c.validator = v
		return nil
	}
}

// WithCredentialsOptional makes an absent token acceptable: the check
// succeeds with nil claims and no role is enforced.
//
// Default: false.
func WithCredentialsOptional(value bool) Option {
	return func(c *Core) error {
		c.credentialsOptional = value
		return nil
	}
}

// WithLogger sets an optional logger.
func WithLogger(logger Logger) Option {
	return func(c *Core) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		c.logger = logger
		return nil
	}
}

// New constructs a Core with the supplied options.
func New(opts ...Option) (*Core, error) {
	c := &Core{}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	if c.validator == nil {
		return nil, errors.New("validator is required (use WithValidator)")
	}
	return c, nil
}

// CheckCredentials validates the raw token and enforces the required
// role. On success it returns the validated claims, or (nil, nil) when
// credentials are optional and no token was supplied.
//
// Failures are CheckErrors matching ErrTokenMissing, ErrAccessDenied or
// ErrInsufficientRole.
func (c *Core) CheckCredentials(ctx context.Context, rawToken string, required rbac.Role) (*token.Claims, error) {
	if rawToken == "" {
		if c.credentialsOptional {
			if c.logger != nil {
				c.logger.Debug("no token provided, credentials are optional")
			}
			return nil, nil
		}
		return nil, newCheckError(ErrTokenMissing, CodeTokenMissing, nil)
	}

	start := time.Now()
	claims, err := c.validator.Validate(ctx, rawToken)
	duration := time.Since(start)

	if err != nil {
		code := classify(err)
		if c.logger != nil {
			c.logger.Warn("token validation failed",
				"error", err, "code", code, "duration", duration)
		}
		return nil, newCheckError(ErrAccessDenied, code, err)
	}

	if !claims.Role.Grants(required) {
		if c.logger != nil {
			c.logger.Warn("role below required level",
				"subject", claims.Subject,
				"role", claims.Role.String(),
				"required", required.String())
		}
		return nil, newCheckError(ErrInsufficientRole, CodeInsufficientRole, nil)
	}

	if c.logger != nil {
		c.logger.Debug("credentials accepted",
			"subject", claims.Subject,
			"role", claims.Role.String(),
			"duration", duration)
	}

	return claims, nil
}

// classify maps token validation failures onto machine-readable codes.
func classify(err error) string {
	switch {
	case errors.Is(err, token.ErrTokenMalformed):
		return CodeTokenMalformed
	case errors.Is(err, token.ErrTokenExpired):
		return CodeTokenExpired
	case errors.Is(err, token.ErrSignatureInvalid):
		return CodeInvalidSignature
	case errors.Is(err, token.ErrTokenInvalid):
		return CodeInvalidClaims
	default:
		return CodeKeyFetchFailed
	}
}
