package rbacechohandler

import (
	"github.com/labstack/echo/v4"

	rbacmiddleware "github.com/scaffoldkit/go-rbac-middleware"
)

type echoConfig struct {
	errorHandler   func(echo.Context, error) error
	claimsKey      string
	middlewareOpts []rbacmiddleware.Option
}

// Option configures the echo adapter.
type Option func(*echoConfig)

// WithErrorHandler sets an echo-native error handler.
func WithErrorHandler(h func(echo.Context, error) error) Option {
	return func(cfg *echoConfig) {
		if h != nil {
			cfg.errorHandler = h
		}
	}
}

// WithClaimsKey sets the echo context key for validated claims.
func WithClaimsKey(key string) Option {
	return func(cfg *echoConfig) {
		if key != "" {
			cfg.claimsKey = key
		}
	}
}

// WithMiddlewareOptions passes extra options through to the underlying
// middleware.
func WithMiddlewareOptions(opts ...rbacmiddleware.Option) Option {
	return func(cfg *echoConfig) {
		cfg.middlewareOpts = append(cfg.middlewareOpts, opts...)
	}
}
