package rbacginhandler

import (
	rbacmiddleware "github.com/scaffoldkit/go-rbac-middleware"
)

type ginConfig struct {
	errorHandler        ErrorHandler
	claimsKey           string
	tokenExtractor      rbacmiddleware.TokenExtractor
	credentialsOptional bool
	validateOnOptions   bool
}

// Option configures the gin adapter.
type Option func(*ginConfig)

// WithErrorHandler sets a gin-native error handler.
func WithErrorHandler(h ErrorHandler) Option {
	return func(cfg *ginConfig) {
		if h != nil {
			cfg.errorHandler = h
		}
	}
}

// WithClaimsKey sets the gin context key for validated claims.
func WithClaimsKey(key string) Option {
	return func(cfg *ginConfig) {
		if key != "" {
			cfg.claimsKey = key
		}
	}
}

// WithTokenExtractor overrides how the token is read from the request.
func WithTokenExtractor(e rbacmiddleware.TokenExtractor) Option {
	return func(cfg *ginConfig) {
		if e != nil {
			cfg.tokenExtractor = e
		}
	}
}

// WithCredentialsOptional lets requests without a token through with no
// claims in the context.
func WithCredentialsOptional(value bool) Option {
	return func(cfg *ginConfig) {
		cfg.credentialsOptional = value
	}
}

// WithValidateOnOptions sets whether OPTIONS requests are checked.
//
// Default: true.
func WithValidateOnOptions(value bool) Option {
	return func(cfg *ginConfig) {
		cfg.validateOnOptions = value
	}
}
