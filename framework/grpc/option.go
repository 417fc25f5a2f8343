package rbacgrpchandler

import (
	"errors"

	"github.com/scaffoldkit/go-rbac-middleware/core"
	"github.com/scaffoldkit/go-rbac-middleware/rbac"
)

// Option configures an Interceptor.
type Option func(*Interceptor) error

// WithValidator sets the token validator (REQUIRED).
func WithValidator(v core.TokenValidator) Option {
	return func(i *Interceptor) error {
		if v == nil {
			return errors.New("validator cannot be nil")
		}
		i.validator = v
		return nil
	}
}

// WithRequiredRole sets the role every intercepted call must satisfy.
//
// Default: rbac.RoleUser.
func WithRequiredRole(role rbac.Role) Option {
	return func(i *Interceptor) error {
		if !role.Valid() {
			return errors.New("unknown required role")
		}
		i.requiredRole = role
		return nil
	}
}

// WithCredentialsOptional lets calls without a token through with no
// claims in the context.
func WithCredentialsOptional(value bool) Option {
	return func(i *Interceptor) error {
		i.credentialsOptional = value
		return nil
	}
}

// WithTokenExtractor overrides how the token is read from metadata.
func WithTokenExtractor(e TokenExtractor) Option {
	return func(i *Interceptor) error {
		if e == nil {
			return errors.New("token extractor cannot be nil")
		}
		i.tokenExtractor = e
		return nil
	}
}

// WithErrorHandler overrides the mapping from failures to status errors.
func WithErrorHandler(h ErrorHandler) Option {
	return func(i *Interceptor) error {
		if h == nil {
			return errors.New("error handler cannot be nil")
		}
		i.errorHandler = h
		return nil
	}
}

// WithExcludedMethods skips credential checks for the given full method
// names, e.g. "/grpc.health.v1.Health/Check".
func WithExcludedMethods(methods []string) Option {
	return func(i *Interceptor) error {
		for _, method := range methods {
			i.excludedMethods[method] = true
		}
		return nil
	}
}

// WithLogger sets an optional structured logger.
func WithLogger(logger core.Logger) Option {
	return func(i *Interceptor) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		i.logger = logger
		return nil
	}
}
