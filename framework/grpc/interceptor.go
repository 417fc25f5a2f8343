// Package rbacgrpchandler adapts the RBAC credential check to gRPC
// server interceptors. The bearer token travels in the "authorization"
// metadata entry, mirroring the HTTP Authorization header.
package rbacgrpchandler

import (
	"context"
	"errors"

	"google.golang.org/grpc"

	"github.com/scaffoldkit/go-rbac-middleware/core"
	"github.com/scaffoldkit/go-rbac-middleware/rbac"
)

// Interceptor provides token validation and role enforcement for gRPC
// servers.
type Interceptor struct {
	core            *core.Core
	tokenExtractor  TokenExtractor
	errorHandler    ErrorHandler
	requiredRole    rbac.Role
	excludedMethods map[string]bool
	logger          core.Logger

	// Construction-only fields consumed by New.
	validator           core.TokenValidator
	credentialsOptional bool
}

// New creates an Interceptor. WithValidator is required.
func New(opts ...Option) (*Interceptor, error) {
	i := &Interceptor{
		tokenExtractor:  MetadataTokenExtractor,
		errorHandler:    DefaultErrorHandler,
		requiredRole:    rbac.RoleUser,
		excludedMethods: make(map[string]bool),
	}

	for _, opt := range opts {
		if err := opt(i); err != nil {
			return nil, err
		}
	}

	if i.validator == nil {
		return nil, errors.New("validator is required, use WithValidator")
	}

	coreOpts := []core.Option{
		core.WithValidator(i.validator),
		core.WithCredentialsOptional(i.credentialsOptional),
	}
	if i.logger != nil {
		coreOpts = append(coreOpts, core.WithLogger(i.logger))
	}

	engine, err := core.New(coreOpts...)
	if err != nil {
		return nil, err
	}
	i.core = engine

	return i, nil
}

// checkRequest validates credentials for one call and returns a context
// enriched with the validated claims.
func (i *Interceptor) checkRequest(ctx context.Context, fullMethod string) (context.Context, error) {
	rawToken, err := i.tokenExtractor(ctx)
	if err != nil {
		if i.logger != nil {
			i.logger.Error("failed to extract token from metadata",
				"error", err, "grpc_method", fullMethod)
		}
		return nil, i.errorHandler(err)
	}

	claims, err := i.core.CheckCredentials(ctx, rawToken, i.requiredRole)
	if err != nil {
		return nil, i.errorHandler(err)
	}

	if claims == nil {
		// Credentials optional and none supplied.
		return ctx, nil
	}

	return core.SetClaims(ctx, claims), nil
}

// UnaryServerInterceptor returns a grpc.UnaryServerInterceptor enforcing
// the configured role and placing validated claims in the call context.
func (i *Interceptor) UnaryServerInterceptor() grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req any,
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (any, error) {
		if i.excludedMethods[info.FullMethod] {
			return handler(ctx, req)
		}

		checkedCtx, err := i.checkRequest(ctx, info.FullMethod)
		if err != nil {
			return nil, err
		}

		return handler(checkedCtx, req)
	}
}

// StreamServerInterceptor returns a grpc.StreamServerInterceptor with the
// same behavior for streaming calls.
func (i *Interceptor) StreamServerInterceptor() grpc.StreamServerInterceptor {
	return func(
		srv any,
		ss grpc.ServerStream,
		info *grpc.StreamServerInfo,
		handler grpc.StreamHandler,
	) error {
		if i.excludedMethods[info.FullMethod] {
			return handler(srv, ss)
		}

		checkedCtx, err := i.checkRequest(ss.Context(), info.FullMethod)
		if err != nil {
			return err
		}

		return handler(srv, &wrappedStream{ServerStream: ss, ctx: checkedCtx})
	}
}

// wrappedStream overrides the stream context with the claims-enriched one.
type wrappedStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (w *wrappedStream) Context() context.Context {
	return w.ctx
}
