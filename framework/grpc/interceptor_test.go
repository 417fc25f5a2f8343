package rbacgrpchandler

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/scaffoldkit/go-rbac-middleware/core"
	"github.com/scaffoldkit/go-rbac-middleware/rbac"
	"github.com/scaffoldkit/go-rbac-middleware/token"
)

// stubValidator resolves raw tokens from a fixed table.
type stubValidator struct {
	claims map[string]*token.Claims
	err    error
}

func (v *stubValidator) Validate(_ context.Context, rawToken string) (*token.Claims, error) {
	if v.err != nil {
		return nil, v.err
	}
	claims, ok := v.claims[rawToken]
	if !ok {
		return nil, token.ErrSignatureInvalid
	}
	return claims, nil
}

func newStubValidator() *stubValidator {
	return &stubValidator{claims: map[string]*token.Claims{
		"user-token":  {Subject: "user@example.com", Role: rbac.RoleUser},
		"admin-token": {Subject: "admin@example.com", Role: rbac.RoleAdmin},
		"root-token":  {Subject: "root@example.com", Role: rbac.RoleRoot},
	}}
}

func contextWithAuth(values ...string) context.Context {
	md := metadata.MD{}
	md.Set("authorization", values...)
	return metadata.NewIncomingContext(context.Background(), md)
}

func TestMetadataTokenExtractor(t *testing.T) {
	testCases := []struct {
		name          string
		ctx           context.Context
		expectedToken string
		expectedError error
	}{
		{name: "no metadata", ctx: context.Background()},
		{name: "no authorization entry", ctx: metadata.NewIncomingContext(context.Background(), metadata.Pairs("other", "x"))},
		{name: "well formed bearer", ctx: contextWithAuth("Bearer abc123"), expectedToken: "abc123"},
		{name: "scheme is case-insensitive", ctx: contextWithAuth("bearer abc123"), expectedToken: "abc123"},
		{name: "multiple entries", ctx: contextWithAuth("Bearer a", "Bearer b"), expectedError: ErrMultipleAuthHeaders},
		{name: "wrong scheme", ctx: contextWithAuth("Basic abc123"), expectedError: ErrInvalidAuthFormat},
		{name: "missing token part", ctx: contextWithAuth("Bearer"), expectedError: ErrInvalidAuthFormat},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			tok, err := MetadataTokenExtractor(testCase.ctx)

			if testCase.expectedError != nil {
				assert.ErrorIs(t, err, testCase.expectedError)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, testCase.expectedToken, tok)
		})
	}
}

func TestNewRequiresValidator(t *testing.T) {
	_, err := New()
	assert.EqualError(t, err, "validator is required, use WithValidator")

	_, err = New(WithValidator(nil))
	assert.EqualError(t, err, "validator cannot be nil")

	_, err = New(WithValidator(newStubValidator()), WithRequiredRole(rbac.Role(42)))
	assert.EqualError(t, err, "unknown required role")
}

func TestUnaryServerInterceptor(t *testing.T) {
	info := &grpc.UnaryServerInfo{FullMethod: "/demo.v1.Demo/Get"}

	testCases := []struct {
		name            string
		options         []Option
		ctx             context.Context
		validatorErr    error
		expectedCode    codes.Code
		expectedMessage string
		expectedSubject string
	}{
		{
			name:            "valid token reaches the handler with claims",
			ctx:             contextWithAuth("Bearer user-token"),
			expectedSubject: "user@example.com",
		},
		{
			name:            "missing token",
			ctx:             context.Background(),
			expectedCode:    codes.Unauthenticated,
			expectedMessage: "missing credentials",
		},
		{
			name:            "malformed header",
			ctx:             contextWithAuth("Basic user-token"),
			expectedCode:    codes.InvalidArgument,
			expectedMessage: ErrInvalidAuthFormat.Error(),
		},
		{
			name:            "bad signature",
			ctx:             contextWithAuth("Bearer forged-token"),
			expectedCode:    codes.Unauthenticated,
			expectedMessage: "access denied",
		},
		{
			name:            "expired token",
			ctx:             contextWithAuth("Bearer user-token"),
			validatorErr:    token.ErrTokenExpired,
			expectedCode:    codes.Unauthenticated,
			expectedMessage: "access denied",
		},
		{
			name:            "key fetch failure is an internal fault",
			ctx:             contextWithAuth("Bearer user-token"),
			validatorErr:    errors.New("jwks endpoint unreachable"),
			expectedCode:    codes.Internal,
			expectedMessage: "unable to verify token",
		},
		{
			name:            "insufficient role",
			options:         []Option{WithRequiredRole(rbac.RoleAdmin)},
			ctx:             contextWithAuth("Bearer user-token"),
			expectedCode:    codes.PermissionDenied,
			expectedMessage: "access denied",
		},
		{
			name:            "role above the requirement passes",
			options:         []Option{WithRequiredRole(rbac.RoleAdmin)},
			ctx:             contextWithAuth("Bearer root-token"),
			expectedSubject: "root@example.com",
		},
		{
			name:    "optional credentials pass without claims",
			options: []Option{WithCredentialsOptional(true)},
			ctx:     context.Background(),
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			validator := newStubValidator()
			validator.err = testCase.validatorErr

			interceptor, err := New(append([]Option{WithValidator(validator)}, testCase.options...)...)
			require.NoError(t, err)

			var handlerCtx context.Context
			handler := func(ctx context.Context, req any) (any, error) {
				handlerCtx = ctx
				return "ok", nil
			}

			resp, err := interceptor.UnaryServerInterceptor()(testCase.ctx, "req", info, handler)

			if testCase.expectedCode != codes.OK {
				require.Error(t, err)
				assert.Equal(t, testCase.expectedCode, status.Code(err))
				assert.Equal(t, testCase.expectedMessage, status.Convert(err).Message())
				assert.Nil(t, handlerCtx, "handler must not run on a failed check")
				return
			}

			require.NoError(t, err)
			assert.Equal(t, "ok", resp)
			require.NotNil(t, handlerCtx)

			if testCase.expectedSubject == "" {
				assert.False(t, core.HasClaims(handlerCtx), "no claims expected in the handler context")
				return
			}
			claims, err := core.GetClaims(handlerCtx)
			require.NoError(t, err)
			assert.Equal(t, testCase.expectedSubject, claims.Subject)
		})
	}
}

func TestUnaryServerInterceptorExcludedMethods(t *testing.T) {
	interceptor, err := New(
		WithValidator(newStubValidator()),
		WithExcludedMethods([]string{"/grpc.health.v1.Health/Check"}),
	)
	require.NoError(t, err)

	handler := func(ctx context.Context, req any) (any, error) { return "ok", nil }

	resp, err := interceptor.UnaryServerInterceptor()(
		context.Background(),
		"req",
		&grpc.UnaryServerInfo{FullMethod: "/grpc.health.v1.Health/Check"},
		handler,
	)
	require.NoError(t, err)
	assert.Equal(t, "ok", resp)

	_, err = interceptor.UnaryServerInterceptor()(
		context.Background(),
		"req",
		&grpc.UnaryServerInfo{FullMethod: "/demo.v1.Demo/Get"},
		handler,
	)
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
}

// fakeServerStream carries only a context, which is all the interceptor
// touches.
type fakeServerStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (f *fakeServerStream) Context() context.Context {
	return f.ctx
}

func TestStreamServerInterceptor(t *testing.T) {
	interceptor, err := New(WithValidator(newStubValidator()), WithRequiredRole(rbac.RoleAdmin))
	require.NoError(t, err)

	info := &grpc.StreamServerInfo{FullMethod: "/demo.v1.Demo/Watch"}

	t.Run("valid token enriches the stream context", func(t *testing.T) {
		stream := &fakeServerStream{ctx: contextWithAuth("Bearer admin-token")}

		var streamCtx context.Context
		err := interceptor.StreamServerInterceptor()(nil, stream, info, func(srv any, ss grpc.ServerStream) error {
			streamCtx = ss.Context()
			return nil
		})
		require.NoError(t, err)

		claims, err := core.GetClaims(streamCtx)
		require.NoError(t, err)
		assert.Equal(t, "admin@example.com", claims.Subject)
	})

	t.Run("insufficient role rejects the stream", func(t *testing.T) {
		stream := &fakeServerStream{ctx: contextWithAuth("Bearer user-token")}

		err := interceptor.StreamServerInterceptor()(nil, stream, info, func(srv any, ss grpc.ServerStream) error {
			t.Fatal("handler must not run")
			return nil
		})
		assert.Equal(t, codes.PermissionDenied, status.Code(err))
	})
}
