package rbacgrpchandler

import (
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/scaffoldkit/go-rbac-middleware/core"
)

// ErrorHandler converts credential check failures into gRPC status
// errors returned to the client.
type ErrorHandler func(error) error

// DefaultErrorHandler maps failures onto conventional gRPC codes.
// Like the HTTP default handler it keeps the response uniform: expired,
// malformed and badly signed tokens all surface as Unauthenticated with
// the same message.
func DefaultErrorHandler(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, ErrMultipleAuthHeaders), errors.Is(err, ErrInvalidAuthFormat):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, core.ErrTokenMissing):
		return status.Error(codes.Unauthenticated, "missing credentials")
	case errors.Is(err, core.ErrInsufficientRole):
		return status.Error(codes.PermissionDenied, "access denied")
	case core.ErrorCode(err) == core.CodeKeyFetchFailed:
		// Key discovery failures are our problem, not the caller's.
		return status.Error(codes.Internal, "unable to verify token")
	default:
		return status.Error(codes.Unauthenticated, "access denied")
	}
}
