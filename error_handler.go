package rbacmiddleware

import (
	"errors"
	"net/http"

	"github.com/scaffoldkit/go-rbac-middleware/core"
)

// ErrorHandler is called when a credential check fails. The err can be
// matched against core.ErrTokenMissing, core.ErrAccessDenied and
// core.ErrInsufficientRole. The default handler returns 400 for a missing
// token, 401 for any validation failure, 403 for an insufficient role and
// 500 for everything else. A custom handler MUST handle these cases; in
// particular every validation failure must be rejected, never partially
// admitted.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

// DefaultErrorHandler is used when no handler is set via WithErrorHandler.
// Expired, malformed and badly signed tokens are deliberately
// indistinguishable in the response body: internally they carry different
// codes for logging, externally they are all just access denied.
func DefaultErrorHandler(w http.ResponseWriter, r *http.Request, err error) {
	w.Header().Set("Content-Type", "application/json")

	switch {
	case errors.Is(err, core.ErrTokenMissing):
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message":"Credentials are missing."}`))
	case errors.Is(err, core.ErrInsufficientRole):
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"message":"Access denied."}`))
	case errors.Is(err, core.ErrAccessDenied):
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"Access denied."}`))
	default:
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"message":"Something went wrong while checking credentials."}`))
	}
}
