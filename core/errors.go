package core

import (
	"errors"
	"fmt"
)

// Sentinel errors for credential checks.
var (
	// ErrTokenMissing is returned when no bearer token was supplied and
	// credentials are required.
	ErrTokenMissing = errors.New("bearer token missing")

	// ErrAccessDenied covers every token validation failure. The
	// underlying cause (expired, malformed, bad signature) stays
	// available through Unwrap for logging, but callers facing the
	// outside world should report only this.
	ErrAccessDenied = errors.New("access denied")

	// ErrInsufficientRole is returned when a valid token carries a role
	// below the one the operation requires.
	ErrInsufficientRole = errors.New("insufficient role")

	// ErrClaimsNotFound is returned when claims cannot be retrieved from
	// a context.
	ErrClaimsNotFound = errors.New("claims not found in context")
)

// Machine-readable codes attached to CheckError.
const (
	CodeTokenMissing     = "token_missing"
	CodeTokenMalformed   = "token_malformed"
	CodeTokenExpired     = "token_expired"
	CodeInvalidSignature = "invalid_signature"
	CodeInvalidClaims    = "invalid_claims"
	CodeInsufficientRole = "insufficient_role"
	CodeKeyFetchFailed   = "key_fetch_failed"
)

// CheckError wraps a credential check failure with a machine-readable
// code suitable for logging and metrics.
type CheckError struct {
	// Code classifies the failure, e.g. "token_expired".
	Code string

	// Details is the underlying error.
	Details error

	// sentinel is the public sentinel this error matches via errors.Is.
	sentinel error
}

func (e *CheckError) Error() string {
	if e.Details != nil {
		return fmt.Sprintf("%s: %s", e.sentinel, e.Details)
	}
	return e.sentinel.Error()
}

// Unwrap exposes the underlying cause.
func (e *CheckError) Unwrap() error {
	return e.Details
}

// Is matches the public sentinel so callers can branch on
// ErrAccessDenied or ErrInsufficientRole without knowing the code.
func (e *CheckError) Is(target error) bool {
	return target == e.sentinel
}

func newCheckError(sentinel error, code string, details error) *CheckError {
	return &CheckError{Code: code, Details: details, sentinel: sentinel}
}

// ErrorCode extracts the machine-readable code from an error, returning
// the empty string when there is none.
func ErrorCode(err error) string {
	var checkErr *CheckError
	if errors.As(err, &checkErr) {
		return checkErr.Code
	}
	return ""
}
