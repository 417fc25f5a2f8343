package token

import "errors"

// Validation failures are distinguished internally so they can be logged
// and counted separately, but callers facing the outside world should
// report all of them uniformly as access denied.
var (
	// ErrJWTAuthDisabled is returned by the constructors when the
	// configuration has JWT authentication switched off.
	ErrJWTAuthDisabled = errors.New("jwt auth is disabled")

	// ErrTokenMalformed is returned when the token cannot be parsed as
	// a compact serialized JWT at all.
	ErrTokenMalformed = errors.New("token malformed")

	// ErrSignatureInvalid is returned when the signature does not verify
	// against the configured secret or key set.
	ErrSignatureInvalid = errors.New("token signature invalid")

	// ErrTokenExpired is returned when the token's exp claim is in
	// the past.
	ErrTokenExpired = errors.New("token expired")

	// ErrTokenInvalid is returned for every other claim-level failure,
	// such as a wrong issuer or a missing or unknown role claim.
	ErrTokenInvalid = errors.New("token invalid")
)
