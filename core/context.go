package core

import (
	"context"

	"github.com/scaffoldkit/go-rbac-middleware/token"
)

// contextKey is unexported so only this package can create claim keys,
// ruling out collisions with other packages.
type contextKey int

const claimsKey contextKey = iota

// SetClaims stores validated claims in the context. Adapters call this
// after a successful credential check.
func SetClaims(ctx context.Context, claims *token.Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

// GetClaims retrieves the validated claims from the context.
func GetClaims(ctx context.Context) (*token.Claims, error) {
	claims, ok := ctx.Value(claimsKey).(*token.Claims)
	if !ok || claims == nil {
		return nil, ErrClaimsNotFound
	}
	return claims, nil
}

// HasClaims reports whether validated claims exist in the context.
func HasClaims(ctx context.Context) bool {
	claims, ok := ctx.Value(claimsKey).(*token.Claims)
	return ok && claims != nil
}
