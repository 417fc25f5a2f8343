// Package token issues and validates the signed bearer tokens that bind a
// principal's identity and role to an expiration timestamp. Tokens are
// created once at login and validated on every protected request; they are
// never mutated and become invalid after expiry or secret rotation.
package token

import (
	"time"

	"github.com/scaffoldkit/go-rbac-middleware/rbac"
)

// RoleClaim is the name of the private claim carrying the principal's role.
const RoleClaim = "role"

// Claims is the validated content of a bearer token.
type Claims struct {
	// Subject is the principal's email address.
	Subject string

	// Role is the role embedded at issue time.
	Role rbac.Role

	// Issuer is the iss claim, empty when no issuer is configured.
	Issuer string

	// ID is the jti claim assigned at issue time.
	ID string

	IssuedAt time.Time
	Expiry   time.Time
}

// Principal returns the identity and role the token was issued for.
func (c *Claims) Principal() rbac.Principal {
	return rbac.Principal{Email: c.Subject, Role: c.Role}
}
