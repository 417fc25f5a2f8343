// Package rbac implements the role model and role resolution rules used by
// the middleware. Roles form a total order: ROOT covers every ADMIN
// permission and ADMIN covers every USER permission, so access checks reduce
// to an ordered comparison rather than an inheritance chain.
package rbac

import "fmt"

// Role is an ordered privilege level.
type Role int

const (
	// RoleUser is the default role for any authenticated principal.
	RoleUser Role = iota

	// RoleAdmin is granted to principals listed as administrators.
	RoleAdmin

	// RoleRoot is the highest privilege level.
	RoleRoot
)

const (
	roleNameUser  = "USER"
	roleNameAdmin = "ADMIN"
	roleNameRoot  = "ROOT"
)

// String returns the wire name of the role as carried in token claims.
func (r Role) String() string {
	switch r {
	case RoleUser:
		return roleNameUser
	case RoleAdmin:
		return roleNameAdmin
	case RoleRoot:
		return roleNameRoot
	default:
		return fmt.Sprintf("Role(%d)", int(r))
	}
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r >= RoleUser && r <= RoleRoot
}

// Grants reports whether a principal holding r may perform an operation
// that requires the given role. A role grants itself and everything below
// it in the order USER < ADMIN < ROOT.
func (r Role) Grants(required Role) bool {
	return r >= required
}

// ParseRole converts a wire name back into a Role. It is strict: unknown
// names are rejected rather than mapped to a default, so a token carrying
// a garbled role claim fails validation instead of silently downgrading.
func ParseRole(name string) (Role, error) {
	switch name {
	case roleNameUser:
		return RoleUser, nil
	case roleNameAdmin:
		return RoleAdmin, nil
	case roleNameRoot:
		return RoleRoot, nil
	default:
		return RoleUser, fmt.Errorf("unknown role %q", name)
	}
}
