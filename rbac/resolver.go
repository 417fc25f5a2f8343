package rbac

import "strings"

// Principal is an authenticated identity together with its resolved role.
type Principal struct {
	Email string
	Role  Role
}

// Resolver assigns a role to an email address based on the configured
// root and admin membership lists. Resolution is a pure function of the
// email and the two lists: the root list takes precedence over the admin
// list, and an email present in neither resolves to USER.
//
// A Resolver is immutable after construction and safe for concurrent use.
type Resolver struct {
	rootUsers  map[string]struct{}
	adminUsers map[string]struct{}
	foldCase   bool
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithCaseFolding makes email matching case-insensitive. The default is
// exact matching; whether addresses should be folded is a deployment
// policy, so it is an explicit option rather than hard-coded behavior.
func WithCaseFolding(enabled bool) ResolverOption {
	return func(r *Resolver) {
		r.foldCase = enabled
	}
}

// NewResolver builds a Resolver from the root and admin email lists.
// Empty lists are valid: every principal then resolves to USER.
func NewResolver(rootUsers, adminUsers []string, opts ...ResolverOption) *Resolver {
	r := &Resolver{}
	for _, opt := range opts {
		opt(r)
	}

	r.rootUsers = r.buildSet(rootUsers)
	r.adminUsers = r.buildSet(adminUsers)

	return r
}

func (r *Resolver) buildSet(emails []string) map[string]struct{} {
	set := make(map[string]struct{}, len(emails))
	for _, email := range emails {
		email = strings.TrimSpace(email)
		if email == "" {
			continue
		}
		set[r.normalize(email)] = struct{}{}
	}
	return set
}

func (r *Resolver) normalize(email string) string {
	if r.foldCase {
		return strings.ToLower(email)
	}
	return email
}

// Resolve returns the role assigned to the given email.
func (r *Resolver) Resolve(email string) Role {
	key := r.normalize(email)

	if _, ok := r.rootUsers[key]; ok {
		return RoleRoot
	}
	if _, ok := r.adminUsers[key]; ok {
		return RoleAdmin
	}
	return RoleUser
}

// Principal resolves the role for an email and returns the complete
// principal, ready to be handed to a token issuer at login time.
func (r *Resolver) Principal(email string) Principal {
	return Principal{Email: email, Role: r.Resolve(email)}
}
