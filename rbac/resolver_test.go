package rbac

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolverResolve(t *testing.T) {
	rootUsers := []string{"root@example.com", "owner@example.com"}
	adminUsers := []string{"admin@example.com", "ops@example.com"}

	resolver := NewResolver(rootUsers, adminUsers)

	t.Run("every root list member resolves to ROOT", func(t *testing.T) {
		for _, email := range rootUsers {
			assert.Equal(t, RoleRoot, resolver.Resolve(email), email)
		}
	})

	t.Run("every admin list member resolves to ADMIN", func(t *testing.T) {
		for _, email := range adminUsers {
			assert.Equal(t, RoleAdmin, resolver.Resolve(email), email)
		}
	})

	t.Run("unknown emails resolve to USER", func(t *testing.T) {
		assert.Equal(t, RoleUser, resolver.Resolve("someone@example.com"))
		assert.Equal(t, RoleUser, resolver.Resolve(""))
	})

	t.Run("root list takes precedence over admin list", func(t *testing.T) {
		both := NewResolver([]string{"boss@example.com"}, []string{"boss@example.com"})
		assert.Equal(t, RoleRoot, both.Resolve("boss@example.com"))
	})
}

func TestResolverCaseSensitivity(t *testing.T) {
	t.Run("matching is exact by default", func(t *testing.T) {
		resolver := NewResolver([]string{"Root@Example.com"}, nil)
		assert.Equal(t, RoleRoot, resolver.Resolve("Root@Example.com"))
		assert.Equal(t, RoleUser, resolver.Resolve("root@example.com"))
	})

	t.Run("case folding can be enabled", func(t *testing.T) {
		resolver := NewResolver([]string{"Root@Example.com"}, nil, WithCaseFolding(true))
		assert.Equal(t, RoleRoot, resolver.Resolve("root@example.com"))
		assert.Equal(t, RoleRoot, resolver.Resolve("ROOT@EXAMPLE.COM"))
	})
}

func TestResolverEmptyLists(t *testing.T) {
	resolver := NewResolver(nil, nil)
	assert.Equal(t, RoleUser, resolver.Resolve("anyone@example.com"))
}

func TestResolverIgnoresBlankEntries(t *testing.T) {
	resolver := NewResolver([]string{" ", ""}, []string{"  admin@example.com  "})
	assert.Equal(t, RoleUser, resolver.Resolve(" "))
	assert.Equal(t, RoleAdmin, resolver.Resolve("admin@example.com"))
}

func TestResolverPrincipal(t *testing.T) {
	resolver := NewResolver([]string{"a@x.com"}, []string{"b@x.com"})

	principal := resolver.Principal("c@x.com")
	assert.Equal(t, Principal{Email: "c@x.com", Role: RoleUser}, principal)
}
