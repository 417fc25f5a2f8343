package rbac

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoleOrdering(t *testing.T) {
	assert.True(t, RoleRoot > RoleAdmin)
	assert.True(t, RoleAdmin > RoleUser)
}

func TestRoleGrants(t *testing.T) {
	testCases := []struct {
		name     string
		actual   Role
		required Role
		want     bool
	}{
		{"root grants root", RoleRoot, RoleRoot, true},
		{"root grants admin", RoleRoot, RoleAdmin, true},
		{"root grants user", RoleRoot, RoleUser, true},
		{"admin grants admin", RoleAdmin, RoleAdmin, true},
		{"admin grants user", RoleAdmin, RoleUser, true},
		{"admin does not grant root", RoleAdmin, RoleRoot, false},
		{"user grants user", RoleUser, RoleUser, true},
		{"user does not grant admin", RoleUser, RoleAdmin, false},
		{"user does not grant root", RoleUser, RoleRoot, false},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			assert.Equal(t, testCase.want, testCase.actual.Grants(testCase.required))
		})
	}
}

func TestRoleString(t *testing.T) {
	assert.Equal(t, "USER", RoleUser.String())
	assert.Equal(t, "ADMIN", RoleAdmin.String())
	assert.Equal(t, "ROOT", RoleRoot.String())
	assert.Equal(t, "Role(42)", Role(42).String())
}

func TestParseRole(t *testing.T) {
	for _, role := range []Role{RoleUser, RoleAdmin, RoleRoot} {
		parsed, err := ParseRole(role.String())
		require.NoError(t, err)
		assert.Equal(t, role, parsed)
	}

	_, err := ParseRole("SUPERUSER")
	assert.EqualError(t, err, `unknown role "SUPERUSER"`)

	// Wire names are exact, not case-folded.
	_, err = ParseRole("admin")
	assert.Error(t, err)
}

func TestRoleValid(t *testing.T) {
	assert.True(t, RoleUser.Valid())
	assert.True(t, RoleRoot.Valid())
	assert.False(t, Role(-1).Valid())
	assert.False(t, Role(3).Valid())
}
