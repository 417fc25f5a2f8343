package core

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scaffoldkit/go-rbac-middleware/rbac"
	"github.com/scaffoldkit/go-rbac-middleware/token"
)

func TestClaimsContextRoundTrip(t *testing.T) {
	claims := &token.Claims{Subject: "user@example.com", Role: rbac.RoleAdmin}

	ctx := SetClaims(context.Background(), claims)
	assert.True(t, HasClaims(ctx))

	got, err := GetClaims(ctx)
	require.NoError(t, err)
	assert.Same(t, claims, got)
}

func TestGetClaimsMissing(t *testing.T) {
	ctx := context.Background()
	assert.False(t, HasClaims(ctx))

	_, err := GetClaims(ctx)
	assert.ErrorIs(t, err, ErrClaimsNotFound)
}
