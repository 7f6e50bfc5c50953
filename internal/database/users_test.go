package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-inventory-ledger/internal/models"
)

func TestUsersCreateAndAuthenticate(t *testing.T) {
	users := NewUsers(newTestDB(t))
	ctx := context.Background()

	created, err := users.Create(ctx, "maria", "s3cret!", models.RoleStaff)
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret!", created.PasswordHash)

	_, err = users.Create(ctx, "maria", "other", models.RoleAdmin)
	assert.ErrorIs(t, err, ErrUserExists)

	got, err := users.Authenticate(ctx, "maria", "s3cret!")
	require.NoError(t, err)
	assert.Equal(t, models.RoleStaff, got.Role)

	_, err = users.Authenticate(ctx, "maria", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = users.Authenticate(ctx, "nobody", "s3cret!")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestEnsureAdmin(t *testing.T) {
	users := NewUsers(newTestDB(t))
	ctx := context.Background()

	assert.Error(t, users.EnsureAdmin(ctx, "", ""))

	require.NoError(t, users.EnsureAdmin(ctx, "admin", "changeme"))
	got, err := users.Authenticate(ctx, "admin", "changeme")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, got.Role)

	// already seeded: credentials are ignored
	require.NoError(t, users.EnsureAdmin(ctx, "root", "other"))
	_, err = users.Authenticate(ctx, "root", "other")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
