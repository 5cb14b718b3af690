package users

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpsertFromClaims(t *testing.T) {
	repo := NewMemoryUserRepository()
	svc := NewService(repo)
	ctx := context.Background()

	u, err := svc.UpsertFromClaims(ctx, map[string]interface{}{
		"sub":   "sub-123",
		"email": "x@example.com",
		"name":  "X <b>User</b>",
	})
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, "sub-123", u.Sub)
	assert.Equal(t, "x@example.com", u.Email)
	assert.Equal(t, "X User", u.Name)
	assert.Equal(t, "X User", u.DisplayName)
	assert.False(t, u.CreatedAt.IsZero())
	assert.False(t, u.CreatedAt.After(u.UpdatedAt))

	u2, err := svc.UpsertFromClaims(ctx, map[string]interface{}{"email": "y@e.com"})
	require.NoError(t, err)
	assert.Nil(t, u2, "no subject, no reviewer")
}

func TestUpsertFromClaims_KeepsCreatedAt(t *testing.T) {
	repo := NewMemoryUserRepository()
	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { clock = clock.Add(time.Minute); return clock }
	svc := NewService(repo)
	ctx := context.Background()

	first, err := svc.UpsertFromClaims(ctx, map[string]interface{}{"sub": "s", "preferred_username": "sam"})
	require.NoError(t, err)
	assert.Equal(t, "sam", first.DisplayName)

	second, err := svc.UpsertFromClaims(ctx, map[string]interface{}{"sub": "s", "name": "Sam Doe"})
	require.NoError(t, err)
	assert.Equal(t, first.CreatedAt, second.CreatedAt)
	assert.True(t, second.UpdatedAt.After(first.UpdatedAt))
	assert.Equal(t, "Sam Doe", second.DisplayName)

	got, err := svc.GetBySub(ctx, "s")
	require.NoError(t, err)
	assert.Equal(t, "Sam Doe", got.Name)

	missing, err := svc.GetBySub(ctx, "nobody")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "sub-only", DisplayName(map[string]interface{}{"sub": "sub-only", "name": ""}))
	assert.Equal(t, "a@b.c", DisplayName(map[string]interface{}{"sub": "x", "email": "a@b.c"}))
	assert.Equal(t, "", DisplayName(map[string]interface{}{}))
}
