package sessions

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAndValidateSession(t *testing.T) {
	repo := NewMemoryRepository()
	svc := NewService(repo)
	ctx := context.Background()

	raw, err := svc.CreateSession(ctx, "sub-1", time.Hour)
	require.NoError(t, err)
	require.Len(t, raw, 64)

	stored, _ := repo.GetByHash(ctx, raw)
	assert.Nil(t, stored, "sessions are keyed by hash, not by the raw token")

	sess, err := svc.ValidateRefresh(ctx, raw)
	require.NoError(t, err)
	require.NotNil(t, sess)
	assert.Equal(t, "sub-1", sess.Sub)

	require.NoError(t, svc.DeleteRefresh(ctx, raw))
	sess, err = svc.ValidateRefresh(ctx, raw)
	require.NoError(t, err)
	assert.Nil(t, sess)
}

func TestValidateRefresh_Expired(t *testing.T) {
	repo := NewMemoryRepository()
	svc := NewService(repo)
	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }
	ctx := context.Background()

	raw, err := svc.CreateSession(ctx, "sub-1", time.Minute)
	require.NoError(t, err)

	now = now.Add(time.Minute)
	sess, err := svc.ValidateRefresh(ctx, raw)
	require.NoError(t, err)
	assert.Nil(t, sess)
	left, _ := repo.GetByHash(ctx, hashToken(raw))
	assert.Nil(t, left, "expired sessions are cleaned up")
}

func TestRotate(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	ctx := context.Background()

	raw, err := svc.CreateSession(ctx, "sub-1", time.Hour)
	require.NoError(t, err)

	sess, next, err := svc.Rotate(ctx, raw, time.Hour)
	require.NoError(t, err)
	require.NotNil(t, sess)
	assert.Equal(t, "sub-1", sess.Sub)
	assert.NotEqual(t, raw, next)

	old, _ := svc.ValidateRefresh(ctx, raw)
	assert.Nil(t, old, "rotated tokens cannot be reused")
	cur, _ := svc.ValidateRefresh(ctx, next)
	require.NotNil(t, cur)

	sess, next, err = svc.Rotate(ctx, "unknown", time.Hour)
	require.NoError(t, err)
	assert.Nil(t, sess)
	assert.Empty(t, next)
}
