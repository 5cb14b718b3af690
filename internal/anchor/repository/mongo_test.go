package repository

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/alang8/Help-Restaurant-Review/internal/anchor"
	"github.com/alang8/Help-Restaurant-Review/internal/database"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMongoRepo(t *testing.T) *MongoRepo {
	t.Helper()
	uri := os.Getenv("MONGODB_URI")
	if uri == "" {
		t.Skip("MONGODB_URI not set")
	}
	ctx := context.Background()
	client, err := database.ConnectMongo(ctx, uri, 5*time.Second)
	require.NoError(t, err)
	col := client.Database("restaurants_test").Collection("anchors_" + strings.ReplaceAll(uuid.NewString(), "-", ""))
	t.Cleanup(func() {
		_ = col.Drop(ctx)
		_ = client.Disconnect(ctx)
	})
	r, err := NewMongoRepo(ctx, col)
	require.NoError(t, err)
	return r
}

func TestMongoRepo_Anchors(t *testing.T) {
	ctx := context.Background()
	r := newMongoRepo(t)
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	text := &anchor.Anchor{AnchorID: "anchor.1", NodeID: "text.1", DateCreated: base,
		Extent: &anchor.Extent{Type: anchor.ExtentText, StartCharacter: 0, EndCharacter: 5, Text: "hello"}}
	whole := &anchor.Anchor{AnchorID: "anchor.2", NodeID: "text.1", DateCreated: base.Add(time.Minute)}
	image := &anchor.Anchor{AnchorID: "anchor.3", NodeID: "image.1", DateCreated: base.Add(2 * time.Minute),
		Extent: &anchor.Extent{Type: anchor.ExtentImage, Left: 1, Top: 2, Width: 3, Height: 4}}
	for _, a := range []*anchor.Anchor{text, whole, image} {
		require.NoError(t, r.Create(ctx, a))
	}
	require.ErrorIs(t, r.Create(ctx, text), ErrDuplicate)

	got, err := r.Get(ctx, "anchor.1")
	require.NoError(t, err)
	require.NotNil(t, got.Extent)
	assert.Equal(t, "hello", got.Extent.Text)
	assert.Equal(t, 5, got.Extent.EndCharacter)
	got, _ = r.Get(ctx, "anchor.2")
	assert.Nil(t, got.Extent)
	_, err = r.Get(ctx, "anchor.none")
	require.ErrorIs(t, err, ErrNotFound)

	list, err := r.ListByNode(ctx, "text.1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "anchor.1", list[0].AnchorID)

	many, err := r.GetMany(ctx, []string{"anchor.3", "anchor.none"})
	require.NoError(t, err)
	require.Len(t, many, 1)
	assert.Equal(t, 4.0, many[0].Extent.Height)

	updated, err := r.UpdateExtent(ctx, "anchor.2", &anchor.Extent{Type: anchor.ExtentText, StartCharacter: 1, EndCharacter: 3, Text: "el"})
	require.NoError(t, err)
	require.NotNil(t, updated.Extent)
	assert.Equal(t, "el", updated.Extent.Text)
	_, err = r.UpdateExtent(ctx, "anchor.none", nil)
	require.ErrorIs(t, err, ErrNotFound)

	ids, err := r.IDsByNodes(ctx, []string{"text.1", "image.1"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"anchor.1", "anchor.2", "anchor.3"}, ids)

	n, err := r.Delete(ctx, []string{"anchor.1", "anchor.none"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
