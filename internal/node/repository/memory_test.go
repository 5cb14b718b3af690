package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alang8/Help-Restaurant-Review/internal/node"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRepo_CreateGetDuplicate(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepo()
	n := &node.Node{NodeID: "text.1", Type: node.TypeText, Title: "a", FilePath: node.FilePath{Path: []string{"text.1"}}}
	require.NoError(t, r.Create(ctx, n))
	require.ErrorIs(t, r.Create(ctx, n), ErrDuplicate)

	got, err := r.Get(ctx, "text.1")
	require.NoError(t, err)
	got.Title = "changed"
	again, _ := r.Get(ctx, "text.1")
	assert.Equal(t, "a", again.Title, "returned values must not alias the store")

	_, err = r.Get(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryRepo_ChildrenAndDescendants(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepo()
	now := time.Now()
	require.NoError(t, r.Create(ctx, &node.Node{NodeID: "folder.a", Type: node.TypeFolder, FilePath: node.FilePath{Path: []string{"folder.a"}}, DateCreated: now}))
	require.NoError(t, r.Create(ctx, &node.Node{NodeID: "text.b", Type: node.TypeText, FilePath: node.FilePath{Path: []string{"folder.a", "text.b"}}, DateCreated: now.Add(time.Second)}))
	require.NoError(t, r.AddChild(ctx, "folder.a", "text.b"))
	require.NoError(t, r.AddChild(ctx, "folder.a", "text.b"))

	p, _ := r.Get(ctx, "folder.a")
	assert.Equal(t, []string{"text.b"}, p.FilePath.Children)

	desc, err := r.Descendants(ctx, "folder.a")
	require.NoError(t, err)
	require.Len(t, desc, 1)
	assert.Equal(t, "text.b", desc[0].NodeID)

	all, _ := r.List(ctx)
	require.Len(t, all, 2)
	assert.Equal(t, "text.b", all[0].NodeID, "newest first")

	require.NoError(t, r.RemoveChild(ctx, "folder.a", "text.b"))
	p, _ = r.Get(ctx, "folder.a")
	assert.Empty(t, p.FilePath.Children)

	n, err := r.Delete(ctx, []string{"folder.a", "text.b", "nope"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestMemoryRepo_RatingSummaryAndSearch(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepo()
	require.NoError(t, r.Create(ctx, &node.Node{
		NodeID: "restaurant.1", Type: node.TypeRestaurant, Title: "Noodle Bar",
		Restaurant: &node.RestaurantContent{Location: "Providence", Reviews: []string{}},
	}))
	require.NoError(t, r.Create(ctx, &node.Node{NodeID: "text.1", Type: node.TypeText, Title: "notes", Content: "great noodles"}))
	require.ErrorIs(t, r.SetRatingSummary(ctx, "text.1", node.RatingSummary{}), ErrNotFound)

	avg := 4.5
	require.NoError(t, r.SetRatingSummary(ctx, "restaurant.1", node.RatingSummary{Average: &avg, RootIDs: []string{"review.1"}}))
	got, _ := r.Get(ctx, "restaurant.1")
	require.NotNil(t, got.Restaurant.Rating)
	assert.Equal(t, 4.5, *got.Restaurant.Rating)
	assert.Equal(t, []string{"review.1"}, got.Restaurant.Reviews)

	res, _ := r.Search(ctx, "NOODLE", "")
	assert.Len(t, res, 2)
	res, _ = r.Search(ctx, "providence", node.TypeRestaurant)
	assert.Len(t, res, 1)
	res, _ = r.Search(ctx, "noodle", node.TypeFolder)
	assert.Empty(t, res)
}
