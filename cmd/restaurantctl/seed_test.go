package main

import (
	"context"
	"testing"

	"github.com/alang8/Help-Restaurant-Review/internal/app"
	"github.com/alang8/Help-Restaurant-Review/internal/config"
	"github.com/alang8/Help-Restaurant-Review/internal/node"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeed_IsRepeatable(t *testing.T) {
	ctx := context.Background()
	s := app.Memory(&config.Config{}, nil)

	nodes, reviews, err := seed(ctx, s)
	require.NoError(t, err)
	assert.Equal(t, 1+len(seedRestaurants), nodes)
	assert.Equal(t, len(seedReviews), reviews)

	nodes, reviews, err = seed(ctx, s)
	require.NoError(t, err)
	assert.Zero(t, nodes)
	assert.Zero(t, reviews)

	folder, err := s.Nodes.Get(ctx, seedFolder)
	require.NoError(t, err)
	assert.Len(t, folder.FilePath.Children, len(seedRestaurants))

	harry, err := s.Nodes.Get(ctx, "restaurant.seed-1")
	require.NoError(t, err)
	require.Equal(t, node.TypeRestaurant, harry.Type)
	require.NotNil(t, harry.Restaurant.Rating)
	assert.Equal(t, 4.0, *harry.Restaurant.Rating)
}

func TestSyncRatings_CountsRestaurants(t *testing.T) {
	ctx := context.Background()
	s := app.Memory(&config.Config{}, nil)
	_, _, err := seed(ctx, s)
	require.NoError(t, err)

	n, err := syncRatings(ctx, s)
	require.NoError(t, err)
	assert.Equal(t, len(seedRestaurants), n)
}

func TestOpenServices_RequiresMongo(t *testing.T) {
	t.Setenv("MONGODB_URI", "")
	_, err := openServices(context.Background())
	assert.ErrorIs(t, err, errNoStore)
}
