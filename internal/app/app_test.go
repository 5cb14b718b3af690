package app

import (
	"context"
	"testing"
	"time"

	"github.com/alang8/Help-Restaurant-Review/internal/anchor"
	"github.com/alang8/Help-Restaurant-Review/internal/config"
	"github.com/alang8/Help-Restaurant-Review/internal/link"
	"github.com/alang8/Help-Restaurant-Review/internal/node"
	"github.com/alang8/Help-Restaurant-Review/internal/review"
	mr "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_DeleteCascades(t *testing.T) {
	ctx := context.Background()
	s := Memory(&config.Config{}, nil)
	require.True(t, s.Ready(ctx))

	folder, err := s.Nodes.Create(ctx, &node.Node{NodeID: "folder.1", Type: node.TypeFolder, Title: "Downtown"})
	require.NoError(t, err)
	_, err = s.Nodes.Create(ctx, &node.Node{
		NodeID: "restaurant.1", Type: node.TypeRestaurant, Title: "Noodle Bar",
		FilePath: node.FilePath{Path: []string{folder.NodeID, "restaurant.1"}},
	})
	require.NoError(t, err)
	_, err = s.Nodes.Create(ctx, &node.Node{NodeID: "text.1", Type: node.TypeText, Title: "notes", Content: "try the ramen"})
	require.NoError(t, err)

	_, err = s.Reviews.Create(ctx, &review.Review{ReviewID: "review.1", NodeID: "restaurant.1", Content: "good", Rating: 4})
	require.NoError(t, err)
	a1, err := s.Anchors.Create(ctx, &anchor.Anchor{AnchorID: "anchor.1", NodeID: "restaurant.1"})
	require.NoError(t, err)
	a2, err := s.Anchors.Create(ctx, &anchor.Anchor{AnchorID: "anchor.2", NodeID: "text.1", Extent: &anchor.Extent{Type: anchor.ExtentText, StartCharacter: 8, EndCharacter: 13, Text: "ramen"}})
	require.NoError(t, err)
	_, err = s.Links.Create(ctx, &link.Link{LinkID: "link.1", Anchor1ID: a1.AnchorID, Anchor2ID: a2.AnchorID, Title: "menu"})
	require.NoError(t, err)

	deleted, err := s.Nodes.Delete(ctx, folder.NodeID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"folder.1", "restaurant.1"}, deleted)

	reviews, err := s.Reviews.GetByNode(ctx, "restaurant.1")
	require.NoError(t, err)
	assert.Empty(t, reviews)
	_, err = s.Anchors.Get(ctx, "anchor.1")
	assert.Error(t, err)
	links, err := s.Links.GetByAnchor(ctx, "anchor.2")
	require.NoError(t, err)
	assert.Empty(t, links, "links lose their endpoint with the anchor")
	_, err = s.Anchors.Get(ctx, "anchor.2")
	assert.NoError(t, err)

	require.NoError(t, s.Close(ctx))
}

func TestConnectRedis(t *testing.T) {
	ctx := context.Background()
	assert.Nil(t, ConnectRedis(ctx, config.RedisConfig{}))

	m, err := mr.Run()
	require.NoError(t, err)
	defer m.Close()
	client := ConnectRedis(ctx, config.RedisConfig{Host: m.Host(), Port: m.Port()})
	require.NotNil(t, client)
	defer client.Close()

	// cached reads go through Redis
	s := Memory(&config.Config{}, client)
	_, err = s.Nodes.Create(ctx, &node.Node{NodeID: "restaurant.1", Type: node.TypeRestaurant, Title: "Noodle Bar"})
	require.NoError(t, err)
	_, err = s.Reviews.Rating(ctx, "restaurant.1")
	require.NoError(t, err)
	assert.True(t, m.Exists("restaurants:rating:restaurant.1"))

	assert.Nil(t, ConnectRedis(ctx, config.RedisConfig{Host: "127.0.0.1", Port: "1"}))
}

func TestAuthServices_PrefersRedisForSessions(t *testing.T) {
	ctx := context.Background()
	cfg := &config.Config{}
	s := Memory(cfg, nil)

	users, sess := AuthServices(ctx, cfg, s, nil)
	_, err := users.UpsertFromClaims(ctx, map[string]interface{}{"sub": "u1", "name": "Ana"})
	require.NoError(t, err)
	refresh, err := sess.CreateSession(ctx, "u1", time.Hour)
	require.NoError(t, err)
	got, err := sess.ValidateRefresh(ctx, refresh)
	require.NoError(t, err)
	assert.Equal(t, "u1", got.Sub)

	m, err := mr.Run()
	require.NoError(t, err)
	defer m.Close()
	rdb := redis.NewClient(&redis.Options{Addr: m.Addr()})
	defer rdb.Close()

	_, sess = AuthServices(ctx, cfg, s, rdb)
	_, err = sess.CreateSession(ctx, "u1", time.Hour)
	require.NoError(t, err)
	assert.Len(t, m.Keys(), 1)
}
