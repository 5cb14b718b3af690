// Package app builds the domain services from configuration. The server, the
// standalone review service and the admin CLI share it.
package app

import (
	"context"
	"fmt"
	"time"

	anchorservice "github.com/alang8/Help-Restaurant-Review/internal/anchor/service"
	"github.com/alang8/Help-Restaurant-Review/internal/cache"
	"github.com/alang8/Help-Restaurant-Review/internal/config"
	"github.com/alang8/Help-Restaurant-Review/internal/database"
	linkservice "github.com/alang8/Help-Restaurant-Review/internal/link/service"
	nodeservice "github.com/alang8/Help-Restaurant-Review/internal/node/service"
	reviewservice "github.com/alang8/Help-Restaurant-Review/internal/review/service"
	"github.com/alang8/Help-Restaurant-Review/pkg/logger"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

// Services holds the wired domain services. Mongo is nil when the services
// run on in-memory stores.
type Services struct {
	Nodes   nodeservice.Service
	Reviews reviewservice.Service
	Anchors anchorservice.Service
	Links   linkservice.Service
	Mongo   *mongo.Client
}

// Close disconnects from Mongo, if connected.
func (s *Services) Close(ctx context.Context) error {
	if s.Mongo == nil {
		return nil
	}
	return s.Mongo.Disconnect(ctx)
}

// Ready reports whether the backing store answers.
func (s *Services) Ready(ctx context.Context) bool {
	if s.Mongo == nil {
		return true
	}
	return s.Mongo.Ping(ctx, nil) == nil
}

// Open connects to MongoDB and builds Mongo-backed services. rdb is optional
// and enables the review cache.
func Open(ctx context.Context, cfg *config.Config, rdb *redis.Client) (*Services, error) {
	client, err := database.ConnectWithRetry(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout, 5, time.Second)
	if err != nil {
		return nil, err
	}
	db := client.Database(cfg.MongoDB.Database)

	nodes, err := nodeservice.NewMongoService(ctx, db.Collection(database.Nodes))
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("nodes: %w", err)
	}
	reviews, err := reviewservice.NewMongoService(ctx, db.Collection(database.Reviews), reviewOptions(cfg, nodes, rdb)...)
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("reviews: %w", err)
	}
	anchors, err := anchorservice.NewMongoService(ctx, db.Collection(database.Anchors), nodes)
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("anchors: %w", err)
	}
	links, err := linkservice.NewMongoService(ctx, db.Collection(database.Links), anchors)
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("links: %w", err)
	}
	s := &Services{Nodes: nodes, Reviews: reviews, Anchors: anchors, Links: links, Mongo: client}
	s.wireCascades()
	logger.Infof("using MongoDB database %q", cfg.MongoDB.Database)
	return s, nil
}

// Memory builds services on in-memory stores.
func Memory(cfg *config.Config, rdb *redis.Client) *Services {
	nodes := nodeservice.NewMemoryService()
	anchors := anchorservice.NewMemoryService(nodes)
	s := &Services{
		Nodes:   nodes,
		Reviews: reviewservice.NewMemoryService(reviewOptions(cfg, nodes, rdb)...),
		Anchors: anchors,
		Links:   linkservice.NewMemoryService(anchors),
	}
	s.wireCascades()
	return s
}

// OpenOrMemory uses MongoDB when a URI is configured and falls back to memory
// when it is not or the connection fails.
func OpenOrMemory(ctx context.Context, cfg *config.Config, rdb *redis.Client) *Services {
	if cfg.MongoDB.URI == "" {
		return Memory(cfg, rdb)
	}
	s, err := Open(ctx, cfg, rdb)
	if err != nil {
		logger.Warnf("MongoDB unavailable (%v), using in-memory stores", err)
		return Memory(cfg, rdb)
	}
	return s
}

// wireCascades makes node deletes remove reviews and anchors, and anchor
// deletes remove links.
func (s *Services) wireCascades() {
	s.Nodes.OnDelete(s.Reviews, s.Anchors)
	s.Anchors.OnDelete(s.Links)
}

func reviewOptions(cfg *config.Config, nodes nodeservice.Service, rdb *redis.Client) []reviewservice.Option {
	opts := []reviewservice.Option{reviewservice.WithNodes(nodes)}
	if rdb != nil {
		opts = append(opts, reviewservice.WithCache(cache.NewRedisReviewCache(rdb, cfg.Cache.ThreadTTL)))
	}
	return opts
}

// ConnectRedis returns a client when Redis is configured and answers a ping,
// or nil.
func ConnectRedis(ctx context.Context, cfg config.RedisConfig) *redis.Client {
	if cfg.Host == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{Addr: cfg.Addr(), Password: cfg.Password, DB: cfg.DB})
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warnf("failed to connect to Redis (%s): %v", cfg.Addr(), err)
		_ = client.Close()
		return nil
	}
	logger.Infof("connected to Redis at %s", cfg.Addr())
	return client
}
