package app

import (
	"context"

	"github.com/alang8/Help-Restaurant-Review/internal/config"
	"github.com/alang8/Help-Restaurant-Review/internal/database"
	"github.com/alang8/Help-Restaurant-Review/internal/sessions"
	"github.com/alang8/Help-Restaurant-Review/internal/users"
	"github.com/alang8/Help-Restaurant-Review/pkg/logger"
	"github.com/redis/go-redis/v9"
)

// AuthServices builds the reviewer and session services. Reviewers live next
// to the domain data; sessions prefer Redis, then Mongo, then memory.
func AuthServices(ctx context.Context, cfg *config.Config, s *Services, rdb *redis.Client) (*users.Service, *sessions.Service) {
	var userRepo users.UserRepository = users.NewMemoryUserRepository()
	var sessionRepo sessions.Repository = sessions.NewMemoryRepository()

	if s.Mongo != nil {
		db := s.Mongo.Database(cfg.MongoDB.Database)
		if repo, err := users.NewMongoUserRepository(ctx, db.Collection(database.Users)); err == nil {
			userRepo = repo
		} else {
			logger.Warnf("reviewers kept in memory: %v", err)
		}
		if repo, err := sessions.NewMongoRepository(ctx, db.Collection(database.Sessions)); err == nil {
			sessionRepo = repo
		} else {
			logger.Warnf("sessions: mongo repository unavailable: %v", err)
		}
	}
	if rdb != nil {
		sessionRepo = sessions.NewRedisRepository(rdb, "")
		logger.Infof("using Redis for session storage")
	}
	return users.NewService(userRepo), sessions.NewService(sessionRepo)
}
