// Command review runs the review endpoints on their own, for deployments that
// scale reviews apart from the directory tree. It requires MongoDB.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/alang8/Help-Restaurant-Review/internal/app"
	"github.com/alang8/Help-Restaurant-Review/internal/config"
	reviewhandler "github.com/alang8/Help-Restaurant-Review/internal/review/handler"
	"github.com/alang8/Help-Restaurant-Review/pkg/logger"
	"github.com/alang8/Help-Restaurant-Review/pkg/middleware"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

var errNoStore = errors.New("MONGODB_URI is not set; the review service needs the shared node store")

// openStore connects to the MongoDB shared with the main server. Reviews are
// checked against its node collection.
func openStore(ctx context.Context, cfg *config.Config, rdb *redis.Client) (*app.Services, error) {
	if cfg.MongoDB.URI == "" {
		return nil, errNoStore
	}
	return app.Open(ctx, cfg, rdb)
}

func main() {
	logger.Init(os.Getenv("LOG_LEVEL"))

	port := os.Getenv("REVIEW_SERVICE_PORT")
	if port == "" {
		port = "5010"
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rdb := app.ConnectRedis(ctx, cfg.Redis)
	if rdb != nil {
		defer rdb.Close()
	}
	svcs, err := openStore(ctx, cfg, rdb)
	if err != nil {
		logger.Fatalf("review service: %v", err)
	}
	defer func() { _ = svcs.Close(context.Background()) }()

	r := gin.New()
	r.Use(gin.Recovery(), middleware.CORS(cfg.CORS.AllowedOrigins))
	reviewhandler.RegisterReviewRoutes(r, svcs.Reviews, reviewhandler.FeedConfig{BaseURL: cfg.Server.BaseURL, Nodes: svcs.Nodes})

	go func() {
		logger.Infof("review service listening on :%s", port)
		if err := r.Run(":" + port); err != nil {
			logger.Fatalf("review service: %v", err)
		}
	}()
	<-ctx.Done()
	logger.Infof("review service stopping")
}
