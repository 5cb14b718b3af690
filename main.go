package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/alang8/Help-Restaurant-Review/handlers"
	anchorhandler "github.com/alang8/Help-Restaurant-Review/internal/anchor/handler"
	"github.com/alang8/Help-Restaurant-Review/internal/app"
	"github.com/alang8/Help-Restaurant-Review/internal/config"
	"github.com/alang8/Help-Restaurant-Review/internal/jobs"
	linkhandler "github.com/alang8/Help-Restaurant-Review/internal/link/handler"
	nodehandler "github.com/alang8/Help-Restaurant-Review/internal/node/handler"
	"github.com/alang8/Help-Restaurant-Review/internal/oidc"
	reviewhandler "github.com/alang8/Help-Restaurant-Review/internal/review/handler"
	"github.com/alang8/Help-Restaurant-Review/internal/sessions"
	"github.com/alang8/Help-Restaurant-Review/internal/storage"
	"github.com/alang8/Help-Restaurant-Review/internal/tokens"
	"github.com/alang8/Help-Restaurant-Review/pkg/logger"
	"github.com/alang8/Help-Restaurant-Review/pkg/metrics"
	"github.com/alang8/Help-Restaurant-Review/pkg/middleware"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var startTime = time.Now()

func main() {
	// LOG_LEVEL: debug|info|warn|error|fatal
	logger.Init(os.Getenv("LOG_LEVEL"))
	logger.Debugf("startup: LOG_LEVEL=%s", logger.LevelString())

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	logger.Infof("config loaded: keycloak=%v mongo=%v redis=%v minio=%v", cfg.Keycloak.URL != "", cfg.MongoDB.URI != "", cfg.Redis.Host != "", cfg.MinIO.Endpoint != "")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rdb := app.ConnectRedis(ctx, cfg.Redis)
	if rdb != nil {
		sessions.SetBlacklistClient(rdb)
		defer rdb.Close()
	}

	svcs := app.OpenOrMemory(ctx, cfg, rdb)
	defer func() { _ = svcs.Close(context.Background()) }()

	signer, err := tokens.NewSigner(cfg.JWT)
	if err != nil {
		logger.Warnf("service access tokens disabled: %v", err)
		signer = nil
	}
	idTokens := idTokenVerifier(ctx, cfg)
	verifier := buildVerifier(idTokens, signer)

	var images *storage.MinIOStorage
	if cfg.MinIO.Endpoint != "" {
		if images, err = storage.NewMinIOStorage(ctx, cfg.MinIO); err != nil {
			logger.Warnf("object storage disabled: %v", err)
		}
	}

	metrics.RegisterCollectors(prometheus.DefaultRegisterer)

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.Use(middleware.CORS(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics())
	var requireAuth gin.HandlerFunc
	if verifier != nil {
		// claims first so the limiter can key on the user
		r.Use(middleware.OptionalAuth(verifier))
		requireAuth = middleware.AuthMiddleware(verifier)
	}
	if cfg.RateLimit.Enabled {
		if cfg.RateLimit.UseRedis && rdb != nil {
			win := time.Duration(cfg.RateLimit.WindowSeconds) * time.Second
			r.Use(middleware.RedisRateLimitMiddleware(rdb, cfg.RateLimit.RPS, cfg.RateLimit.Burst, win))
		} else {
			r.Use(middleware.RateLimitMiddleware(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
		}
	}

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "healthy")
	})
	r.GET("/ready", func(c *gin.Context) {
		deps := map[string]bool{
			"store":  svcs.Ready(c.Request.Context()),
			"redis":  rdb == nil || rdb.Ping(c.Request.Context()).Err() == nil,
			"oidc":   cfg.Keycloak.URL == "" || verifier != nil,
			"images": images == nil || images.Ready(c.Request.Context()),
		}
		status, state := http.StatusOK, "ready"
		for _, ok := range deps {
			if !ok {
				status, state = http.StatusServiceUnavailable, "not_ready"
			}
		}
		c.JSON(status, gin.H{"status": state, "deps": deps, "uptime": time.Since(startTime).String()})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	handlers.RegisterSwagger(r)

	if signer != nil {
		userSvc, sessionSvc := app.AuthServices(ctx, cfg, svcs, rdb)
		handlers.NewAuthHandler(cfg, userSvc, sessionSvc, signer, idTokens).Register(r, requireAuth)
	} else {
		logger.Warnf("auth routes not registered: JWT_SECRET is not set")
	}

	nodehandler.RegisterNodeRoutes(r, svcs.Nodes)
	reviewhandler.RegisterReviewRoutes(r, svcs.Reviews, reviewhandler.FeedConfig{BaseURL: cfg.Server.BaseURL, Nodes: svcs.Nodes})
	anchorhandler.RegisterAnchorRoutes(r, svcs.Anchors)
	linkhandler.RegisterLinkRoutes(r, svcs.Links)
	var store handlers.ImageStore
	if images != nil {
		store = images
	}
	handlers.RegisterMediaRoutes(r, store)
	handlers.RegisterSitemap(r, svcs.Nodes, cfg.Server.BaseURL)

	var executor *jobs.TaskExecutor
	if cfg.Jobs.Enabled {
		executor = jobs.NewTaskExecutor(jobs.NewRatingSyncTask(cfg.Jobs.RatingSyncSchedule, svcs.Nodes, svcs.Reviews))
		if err := executor.Start(); err != nil {
			logger.Fatalf("failed to start jobs: %v", err)
		}
		defer executor.Stop()
	}

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	go func() {
		logger.Infof("starting restaurant review service on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("server failed: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Infof("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("shutdown: %v", err)
	}
}

// buildVerifier returns the bearer token verifier: Keycloak tokens, the
// service's own access tokens, and unsigned tokens when ALLOW_INSECURE_TOKEN
// is set. It is nil when none is available.
func buildVerifier(idTokens middleware.Verifier, signer *tokens.Signer) middleware.Verifier {
	var chain oidc.Chain
	if idTokens != nil {
		chain = append(chain, idTokens)
	}
	if signer != nil {
		chain = append(chain, signer)
	}
	if len(chain) == 0 {
		logger.Warnf("no token verifier configured; all routes are anonymous")
		return nil
	}
	return chain
}

func idTokenVerifier(ctx context.Context, cfg *config.Config) middleware.Verifier {
	if strings.EqualFold(strings.TrimSpace(os.Getenv("ALLOW_INSECURE_TOKEN")), "true") {
		logger.Warnf("enabling insecure OIDC verifier (integration mode)")
		return oidc.NewInsecureVerifier()
	}
	if cfg.Keycloak.URL == "" || cfg.Keycloak.ClientID == "" {
		return nil
	}
	ver, err := oidc.NewVerifier(ctx, cfg.Keycloak.Issuer(), cfg.Keycloak.ClientID)
	if err != nil {
		logger.Warnf("failed to initialize OIDC verifier: %v", err)
		return nil
	}
	return ver
}
