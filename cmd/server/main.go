package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/anonto42/nano-midea/followers/internal/cache"
	"github.com/anonto42/nano-midea/followers/internal/counters"
	"github.com/anonto42/nano-midea/followers/internal/events"
	"github.com/anonto42/nano-midea/followers/internal/follows"
	"github.com/anonto42/nano-midea/followers/internal/handlers"
	"github.com/anonto42/nano-midea/followers/internal/middleware"
	"github.com/anonto42/nano-midea/followers/internal/repositories"
	"github.com/anonto42/nano-midea/followers/internal/router"
	"github.com/anonto42/nano-midea/followers/pkg/config"
	"github.com/anonto42/nano-midea/followers/pkg/firebase"
	"github.com/anonto42/nano-midea/followers/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		_ = logger.Init("info", "production")
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	if err := logger.Init(cfg.LogLevel, cfg.Env); err != nil {
		logger.Fatal("failed to initialize logger", zap.Error(err))
	}
	defer func() { _ = logger.Sync() }()

	// Initialize database connections
	db, err := config.InitDB(cfg)
	if err != nil {
		logger.Fatal("failed to initialize databases", zap.Error(err))
	}
	defer db.CloseDB()

	ctx := context.Background()

	repo, storeCheck, err := buildRepository(ctx, cfg, db)
	if err != nil {
		logger.Fatal("failed to prepare relationship store", zap.Error(err))
	}

	cacheStore := cache.NewRedisStore(db.Redis)

	var publisher events.Publisher = events.NopPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		publisher = events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		logger.Info("publishing follow events", zap.Strings("brokers", cfg.KafkaBrokers), zap.String("topic", cfg.KafkaTopic))
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Error("error closing event publisher", zap.Error(err))
		}
	}()

	service := follows.NewService(
		repo,
		counters.NewClient(cfg.AuthServiceURL, cfg.CounterSyncTimeout),
		cacheStore,
		follows.WithLogger(logger.WithModule("follows")),
		follows.WithPublisher(publisher),
		follows.WithCacheTTL(cfg.CacheTTL),
	)

	identity, err := buildIdentity(ctx, cfg)
	if err != nil {
		logger.Fatal("failed to initialize authentication", zap.Error(err))
	}

	e := router.New(router.Dependencies{
		Follows:  service,
		Identity: identity,
		Health: map[string]handlers.HealthCheck{
			"store": storeCheck,
			"cache": cacheStore.Ping,
		},
		CORS:   cfg.CORSConfig(),
		Logger: logger.Logger(),
	})

	metricsServer := echo.New()
	metricsServer.HideBanner = true
	metricsServer.HidePort = true
	metricsServer.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Start servers
	go serve(e, cfg.Port, "api")
	go serve(metricsServer, cfg.MetricsPort, "metrics")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	for _, srv := range []*echo.Echo{e, metricsServer} {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown failed", zap.Error(err))
		}
	}
}

func serve(e *echo.Echo, port, name string) {
	logger.Info("server listening", zap.String("server", name), zap.String("port", port))
	if err := e.Start(":" + port); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("server stopped", zap.String("server", name), zap.Error(err))
	}
}

func buildRepository(ctx context.Context, cfg *config.Config, db *config.DB) (repositories.FollowRepository, handlers.HealthCheck, error) {
	if db.Mongo != nil {
		repo := repositories.NewMongoFollowRepository(db.Mongo.Database(cfg.MongoDatabase))
		if err := repo.EnsureIndexes(ctx); err != nil {
			return nil, nil, err
		}
		return repo, func(ctx context.Context) error { return db.Mongo.Ping(ctx, nil) }, nil
	}

	repo := repositories.NewGormFollowRepository(db.SQL)
	if err := repo.Migrate(); err != nil {
		return nil, nil, err
	}
	sqlDB, err := db.SQL.DB()
	if err != nil {
		return nil, nil, err
	}
	return repo, sqlDB.PingContext, nil
}

func buildIdentity(ctx context.Context, cfg *config.Config) (echo.MiddlewareFunc, error) {
	switch cfg.AuthMode {
	case config.AuthModeJWT:
		return middleware.JWTAuth(cfg.JWTSecret), nil
	case config.AuthModeFirebase:
		client, err := firebase.NewAuthClient(ctx, cfg.FirebaseCredentialsPath)
		if err != nil {
			return nil, err
		}
		return middleware.FirebaseAuth(middleware.FirebaseVerifier{Client: client}), nil
	default:
		return middleware.HeaderIdentity(), nil
	}
}
