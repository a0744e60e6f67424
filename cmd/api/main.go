package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/trailsbuddy/trailsbuddy-backend/api/routes"
	"github.com/trailsbuddy/trailsbuddy-backend/internal/cache"
	"github.com/trailsbuddy/trailsbuddy-backend/internal/config"
	"github.com/trailsbuddy/trailsbuddy-backend/internal/events"
	"github.com/trailsbuddy/trailsbuddy-backend/internal/handlers"
	"github.com/trailsbuddy/trailsbuddy-backend/internal/logger"
	"github.com/trailsbuddy/trailsbuddy-backend/internal/metrics"
	mongorepo "github.com/trailsbuddy/trailsbuddy-backend/internal/repositories/mongodb"
	"github.com/trailsbuddy/trailsbuddy-backend/internal/services"
	"github.com/trailsbuddy/trailsbuddy-backend/pkg/jwt"
	"github.com/trailsbuddy/trailsbuddy-backend/pkg/mongodb"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load(".")
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logr, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("Failed to initialise logger: %v", err)
	}
	defer func() { _ = logr.Sync() }()

	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()

	// Connect to MongoDB
	mongoClient, err := mongodb.NewClient(ctx, cfg.MongoDB.URI, cfg.MongoDB.ConnectTimeout)
	if err != nil {
		logr.Fatal("Failed to connect to MongoDB", zap.Error(err))
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			logr.Error("Error disconnecting from MongoDB", zap.Error(err))
		}
	}()
	db := mongoClient.Database(cfg.MongoDB.Database)
	logr.Info("Connected to MongoDB", zap.String("database", cfg.MongoDB.Database))

	m := metrics.New("trailsbuddy")

	// Initialize Repositories
	sequenceRepo := mongorepo.NewSequenceRepository(db, m, logr)
	userRepo := mongorepo.NewUserRepository(db, logr)
	if err := userRepo.EnsureIndexes(ctx); err != nil {
		// Non-fatal: existing data may already hold duplicate ids
		logr.Error("Failed to ensure users indexes", zap.Error(err))
	}

	// Optional collaborators
	opts := []services.Option{services.WithMetrics(m)}
	if cfg.Redis.Addr != "" {
		rdb, err := cache.NewRedisClient(ctx, cfg.Redis, logr)
		if err != nil {
			logr.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer rdb.Close()
		opts = append(opts, services.WithCache(cache.NewUserCache(rdb, cfg.Redis.TTL, logr)))
	}
	if cfg.NATS.URL != "" {
		nc, err := events.Connect(cfg.NATS.URL, logr)
		if err != nil {
			logr.Fatal("Failed to connect to NATS", zap.Error(err))
		}
		defer nc.Drain()
		opts = append(opts, services.WithPublisher(events.NewPublisher(nc, cfg.NATS.Subject, logr)))
	}

	userService := services.NewUserService(sequenceRepo, userRepo, logr, opts...)

	deps := routes.HandlerDependencies{
		RootHandler: handlers.NewRootHandler(mongoClient),
		Metrics:     m,
		Logger:      logr,
	}
	if cfg.JWT.Secret != "" {
		tokens := jwt.NewTokenIssuer(cfg.JWT.Secret, cfg.JWT.ExpiresIn)
		deps.UserHandler = handlers.NewUserHandler(userService, tokens, logr)
		deps.TokenParser = tokens
	} else {
		logr.Warn("APP_JWT_SECRET not set, tokens are disabled and user lookups are unauthenticated")
		deps.UserHandler = handlers.NewUserHandler(userService, nil, logr)
	}

	router := routes.SetupRouter(cfg, deps)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	// Run server in a goroutine so that it doesn't block
	go func() {
		logr.Info("Server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Fatal("Server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logr.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("Server forced to shutdown", zap.Error(err))
	}

	logr.Info("Server exiting")
}
