package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/trailsbuddy/trailsbuddy-backend/internal/config"
	"github.com/trailsbuddy/trailsbuddy-backend/internal/handlers"
	"github.com/trailsbuddy/trailsbuddy-backend/internal/metrics"
	"github.com/trailsbuddy/trailsbuddy-backend/internal/middleware"
	"go.uber.org/zap"
)

// HandlerDependencies holds everything the router wires into routes
type HandlerDependencies struct {
	RootHandler *handlers.RootHandler
	UserHandler *handlers.UserHandler
	// TokenParser protects user lookups when set
	TokenParser middleware.TokenParser
	Metrics     *metrics.Metrics
	Logger      *zap.Logger
}

// SetupRouter sets up the router
func SetupRouter(cfg *config.Config, deps HandlerDependencies) *gin.Engine {
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware(cfg.Server.AllowedOrigins))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggerMiddleware(deps.Logger.Named("http")))
	if deps.Metrics != nil {
		router.Use(middleware.MetricsMiddleware(deps.Metrics))
		router.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}

	router.GET("/", deps.RootHandler.Index)
	router.GET("/ping", deps.RootHandler.Ping)
	router.GET("/health", deps.RootHandler.Health)

	router.GET("/users", deps.UserHandler.ListUsers)
	router.POST("/user", deps.UserHandler.CreateUser)

	lookup := []gin.HandlerFunc{deps.UserHandler.GetUser}
	if deps.TokenParser != nil {
		lookup = append([]gin.HandlerFunc{middleware.JWTAuthMiddleware(deps.TokenParser, deps.Logger)}, lookup...)
	}
	router.GET("/user/:id", lookup...)

	return router
}
