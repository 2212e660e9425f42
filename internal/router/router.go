package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pageza/ideaforge/backend/internal/api"
	"github.com/pageza/ideaforge/backend/internal/logging"
	"github.com/pageza/ideaforge/backend/internal/middleware"
	"github.com/pageza/ideaforge/backend/internal/service"
)

// Dependencies are the handlers and services the routes are built from
type Dependencies struct {
	AuthService       service.IAuthService
	AuthHandler       *api.AuthHandler
	IdeaHandler       *api.IdeaHandler
	RateLimitHandler  *api.RateLimitHandler
	HealthHandler     *api.HealthHandler
	GenerationLimiter *middleware.RateLimiter
	AllowedOrigins    []string
	Logger            *zap.Logger
}

// SetupRouter configures the application routes
func SetupRouter(deps Dependencies) *gin.Engine {
	logger := logging.OrNop(deps.Logger)

	router := gin.New()
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.ErrorHandler(logger))
	router.Use(middleware.CORS(deps.AllowedOrigins))

	// Health check endpoint (no auth required)
	router.GET("/health", deps.HealthHandler.HealthCheck)
	router.GET("/api/health", deps.HealthHandler.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	deps.AuthHandler.RegisterRoutes(v1)

	// Protected routes
	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(deps.AuthService))
	{
		deps.IdeaHandler.RegisterRoutes(protected, deps.GenerationLimiter.RateLimitMiddleware())
		deps.RateLimitHandler.RegisterRoutes(protected)
	}

	return router
}
