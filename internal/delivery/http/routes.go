package http

import (
	"github.com/gin-gonic/gin"
	"github.com/jibsearch/backend/config"
	"github.com/jibsearch/backend/internal/observability"
	"github.com/rs/zerolog"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler, logger zerolog.Logger, metrics *observability.Metrics) *gin.Engine {
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(RequestIDMiddleware())
	router.Use(LoggerMiddleware(logger))
	router.Use(MetricsMiddleware(metrics))
	router.Use(RecoveryMiddleware(logger))
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	router.GET("/", handler.Root)
	router.GET("/health", handler.HealthCheck)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))
	router.GET("/categories", handler.Categories)
	router.GET("/suggestions", handler.Suggestions)
	router.GET("/products/sample", handler.SampleProducts)

	// Pipeline endpoints call the model; limit them per client
	limited := router.Group("/", RateLimitMiddleware(cfg.RateLimit.PerIP))
	{
		limited.POST("/search", handler.Search)
		limited.POST("/filter", handler.Filter)
	}

	return router
}
