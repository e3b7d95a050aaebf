package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mediguide-api/internal/config"
	"github.com/mediguide-api/internal/service"
	"github.com/rs/zerolog"
)

// NewRouter creates and configures the Gin router.
// limiter may be nil, which disables rate limiting of the AI routes.
func NewRouter(services *service.Services, cfg *config.Config, limiter RateCounter, log zerolog.Logger) *gin.Engine {
	// Set Gin mode
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Middleware
	router.Use(recoveryMiddleware(log))
	router.Use(requestIDMiddleware())
	router.Use(loggingMiddleware(log))
	router.Use(corsMiddleware())

	// Handlers
	authHandler := NewAuthHandler(services, log)
	drugHandler := NewDrugHandler(services, log)
	reactionHandler := NewReactionHandler(services, log)
	aiHandler := NewAIHandler(services, log)
	catalogHandler := NewCatalogHandler(services, log)
	exportHandler := NewExportHandler(services, log)

	optionalAuth := OptionalAuth(services.Auth)
	requireAuth := RequireAuth(services.Auth)
	aiLimit := RateLimit(limiter, cfg.AI.RateLimit, time.Minute, log)

	// Health check
	router.GET("/health", healthCheck)
	router.GET("/metrics", metricsHandler(services))

	// API v1
	v1 := router.Group("/v1")
	{
		accounts := v1.Group("/auth")
		{
			accounts.POST("/register", authHandler.Register)
			accounts.POST("/login", authHandler.Login)
			accounts.GET("/me", requireAuth, authHandler.Me)
		}

		drugs := v1.Group("/drugs")
		{
			drugs.GET("", drugHandler.List)
			drugs.GET("/popular", drugHandler.Popular)
			drugs.GET("/export", exportHandler.StreamExport)
			drugs.GET("/save", aiLimit, catalogHandler.SaveByName)
			drugs.POST("/ai-search", aiLimit, aiHandler.SearchBySymptoms)

			drugs.GET("/:id", drugHandler.Detail)
			drugs.POST("/:id/comments", requireAuth, drugHandler.CreateComment)
			drugs.GET("/:id/reactions", optionalAuth, reactionHandler.Tally)
			drugs.POST("/:id/reactions", requireAuth, reactionHandler.Toggle)
			drugs.GET("/:id/ai-summary", aiLimit, aiHandler.Summary)
			drugs.POST("/:id/ai-image", aiLimit, aiHandler.Image)
		}
	}

	return router
}

// healthCheck returns the health status
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"service":   "mediguide-api",
	})
}

// metricsHandler returns catalog metrics
func metricsHandler(services *service.Services) gin.HandlerFunc {
	return func(c *gin.Context) {
		drugsCount, _ := services.Export.Count(c.Request.Context())

		c.JSON(http.StatusOK, gin.H{
			"database": gin.H{
				"drugs": drugsCount,
			},
			"timestamp": time.Now().Format(time.RFC3339),
		})
	}
}
