package routes

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/sgsgita/moderation-backend/internal/config"
	"github.com/sgsgita/moderation-backend/internal/handler"
	"github.com/sgsgita/moderation-backend/internal/middleware"
	"github.com/sgsgita/moderation-backend/pkg/jwt"
)

// Setup configures all API routes
func Setup(
	router *gin.Engine,
	queueHandler *handler.QueueHandler,
	authHandler *handler.AuthHandler,
	adminHandler *handler.AdminHandler,
	searchHandler *handler.SearchHandler,
	exportHandler *handler.ExportHandler,
	wsHandler *handler.WSHandler,
	healthHandler *handler.HealthHandler,
	jwtManager *jwt.Manager,
	redisClient *redis.Client,
	cfg *config.Config,
) {
	// Health probes (no auth, outside the API prefix)
	router.GET("/health", healthHandler.Health)
	router.GET("/health/database", healthHandler.Database)

	api := router.Group("/api/v1")

	// Authentication endpoints
	auth := api.Group("/auth")
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.RefreshToken)
	auth.GET("/me", middleware.JWTAuth(jwtManager), authHandler.Me)

	// Queue. Enqueue is service-to-service (API key); everything else is a
	// moderator surface behind JWT.
	queue := api.Group("/queue")
	queue.POST("", middleware.IngestAPIKey(cfg.Queue.IngestAPIKey), queueHandler.Enqueue)

	authed := queue.Group("", middleware.JWTAuth(jwtManager))
	authed.GET("", queueHandler.List)
	authed.GET("/stats", queueHandler.GetStats)
	authed.GET("/search", searchHandler.Search)
	authed.GET("/export", exportHandler.Export)
	authed.GET("/:id", queueHandler.GetItem)
	authed.GET("/:id/history", queueHandler.GetHistory)
	authed.POST("/:id/actions",
		middleware.RateLimitPerActor(redisClient, cfg.RateLimit.RequestsPerMinute),
		queueHandler.SubmitAction)

	// Live feed. The handler does its own token check so browser clients
	// can pass ?token=.
	api.GET("/ws", wsHandler.Connect)

	// Admin surface
	admin := api.Group("/admin", middleware.JWTAuth(jwtManager), middleware.RequireAdmin())
	admin.GET("/moderators", adminHandler.ListModerators)
	admin.POST("/moderators", adminHandler.CreateModerator)
	admin.GET("/moderators/:id", adminHandler.GetModerator)
	admin.PUT("/moderators/:id/role", adminHandler.UpdateModeratorRole)
	admin.PUT("/moderators/:id/status", adminHandler.SetModeratorStatus)
	admin.DELETE("/moderators/:id", adminHandler.DeleteModerator)
	admin.GET("/analytics/decisions",
		middleware.CacheWithTTL(redisClient, 5*time.Minute),
		adminHandler.GetDecisionAnalytics)
	admin.POST("/search/reindex", adminHandler.ReindexSearch)
	admin.GET("/audit-logs", adminHandler.ListAuditLogs)
}
