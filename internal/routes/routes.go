package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/Charltoon/Memory-Archive/internal/config"
	"github.com/Charltoon/Memory-Archive/internal/handler"
	"github.com/Charltoon/Memory-Archive/internal/middleware"
	"github.com/Charltoon/Memory-Archive/pkg/jwt"
)

// Setup configures all API routes. redisClient may be nil, in which case
// rate limiting is skipped.
func Setup(
	router *gin.Engine,
	memoryHandler *handler.MemoryHandler,
	reactionHandler *handler.ReactionHandler,
	commentHandler *handler.CommentHandler,
	authHandler *handler.AuthHandler,
	uploadHandler *handler.UploadHandler,
	wsHandler *handler.WSHandler,
	jwtManager *jwt.Manager,
	redisClient *redis.Client,
	cfg *config.Config,
) {
	api := router.Group("/api")

	authLimit := middleware.RateLimit(redisClient, middleware.RateLimitConfig{
		RequestsPerMinute: cfg.RateLimit.AuthPerMinute,
		KeyPrefix:         "memories:ratelimit:auth:",
		Message:           "Too many authentication attempts, please try again later",
	})
	writeLimit := middleware.RateLimitPerUser(redisClient, middleware.RateLimitConfig{
		RequestsPerMinute: cfg.RateLimit.WritePerMinute,
		KeyPrefix:         "memories:ratelimit:write:",
		Message:           "Too many requests, please try again later",
	})
	csrf := middleware.CSRFProtection()
	requireAuth := middleware.JWTAuth(jwtManager)
	optionalAuth := middleware.OptionalAuth(jwtManager)

	// Authentication
	auth := api.Group("/auth", authLimit)
	auth.POST("/credentials", authHandler.Credentials)
	auth.POST("/refresh", authHandler.RefreshToken)
	auth.POST("/logout", authHandler.Logout)
	auth.GET("/session", optionalAuth, authHandler.Session)
	auth.GET("/csrf", middleware.GenerateCSRFToken(cfg.Server.CookieSecure))

	// Memories
	memories := api.Group("/memories")
	memories.GET("", optionalAuth, memoryHandler.ListMemories)
	memories.GET("/stats", memoryHandler.Stats)
	memories.GET("/:id", optionalAuth, memoryHandler.GetMemory)
	memories.GET("/:id/like", optionalAuth, reactionHandler.ListReactions)
	memories.GET("/:id/comment", optionalAuth, commentHandler.ListComments)

	writes := memories.Group("", requireAuth, csrf, writeLimit)
	writes.POST("", memoryHandler.CreateMemory)
	writes.PATCH("/:id", memoryHandler.UpdateMemory)
	writes.DELETE("/:id", memoryHandler.DeleteMemory)
	writes.POST("/:id/like", reactionHandler.ToggleReaction)
	writes.POST("/:id/comment", commentHandler.CreateComment)
	writes.PATCH("/:id/comment", commentHandler.PatchComment)
	writes.DELETE("/:id/comment", commentHandler.DeleteComment)

	// Uploads
	if uploadHandler != nil {
		api.POST("/uploads/image", requireAuth, csrf, writeLimit, uploadHandler.UploadImage)
	}

	// Realtime notifications
	if wsHandler != nil {
		api.GET("/ws/notifications", requireAuth, wsHandler.Connect)
	}
}
