package api

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/File-Sharing-BondBridg/Video-Service/cmd/middleware"
	"github.com/File-Sharing-BondBridg/Video-Service/internal/api/handlers"
	"github.com/File-Sharing-BondBridg/Video-Service/internal/ratelimit"
)

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers",
			"Content-Type, "+middleware.SessionHeader+", "+middleware.APIKeyHeader)
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(200)
			return
		}
		c.Next()
	}
}

func notFound(c *gin.Context) {
	c.JSON(404, gin.H{"error": "Endpoint not found"})
}

// RegisterRoutes wires every endpoint with its guard and rate-limit class.
func RegisterRoutes(r *gin.Engine, h *handlers.Handler, gate *middleware.Gate, limiter ratelimit.Limiter, l *slog.Logger) {
	r.Use(corsMiddleware())
	r.NoRoute(notFound)

	limit := func(rule ratelimit.Rule) gin.HandlerFunc {
		return middleware.RateLimit(limiter, rule, l)
	}
	session := gate.RequireSession()
	admin := gate.RequireAdmin()
	anyAuth := gate.RequireAuth()

	r.GET("/health", h.Health)

	authGroup := r.Group("/auth")
	{
		authGroup.POST("/login", limit(ratelimit.Login), h.Login)
		authGroup.POST("/logout", limit(ratelimit.General), session, h.Logout)
		authGroup.GET("/verify", limit(ratelimit.Read), session, h.Verify)
	}

	adminGroup := r.Group("/admin")
	{
		adminGroup.GET("/api-keys", limit(ratelimit.General), session, admin, h.ListAllAPIKeys)
		adminGroup.POST("/api-keys/create", limit(ratelimit.Create), session, admin, h.CreateAPIKeyForUser)
		adminGroup.POST("/api-keys/:id/revoke", limit(ratelimit.General), session, admin, h.RevokeAnyAPIKey)
		adminGroup.GET("/users", limit(ratelimit.General), session, admin, h.ListUsers)
		adminGroup.POST("/users/create", limit(ratelimit.Create), session, admin, h.CreateUser)
		adminGroup.DELETE("/users/:id", limit(ratelimit.Create), session, admin, h.DeleteUser)
		adminGroup.POST("/users/:id/active", limit(ratelimit.General), session, admin, h.SetUserActive)
	}

	userGroup := r.Group("/user")
	{
		userGroup.GET("/api-keys", limit(ratelimit.General), session, h.ListMyAPIKeys)
		userGroup.POST("/api-keys/create", limit(ratelimit.Create), session, h.CreateMyAPIKey)
		userGroup.POST("/api-keys/:id/revoke", limit(ratelimit.General), session, h.RevokeMyAPIKey)
		userGroup.GET("/api-key-status", limit(ratelimit.Read), session, h.APIKeyStatus)
	}

	r.POST("/download", limit(ratelimit.General), anyAuth, h.Download)
	r.GET("/files/*path", limit(ratelimit.General), anyAuth, h.GetFile)
	r.GET("/list-files", limit(ratelimit.General), anyAuth, h.ListFiles)
	r.DELETE("/delete-file", limit(ratelimit.General), anyAuth, h.DeleteFile)
	r.POST("/formats", limit(ratelimit.General), anyAuth, h.Formats)
	r.GET("/disk-usage", limit(ratelimit.General), anyAuth, h.DiskUsage)
}
