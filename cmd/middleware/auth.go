package middleware

import (
	"context"
	"crypto/subtle"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/File-Sharing-BondBridg/Video-Service/internal/logger"
	"github.com/File-Sharing-BondBridg/Video-Service/internal/models"
)

const (
	SessionHeader = "X-Session-Token"
	APIKeyHeader  = "X-API-Key"

	identityKey = "identity"
	userIDKey   = "user_id"
)

// Credentials validates the per-user bearer credentials.
type Credentials interface {
	ValidateSession(ctx context.Context, token string) (*models.Identity, bool)
	ValidateAPIKey(ctx context.Context, key string) (*models.Identity, bool)
}

// resolver turns a request into an identity, or reports that its credential
// is absent or invalid.
type resolver func(c *gin.Context) (*models.Identity, bool)

// Gate guards routes with an ordered chain of resolvers.
type Gate struct {
	creds  Credentials
	legacy []byte
	logger *slog.Logger
}

// NewGate builds the gate. A non-empty legacySecret enables the deprecated
// shared-secret credential on X-API-Key.
func NewGate(creds Credentials, legacySecret string, l *slog.Logger) *Gate {
	g := &Gate{creds: creds, logger: logger.Component(l, "auth")}
	if legacySecret != "" {
		g.legacy = []byte(legacySecret)
	}
	return g
}

func (g *Gate) session(c *gin.Context) (*models.Identity, bool) {
	token := c.GetHeader(SessionHeader)
	if token == "" {
		return nil, false
	}
	return g.creds.ValidateSession(c.Request.Context(), token)
}

// legacySecret maps the shared secret to the synthetic admin identity.
//
// Deprecated: kept for clients that predate per-user API keys.
func (g *Gate) legacySecret(c *gin.Context) (*models.Identity, bool) {
	key := c.GetHeader(APIKeyHeader)
	if g.legacy == nil || key == "" {
		return nil, false
	}
	if subtle.ConstantTimeCompare([]byte(key), g.legacy) != 1 {
		return nil, false
	}
	g.logger.Warn("legacy shared secret used", "ip", c.ClientIP(), "path", c.FullPath())
	return models.LegacyIdentity(), true
}

func (g *Gate) apiKey(c *gin.Context) (*models.Identity, bool) {
	key := c.GetHeader(APIKeyHeader)
	if key == "" {
		return nil, false
	}
	return g.creds.ValidateAPIKey(c.Request.Context(), key)
}

func (g *Gate) guard(message string, resolvers ...resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, resolve := range resolvers {
			if id, ok := resolve(c); ok {
				setIdentity(c, id)
				c.Next()
				return
			}
		}
		g.logger.Warn("unauthorized access attempt", "ip", c.ClientIP(), "path", c.FullPath())
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": message})
	}
}

// RequireSession accepts only a session token.
func (g *Gate) RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader(SessionHeader) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Session token required"})
			return
		}
		id, ok := g.session(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired session"})
			return
		}
		setIdentity(c, id)
		c.Next()
	}
}

// RequireAPIKey accepts an API key or the legacy shared secret.
func (g *Gate) RequireAPIKey() gin.HandlerFunc {
	return g.guard("Unauthorized access", g.legacySecret, g.apiKey)
}

// RequireAuth accepts a session token, then an API key or the legacy secret.
func (g *Gate) RequireAuth() gin.HandlerFunc {
	return g.guard("Unauthorized access", g.session, g.legacySecret, g.apiKey)
}

// RequireAdmin must run after one of the identity guards.
func (g *Gate) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := IdentityFrom(c)
		if !id.IsAdmin() {
			username := "unknown"
			if id != nil {
				username = id.Username
			}
			g.logger.Warn("admin access denied", "user", username)
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
			return
		}
		c.Next()
	}
}

func setIdentity(c *gin.Context, id *models.Identity) {
	c.Set(identityKey, id)
	c.Set(userIDKey, id.ID.String())
}

// IdentityFrom returns the identity stored by a guard, or nil.
func IdentityFrom(c *gin.Context) *models.Identity {
	v, ok := c.Get(identityKey)
	if !ok {
		return nil
	}
	id, _ := v.(*models.Identity)
	return id
}
