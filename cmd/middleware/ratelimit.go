package middleware

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/File-Sharing-BondBridg/Video-Service/internal/logger"
	"github.com/File-Sharing-BondBridg/Video-Service/internal/ratelimit"
)

// RateLimit counts requests per route and client address under rule. A
// limiter error lets the request through.
func RateLimit(limiter ratelimit.Limiter, rule ratelimit.Rule, l *slog.Logger) gin.HandlerFunc {
	l = logger.Component(l, "ratelimit")
	return func(c *gin.Context) {
		key := c.FullPath() + ":" + c.ClientIP()
		res, err := limiter.Allow(c.Request.Context(), key, rule)
		if err != nil {
			l.Error("rate limiter unavailable, allowing request", "rule", rule.Name, "error", err)
			c.Next()
			return
		}

		h := c.Writer.Header()
		h.Set("X-RateLimit-Limit", strconv.Itoa(res.Limit))
		h.Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
		h.Set("X-RateLimit-Reset", strconv.FormatInt(res.ResetAt.Unix(), 10))

		if !res.Allowed {
			retry := int(res.RetryAfter(time.Now()) / time.Second)
			h.Set("Retry-After", strconv.Itoa(retry))
			l.Warn("rate limit exceeded", "ip", c.ClientIP(), "path", c.FullPath(), "rule", rule.Name)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "Rate limit exceeded",
				"message":     "Too many requests. Please try again later.",
				"retry_after": retry,
			})
			return
		}
		c.Next()
	}
}
