package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/openscribe/draftpad/internal/ratelimit"
	"go.uber.org/zap"
)

// RateLimit returns a per-user rate limiting middleware.
// Must run after Auth so the user id is available.
func RateLimit(limiter *ratelimit.Limiter, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := UserID(c)

		allowed, remaining := limiter.Allow(c.Request.Context(), userID)
		c.Header("X-RateLimit-Remaining", fmt.Sprintf("%.0f", remaining))

		if !allowed {
			logger.Warn("rate limit exceeded",
				zap.String("user_id", userID),
				zap.String("path", c.Request.URL.Path),
			)
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			c.Abort()
			return
		}

		c.Next()
	}
}
