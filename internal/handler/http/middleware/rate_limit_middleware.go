package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/clearpath/auth-service/internal/config"
)

// Limiter is the fixed-window counter the rate-limit middleware consults.
type Limiter interface {
	Allow(ctx context.Context, key string, rule config.RateLimitRule) (bool, error)
}

// RateLimit applies a fixed-window limit keyed by client IP under the given
// scope. A failing limiter store lets requests through rather than taking
// the endpoint down.
func RateLimit(limiter Limiter, rule config.RateLimitRule, scope string, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rule.Enabled {
			c.Next()
			return
		}

		key := scope + ":" + c.ClientIP()
		allowed, err := limiter.Allow(c.Request.Context(), key, rule)
		if err != nil {
			logger.Warn("rate limiter unavailable, allowing request",
				zap.String("scope", scope), zap.Error(err))
			c.Next()
			return
		}
		if !allowed {
			abortWithProblem(c, http.StatusTooManyRequests, "Too Many Requests",
				"rate limit exceeded, retry later")
			return
		}
		c.Next()
	}
}
