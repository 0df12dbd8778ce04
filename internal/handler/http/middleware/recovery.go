package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Recovery converts panics into a 500 problem document instead of dropping
// the connection.
func Recovery(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered",
					zap.Any("panic", r),
					zap.String("path", c.Request.URL.Path),
					zap.String("request_id", RequestIDFromContext(c)),
					zap.Stack("stack"),
				)
				abortWithProblem(c, http.StatusInternalServerError,
					"Internal Server Error", "an unexpected error occurred")
			}
		}()
		c.Next()
	}
}
