package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/clearpath/auth-service/internal/domain/models"
)

// Context keys set by the middleware chain and read by handlers.
const (
	RequestIDKey = "request_id"
	UserIDKey    = "user_id"
	UserEmailKey = "user_email"
	UserRolesKey = "user_roles"
	ClaimsKey    = "access_claims"
)

// RequestIDFromContext returns the request id assigned by RequestID.
func RequestIDFromContext(c *gin.Context) string {
	return c.GetString(RequestIDKey)
}

// UserIDFromContext returns the authenticated user's id, or false when the
// request carried no valid access token.
func UserIDFromContext(c *gin.Context) (uuid.UUID, bool) {
	raw, ok := c.Get(UserIDKey)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := raw.(uuid.UUID)
	return id, ok
}

// ClaimsFromContext returns the verified access-token claims.
func ClaimsFromContext(c *gin.Context) (*models.AccessTokenClaims, bool) {
	raw, ok := c.Get(ClaimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := raw.(*models.AccessTokenClaims)
	return claims, ok
}

// abortWithProblem terminates the request with a problem document matching
// the shape the handlers produce.
func abortWithProblem(c *gin.Context, status int, title, detail string) {
	c.AbortWithStatusJSON(status, gin.H{
		"status":     status,
		"title":      title,
		"detail":     detail,
		"request_id": RequestIDFromContext(c),
	})
}
