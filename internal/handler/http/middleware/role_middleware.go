package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/clearpath/auth-service/internal/domain/models"
)

// RequireRole rejects callers whose access token does not carry the role.
// Must run after Auth.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := ClaimsFromContext(c)
		if !ok {
			abortWithProblem(c, http.StatusUnauthorized, "Unauthorized", "missing credentials")
			return
		}
		if !claims.HasRole(role) {
			abortWithProblem(c, http.StatusForbidden, "Forbidden", "insufficient privileges")
			return
		}
		c.Next()
	}
}

// RequireAdmin guards the administrative endpoints.
func RequireAdmin() gin.HandlerFunc {
	return RequireRole(models.RoleAdmin)
}
