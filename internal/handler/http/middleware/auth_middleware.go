package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	domainErrors "github.com/clearpath/auth-service/internal/domain/errors"
	"github.com/clearpath/auth-service/internal/domain/interfaces"
)

// Cookie names used for token delivery.
const (
	AccessTokenCookie  = "ACCESS_TOKEN"
	RefreshTokenCookie = "REFRESH_TOKEN"
)

// Auth verifies the access token and populates the request context with the
// caller's identity. The token is taken from the Authorization header when
// present, otherwise from the access-token cookie.
func Auth(tokens interfaces.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := TokenFromRequest(c)
		if raw == "" {
			abortWithProblem(c, http.StatusUnauthorized, "Unauthorized", "missing credentials")
			return
		}

		claims, err := tokens.ValidateAccessToken(raw)
		if err != nil {
			detail := "invalid credentials"
			if errors.Is(err, domainErrors.ErrExpiredToken) {
				detail = "token has expired"
			}
			abortWithProblem(c, http.StatusUnauthorized, "Unauthorized", detail)
			return
		}

		userID, err := uuid.Parse(claims.Subject)
		if err != nil {
			abortWithProblem(c, http.StatusUnauthorized, "Unauthorized", "invalid credentials")
			return
		}

		c.Set(UserIDKey, userID)
		c.Set(UserEmailKey, claims.Email)
		c.Set(UserRolesKey, claims.Roles)
		c.Set(ClaimsKey, claims)
		c.Next()
	}
}

// TokenFromRequest extracts the raw access token from the Authorization
// header or the access-token cookie. Returns "" when neither is present.
func TokenFromRequest(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	if cookie, err := c.Cookie(AccessTokenCookie); err == nil {
		return cookie
	}
	return ""
}
