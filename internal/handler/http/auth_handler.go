package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/clearpath/auth-service/internal/domain/interfaces"
	"github.com/clearpath/auth-service/internal/domain/models"
	"github.com/clearpath/auth-service/internal/handler/http/middleware"
	"github.com/clearpath/auth-service/internal/service"
	"github.com/clearpath/auth-service/internal/utils/metrics"
)

// AuthHandler serves the public authentication endpoints.
type AuthHandler struct {
	auth    *service.AuthService
	tokens  interfaces.TokenService
	cookies *CookieWriter
	logger  *zap.Logger
}

func NewAuthHandler(auth *service.AuthService, tokens interfaces.TokenService, cookies *CookieWriter, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		auth:    auth,
		tokens:  tokens,
		cookies: cookies,
		logger:  logger.Named("auth_handler"),
	}
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	user, err := h.auth.Register(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, user.ToResponse())
}

// Login handles POST /api/auth/login. Tokens travel back as HTTP-only
// cookies; the body carries only the account representation.
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	pair, user, err := h.auth.Login(c.Request.Context(), req)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("failure").Inc()
		respondError(c, h.logger, err)
		return
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	h.cookies.SetAuthCookies(c, pair)
	c.JSON(http.StatusOK, user.ToResponse())
}

// Refresh handles POST /api/auth/refresh. The refresh token is read from its
// cookie only; it never appears in a request body.
func (h *AuthHandler) Refresh(c *gin.Context) {
	presented, _ := c.Cookie(middleware.RefreshTokenCookie)

	pair, user, err := h.auth.Refresh(c.Request.Context(), presented)
	if err != nil {
		metrics.TokenRefreshesTotal.WithLabelValues("failure").Inc()
		respondError(c, h.logger, err)
		return
	}

	metrics.TokenRefreshesTotal.WithLabelValues("success").Inc()
	h.cookies.SetAuthCookies(c, pair)
	c.JSON(http.StatusOK, user.ToResponse())
}

// Logout handles POST /api/auth/logout. It is deliberately lenient: an
// expired access token still identifies the session to revoke, and when no
// usable access token is present the refresh cookie is used instead. The
// response is a 200 and cleared cookies in every case.
func (h *AuthHandler) Logout(c *gin.Context) {
	ctx := c.Request.Context()
	revoked := false

	if raw := middleware.TokenFromRequest(c); raw != "" {
		if claims, err := h.tokens.ParseAccessTokenAllowExpired(raw); err == nil {
			if userID, parseErr := claimsSubject(claims); parseErr == nil {
				if err := h.auth.Logout(ctx, userID); err != nil {
					respondError(c, h.logger, err)
					return
				}
				revoked = true
			}
		}
	}

	if !revoked {
		if presented, err := c.Cookie(middleware.RefreshTokenCookie); err == nil && presented != "" {
			if err := h.auth.RevokeSessionByToken(ctx, presented); err != nil {
				respondError(c, h.logger, err)
				return
			}
		}
	}

	h.cookies.ClearAuthCookies(c)
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

func claimsSubject(claims *models.AccessTokenClaims) (uuid.UUID, error) {
	return uuid.Parse(claims.Subject)
}
