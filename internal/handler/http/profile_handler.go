package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	domainErrors "github.com/clearpath/auth-service/internal/domain/errors"
	"github.com/clearpath/auth-service/internal/domain/models"
	"github.com/clearpath/auth-service/internal/handler/http/middleware"
	"github.com/clearpath/auth-service/internal/service"
)

// ProfileHandler serves the authenticated self-service endpoints. Operations
// that invalidate the caller's credentials (email change, password change,
// account deletion) also revoke the session and clear the token cookies.
type ProfileHandler struct {
	profiles *service.ProfileService
	auth     *service.AuthService
	cookies  *CookieWriter
	logger   *zap.Logger
}

func NewProfileHandler(profiles *service.ProfileService, auth *service.AuthService, cookies *CookieWriter, logger *zap.Logger) *ProfileHandler {
	return &ProfileHandler{
		profiles: profiles,
		auth:     auth,
		cookies:  cookies,
		logger:   logger.Named("profile_handler"),
	}
}

// Get handles GET /api/profile.
func (h *ProfileHandler) Get(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		respondError(c, h.logger, domainErrors.ErrUnauthorized)
		return
	}

	user, err := h.profiles.GetProfile(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, user.ToResponse())
}

// Update handles PUT /api/profile.
func (h *ProfileHandler) Update(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		respondError(c, h.logger, domainErrors.ErrUnauthorized)
		return
	}

	var req models.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	user, err := h.profiles.UpdateProfile(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, user.ToResponse())
}

// ChangeEmail handles PUT /api/profile/change-email. The session is revoked
// on success; the caller must log in with the new address.
func (h *ProfileHandler) ChangeEmail(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		respondError(c, h.logger, domainErrors.ErrUnauthorized)
		return
	}

	var req models.ChangeEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	user, err := h.profiles.ChangeEmail(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	if err := h.auth.Logout(c.Request.Context(), userID); err != nil {
		respondError(c, h.logger, err)
		return
	}
	h.cookies.ClearAuthCookies(c)
	c.JSON(http.StatusOK, gin.H{
		"message": "email changed, please log in again",
		"user":    user.ToResponse(),
	})
}

// ChangePassword handles PUT /api/profile/change-password. The session is
// revoked on success.
func (h *ProfileHandler) ChangePassword(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		respondError(c, h.logger, domainErrors.ErrUnauthorized)
		return
	}

	var req models.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	if err := h.profiles.ChangePassword(c.Request.Context(), userID, req); err != nil {
		respondError(c, h.logger, err)
		return
	}

	if err := h.auth.Logout(c.Request.Context(), userID); err != nil {
		respondError(c, h.logger, err)
		return
	}
	h.cookies.ClearAuthCookies(c)
	c.JSON(http.StatusOK, gin.H{"message": "password changed, please log in again"})
}

// Deactivate handles PUT /api/profile/deactivate.
func (h *ProfileHandler) Deactivate(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		respondError(c, h.logger, domainErrors.ErrUnauthorized)
		return
	}

	user, err := h.profiles.Deactivate(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, user.ToResponse())
}

// Reactivate handles PUT /api/profile/reactivate.
func (h *ProfileHandler) Reactivate(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		respondError(c, h.logger, domainErrors.ErrUnauthorized)
		return
	}

	user, err := h.profiles.Reactivate(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, user.ToResponse())
}

// Delete handles PUT /api/profile/delete. The account is soft-deleted and
// the session revoked.
func (h *ProfileHandler) Delete(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		respondError(c, h.logger, domainErrors.ErrUnauthorized)
		return
	}

	if err := h.profiles.SoftDelete(c.Request.Context(), userID); err != nil {
		respondError(c, h.logger, err)
		return
	}

	if err := h.auth.Logout(c.Request.Context(), userID); err != nil {
		respondError(c, h.logger, err)
		return
	}
	h.cookies.ClearAuthCookies(c)
	c.JSON(http.StatusOK, gin.H{"message": "account deleted"})
}
