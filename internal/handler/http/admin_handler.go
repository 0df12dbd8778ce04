package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/clearpath/auth-service/internal/domain/models"
	"github.com/clearpath/auth-service/internal/service"
)

// AdminHandler serves the administrative endpoints. Every route is guarded
// by the admin role middleware.
type AdminHandler struct {
	admin  *service.AdminService
	logger *zap.Logger
}

func NewAdminHandler(admin *service.AdminService, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{admin: admin, logger: logger.Named("admin_handler")}
}

// ListUsers handles GET /api/admin/users.
func (h *AdminHandler) ListUsers(c *gin.Context) {
	page, err := h.admin.ListUsers(c.Request.Context(), userListParams(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// ListAdmins handles GET /api/admin/admins.
func (h *AdminHandler) ListAdmins(c *gin.Context) {
	page, err := h.admin.ListAdmins(c.Request.Context(), userListParams(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// ListRoles handles GET /api/admin/roles.
func (h *AdminHandler) ListRoles(c *gin.Context) {
	params := models.ListRolesParams{
		Page:        queryInt(c, "page"),
		PageSize:    queryInt(c, "page_size"),
		Search:      c.Query("search"),
		OrderByName: queryBool(c, "order_by_name"),
	}
	page, err := h.admin.ListRoles(c.Request.Context(), params)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// GetUser handles GET /api/admin/user/:id.
func (h *AdminHandler) GetUser(c *gin.Context) {
	id, ok := pathUserID(c)
	if !ok {
		return
	}
	user, err := h.admin.GetUserByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, user.ToResponse())
}

// GetUserByEmail handles GET /api/admin/user?email=.
func (h *AdminHandler) GetUserByEmail(c *gin.Context) {
	email, ok := queryEmail(c)
	if !ok {
		return
	}
	user, err := h.admin.GetUserByEmail(c.Request.Context(), email)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, user.ToResponse())
}

// Promote handles POST /api/admin/user/:id/promote.
func (h *AdminHandler) Promote(c *gin.Context) {
	id, ok := pathUserID(c)
	if !ok {
		return
	}
	user, err := h.admin.PromoteToAdminByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, user.ToResponse())
}

// PromoteByEmail handles POST /api/admin/user/promote?email=.
func (h *AdminHandler) PromoteByEmail(c *gin.Context) {
	email, ok := queryEmail(c)
	if !ok {
		return
	}
	user, err := h.admin.PromoteToAdminByEmail(c.Request.Context(), email)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, user.ToResponse())
}

// Demote handles POST /api/admin/user/:id/demote.
func (h *AdminHandler) Demote(c *gin.Context) {
	id, ok := pathUserID(c)
	if !ok {
		return
	}
	user, err := h.admin.DemoteFromAdminByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, user.ToResponse())
}

// DemoteByEmail handles POST /api/admin/user/demote?email=.
func (h *AdminHandler) DemoteByEmail(c *gin.Context) {
	email, ok := queryEmail(c)
	if !ok {
		return
	}
	user, err := h.admin.DemoteFromAdminByEmail(c.Request.Context(), email)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, user.ToResponse())
}

// RevokeToken handles POST /api/admin/user/:id/revoke-token.
func (h *AdminHandler) RevokeToken(c *gin.Context) {
	id, ok := pathUserID(c)
	if !ok {
		return
	}
	if err := h.admin.RevokeRefreshToken(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "session revoked"})
}

// ResetPassword handles POST /api/admin/reset-password.
func (h *AdminHandler) ResetPassword(c *gin.Context) {
	var req models.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}
	if err := h.admin.ResetPassword(c.Request.Context(), req); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "password reset"})
}

// Restore handles PUT /api/admin/user/:id/restore.
func (h *AdminHandler) Restore(c *gin.Context) {
	id, ok := pathUserID(c)
	if !ok {
		return
	}
	user, err := h.admin.RevertSoftDelete(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, user.ToResponse())
}

// HardDelete handles DELETE /api/admin/user/:id.
func (h *AdminHandler) HardDelete(c *gin.Context) {
	id, ok := pathUserID(c)
	if !ok {
		return
	}
	if err := h.admin.HardDelete(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "account permanently deleted"})
}

func pathUserID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		writeProblem(c, Problem{
			Status: http.StatusBadRequest,
			Detail: "id must be a valid UUID",
		})
		return uuid.Nil, false
	}
	return id, true
}

func queryEmail(c *gin.Context) (string, bool) {
	email := c.Query("email")
	if email == "" {
		writeProblem(c, Problem{
			Status: http.StatusBadRequest,
			Detail: "email query parameter is required",
		})
		return "", false
	}
	return email, true
}

func userListParams(c *gin.Context) models.ListUsersParams {
	return models.ListUsersParams{
		Page:          queryInt(c, "page"),
		PageSize:      queryInt(c, "page_size"),
		Search:        c.Query("search"),
		IsDeleted:     queryBool(c, "is_deleted"),
		IsDeactivated: queryBool(c, "is_deactivated"),
		OrderByName:   queryBool(c, "order_by_name"),
	}
}

func queryInt(c *gin.Context, name string) int {
	v, err := strconv.Atoi(c.Query(name))
	if err != nil {
		return 0
	}
	return v
}

func queryBool(c *gin.Context, name string) bool {
	v, err := strconv.ParseBool(c.Query(name))
	if err != nil {
		return false
	}
	return v
}
