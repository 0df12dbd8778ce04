package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clearpath/auth-service/internal/domain/models"
)

// adminAccess registers an admin account and returns its access cookie value.
func adminAccess(t *testing.T, f *apiFixture) string {
	t.Helper()
	id := f.registerUser(t, "admin@example.com", "Sup3r$ecret")
	f.makeAdmin(t, id)
	access, _ := f.loginUser(t, "admin@example.com", "Sup3r$ecret")
	return access.Value
}

func TestAdminRequiresAdminRole(t *testing.T) {
	f := newAPIFixture(t)
	f.registerUser(t, "jamie@example.com", "Sup3r$ecret")
	access, _ := f.loginUser(t, "jamie@example.com", "Sup3r$ecret")

	rec := f.do(t, http.MethodGet, "/api/admin/users", nil,
		withCookie("ACCESS_TOKEN", access.Value))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	unauthenticated := f.do(t, http.MethodGet, "/api/admin/users", nil)
	assert.Equal(t, http.StatusUnauthorized, unauthenticated.Code)
}

func TestAdminListUsers(t *testing.T) {
	f := newAPIFixture(t)
	access := adminAccess(t, f)
	for i := 0; i < 12; i++ {
		f.registerUser(t, fmt.Sprintf("user%02d@example.com", i), "Sup3r$ecret")
	}

	rec := f.do(t, http.MethodGet, "/api/admin/users", nil,
		withCookie("ACCESS_TOKEN", access))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var page models.CollectionResponse[models.UserResponse]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 10, page.PageSize)
	assert.Equal(t, int64(13), page.TotalCount) // 12 users plus the admin
	assert.Len(t, page.Items, 10)
	assert.True(t, page.HasNext)
}

func TestAdminListRoles(t *testing.T) {
	f := newAPIFixture(t)
	access := adminAccess(t, f)

	rec := f.do(t, http.MethodGet, "/api/admin/roles", nil,
		withCookie("ACCESS_TOKEN", access))
	require.Equal(t, http.StatusOK, rec.Code)

	var page models.CollectionResponse[models.Role]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	require.Len(t, page.Items, 2)
	assert.Equal(t, models.RoleAdmin, page.Items[0].Name)
	assert.Equal(t, models.RoleUser, page.Items[1].Name)
}

func TestAdminGetUser(t *testing.T) {
	f := newAPIFixture(t)
	access := adminAccess(t, f)
	id := f.registerUser(t, "jamie@example.com", "Sup3r$ecret")

	rec := f.do(t, http.MethodGet, "/api/admin/user/"+id.String(), nil,
		withCookie("ACCESS_TOKEN", access))
	require.Equal(t, http.StatusOK, rec.Code)

	badID := f.do(t, http.MethodGet, "/api/admin/user/not-a-uuid", nil,
		withCookie("ACCESS_TOKEN", access))
	assert.Equal(t, http.StatusBadRequest, badID.Code)

	unknown := f.do(t, http.MethodGet, "/api/admin/user/"+uuid.NewString(), nil,
		withCookie("ACCESS_TOKEN", access))
	assert.Equal(t, http.StatusNotFound, unknown.Code)
}

func TestAdminGetUserByEmail(t *testing.T) {
	f := newAPIFixture(t)
	access := adminAccess(t, f)
	f.registerUser(t, "jamie@example.com", "Sup3r$ecret")

	rec := f.do(t, http.MethodGet, "/api/admin/user?email=jamie@example.com", nil,
		withCookie("ACCESS_TOKEN", access))
	require.Equal(t, http.StatusOK, rec.Code)

	blank := f.do(t, http.MethodGet, "/api/admin/user", nil,
		withCookie("ACCESS_TOKEN", access))
	assert.Equal(t, http.StatusBadRequest, blank.Code)

	unknown := f.do(t, http.MethodGet, "/api/admin/user?email=nobody@example.com", nil,
		withCookie("ACCESS_TOKEN", access))
	assert.Equal(t, http.StatusNotFound, unknown.Code)
}

func TestAdminPromoteDemote(t *testing.T) {
	f := newAPIFixture(t)
	access := adminAccess(t, f)
	id := f.registerUser(t, "jamie@example.com", "Sup3r$ecret")

	rec := f.do(t, http.MethodPost, "/api/admin/user/"+id.String()+"/promote", nil,
		withCookie("ACCESS_TOKEN", access))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.UserResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.ElementsMatch(t, []string{models.RoleUser, models.RoleAdmin}, resp.Roles)

	// Promoting again is idempotent.
	again := f.do(t, http.MethodPost, "/api/admin/user/"+id.String()+"/promote", nil,
		withCookie("ACCESS_TOKEN", access))
	require.Equal(t, http.StatusOK, again.Code)
	require.NoError(t, json.Unmarshal(again.Body.Bytes(), &resp))
	assert.ElementsMatch(t, []string{models.RoleUser, models.RoleAdmin}, resp.Roles)

	demote := f.do(t, http.MethodPost, "/api/admin/user/demote?email=jamie@example.com", nil,
		withCookie("ACCESS_TOKEN", access))
	require.Equal(t, http.StatusOK, demote.Code)
	require.NoError(t, json.Unmarshal(demote.Body.Bytes(), &resp))
	assert.Equal(t, []string{models.RoleUser}, resp.Roles)
}

func TestAdminPromoteUnknownUser(t *testing.T) {
	f := newAPIFixture(t)
	access := adminAccess(t, f)

	rec := f.do(t, http.MethodPost, "/api/admin/user/"+uuid.NewString()+"/promote", nil,
		withCookie("ACCESS_TOKEN", access))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdminRevokeToken(t *testing.T) {
	f := newAPIFixture(t)
	access := adminAccess(t, f)
	id := f.registerUser(t, "jamie@example.com", "Sup3r$ecret")
	_, refresh := f.loginUser(t, "jamie@example.com", "Sup3r$ecret")

	rec := f.do(t, http.MethodPost, "/api/admin/user/"+id.String()+"/revoke-token", nil,
		withCookie("ACCESS_TOKEN", access))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, f.users.storedToken(id))

	replay := f.do(t, http.MethodPost, "/api/auth/refresh", nil,
		withCookie("REFRESH_TOKEN", refresh.Value))
	assert.Equal(t, http.StatusUnauthorized, replay.Code)
}

func TestAdminResetPassword(t *testing.T) {
	f := newAPIFixture(t)
	access := adminAccess(t, f)
	id := f.registerUser(t, "jamie@example.com", "Sup3r$ecret")
	f.loginUser(t, "jamie@example.com", "Sup3r$ecret")

	rec := f.do(t, http.MethodPost, "/api/admin/reset-password",
		gin.H{"email": "jamie@example.com", "new_password": "F0rced$ecret"},
		withCookie("ACCESS_TOKEN", access))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Nil(t, f.users.storedToken(id), "reset must terminate the session")

	oldLogin := f.do(t, http.MethodPost, "/api/auth/login",
		gin.H{"email": "jamie@example.com", "password": "Sup3r$ecret"})
	assert.Equal(t, http.StatusUnauthorized, oldLogin.Code)
	f.loginUser(t, "jamie@example.com", "F0rced$ecret")
}

func TestAdminRestoreAndHardDelete(t *testing.T) {
	f := newAPIFixture(t)
	access := adminAccess(t, f)
	id := f.registerUser(t, "jamie@example.com", "Sup3r$ecret")
	userAccess, _ := f.loginUser(t, "jamie@example.com", "Sup3r$ecret")

	del := f.do(t, http.MethodPut, "/api/profile/delete", nil,
		withCookie("ACCESS_TOKEN", userAccess.Value))
	require.Equal(t, http.StatusOK, del.Code)

	restore := f.do(t, http.MethodPut, "/api/admin/user/"+id.String()+"/restore", nil,
		withCookie("ACCESS_TOKEN", access))
	require.Equal(t, http.StatusOK, restore.Code)

	var resp models.UserResponse
	require.NoError(t, json.Unmarshal(restore.Body.Bytes(), &resp))
	assert.False(t, resp.IsDeleted)

	hard := f.do(t, http.MethodDelete, "/api/admin/user/"+id.String(), nil,
		withCookie("ACCESS_TOKEN", access))
	require.Equal(t, http.StatusOK, hard.Code)

	gone := f.do(t, http.MethodGet, "/api/admin/user/"+id.String(), nil,
		withCookie("ACCESS_TOKEN", access))
	assert.Equal(t, http.StatusNotFound, gone.Code)
}
