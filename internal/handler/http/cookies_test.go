package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clearpath/auth-service/internal/config"
	"github.com/clearpath/auth-service/internal/domain/models"
)

func recordCookies(write func(c *gin.Context)) []*http.Cookie {
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	write(c)
	return rec.Result().Cookies()
}

func TestSetAuthCookies(t *testing.T) {
	w := NewCookieWriter(config.CookieConfig{Secure: true})
	pair := &models.TokenPair{
		AccessToken:           "access-value",
		AccessTokenExpiresAt:  time.Now().Add(15 * time.Minute),
		RefreshToken:          "refresh-value",
		RefreshTokenExpiresAt: time.Now().Add(7 * 24 * time.Hour),
	}

	cookies := recordCookies(func(c *gin.Context) { w.SetAuthCookies(c, pair) })
	require.Len(t, cookies, 2)

	byName := map[string]*http.Cookie{}
	for _, c := range cookies {
		byName[c.Name] = c
	}
	access := byName["ACCESS_TOKEN"]
	refresh := byName["REFRESH_TOKEN"]
	require.NotNil(t, access)
	require.NotNil(t, refresh)

	for _, c := range cookies {
		assert.True(t, c.HttpOnly, "%s must be HTTP-only", c.Name)
		assert.True(t, c.Secure, "%s must be secure", c.Name)
		assert.Equal(t, http.SameSiteStrictMode, c.SameSite, "%s must be SameSite=Strict", c.Name)
		assert.Equal(t, "/", c.Path)
	}
	assert.Equal(t, "access-value", access.Value)
	assert.Equal(t, "refresh-value", refresh.Value)
	assert.InDelta(t, 15*60, access.MaxAge, 5, "access cookie lifetime tracks the token expiry")
	assert.InDelta(t, 7*24*3600, refresh.MaxAge, 5, "refresh cookie lifetime tracks the token expiry")
}

func TestClearAuthCookies(t *testing.T) {
	w := NewCookieWriter(config.CookieConfig{Secure: true})

	cookies := recordCookies(func(c *gin.Context) { w.ClearAuthCookies(c) })
	require.Len(t, cookies, 2)
	for _, c := range cookies {
		assert.Empty(t, c.Value)
		assert.Less(t, c.MaxAge, 0, "%s must be expired", c.Name)
		assert.Equal(t, "/", c.Path, "clearing must reuse the original path")
	}
}
