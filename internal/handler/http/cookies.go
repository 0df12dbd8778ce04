package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/clearpath/auth-service/internal/config"
	"github.com/clearpath/auth-service/internal/domain/models"
	"github.com/clearpath/auth-service/internal/handler/http/middleware"
)

// CookieWriter delivers and clears the token cookies. Both cookies are
// HTTP-only with SameSite=Strict; their lifetimes track the token expiries.
type CookieWriter struct {
	cfg config.CookieConfig
}

func NewCookieWriter(cfg config.CookieConfig) *CookieWriter {
	return &CookieWriter{cfg: cfg}
}

// SetAuthCookies writes both token cookies for the pair.
func (w *CookieWriter) SetAuthCookies(c *gin.Context, pair *models.TokenPair) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(middleware.AccessTokenCookie, pair.AccessToken,
		maxAge(pair.AccessTokenExpiresAt), "/", w.cfg.Domain, w.cfg.Secure, true)
	c.SetCookie(middleware.RefreshTokenCookie, pair.RefreshToken,
		maxAge(pair.RefreshTokenExpiresAt), "/", w.cfg.Domain, w.cfg.Secure, true)
}

// ClearAuthCookies expires both token cookies. Attributes must match the
// ones used when setting, or browsers keep the originals.
func (w *CookieWriter) ClearAuthCookies(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(middleware.AccessTokenCookie, "", -1, "/", w.cfg.Domain, w.cfg.Secure, true)
	c.SetCookie(middleware.RefreshTokenCookie, "", -1, "/", w.cfg.Domain, w.cfg.Secure, true)
}

func maxAge(expiresAt time.Time) int {
	seconds := int(time.Until(expiresAt).Seconds())
	if seconds < 1 {
		seconds = 1
	}
	return seconds
}
