package helpers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// AccessTokenCookie is the cookie carrying the access token.
const AccessTokenCookie = "accessToken"

// Manager writes the access token cookie. In production the cookie is
// Secure and SameSite=Strict; elsewhere it is SameSite=Lax.
type Manager struct {
	Domain     string
	Production bool
	// MaxAge matches the token lifetime.
	MaxAge time.Duration
}

func NewCookie(domain string, production bool, maxAge time.Duration) *Manager {
	return &Manager{Domain: domain, Production: production, MaxAge: maxAge}
}

func (m *Manager) sameSite() http.SameSite {
	if m.Production {
		return http.SameSiteStrictMode
	}
	return http.SameSiteLaxMode
}

func (m *Manager) SetAccessToken(c *gin.Context, token string) {
	c.SetSameSite(m.sameSite())
	c.SetCookie(AccessTokenCookie, token, maxAgeSeconds(m.MaxAge), "/", m.Domain, m.Production, true)
}

func (m *Manager) Clear(c *gin.Context) {
	c.SetSameSite(m.sameSite())
	c.SetCookie(AccessTokenCookie, "", -1, "/", m.Domain, m.Production, true)
}

// maxAgeSeconds rounds up so a sub-second lifetime still yields a cookie.
func maxAgeSeconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	sec := int(d / time.Second)
	if d%time.Second != 0 {
		sec++
	}
	return sec
}
