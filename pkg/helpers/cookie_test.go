package helpers_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-ddd-auth/pkg/helpers"
)

func writeCookie(t *testing.T, m *helpers.Manager, fn func(*helpers.Manager, *gin.Context)) *http.Cookie {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	fn(m, c)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	return cookies[0]
}

func TestManager_SetAccessToken(t *testing.T) {
	t.Run("development", func(t *testing.T) {
		m := helpers.NewCookie("", false, 15*time.Minute)
		ck := writeCookie(t, m, func(m *helpers.Manager, c *gin.Context) { m.SetAccessToken(c, "tok") })

		assert.Equal(t, helpers.AccessTokenCookie, ck.Name)
		assert.Equal(t, "tok", ck.Value)
		assert.Equal(t, "/", ck.Path)
		assert.Equal(t, 900, ck.MaxAge)
		assert.True(t, ck.HttpOnly)
		assert.False(t, ck.Secure)
		assert.Equal(t, http.SameSiteLaxMode, ck.SameSite)
	})

	t.Run("production", func(t *testing.T) {
		m := helpers.NewCookie("auth.example.com", true, 24*time.Hour)
		ck := writeCookie(t, m, func(m *helpers.Manager, c *gin.Context) { m.SetAccessToken(c, "tok") })

		assert.Equal(t, 86400, ck.MaxAge)
		assert.True(t, ck.Secure)
		assert.True(t, ck.HttpOnly)
		assert.Equal(t, http.SameSiteStrictMode, ck.SameSite)
		assert.Equal(t, "auth.example.com", ck.Domain)
	})

	t.Run("sub-second lifetime rounds up", func(t *testing.T) {
		m := helpers.NewCookie("", false, 500*time.Millisecond)
		ck := writeCookie(t, m, func(m *helpers.Manager, c *gin.Context) { m.SetAccessToken(c, "tok") })
		assert.Equal(t, 1, ck.MaxAge)
	})
}

func TestManager_Clear(t *testing.T) {
	m := helpers.NewCookie("", false, time.Minute)
	ck := writeCookie(t, m, func(m *helpers.Manager, c *gin.Context) { m.Clear(c) })

	assert.Equal(t, helpers.AccessTokenCookie, ck.Name)
	assert.Empty(t, ck.Value)
	assert.Equal(t, -1, ck.MaxAge)
}
