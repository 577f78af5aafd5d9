package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/go-ddd-auth/internal/interface/http"
	"github.com/oksasatya/go-ddd-auth/internal/interface/middleware"
)

// AuthModule wires the auth handlers.
// Public (throttled): POST /auth/register, POST /auth/login, POST /auth/logout
// Protected: GET /auth/me
type AuthModule struct {
	Handler  *handlers.AuthHandler
	Tokens   middleware.TokenVerifier
	Throttle gin.HandlerFunc
}

func NewAuthModule(h *handlers.AuthHandler, tokens middleware.TokenVerifier, throttle gin.HandlerFunc) *AuthModule {
	if throttle == nil {
		throttle = func(c *gin.Context) { c.Next() }
	}
	return &AuthModule{Handler: h, Tokens: tokens, Throttle: throttle}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/auth")

	public := auth.Group("", m.Throttle)
	{
		public.POST("/register", m.Handler.RegisterUser)
		public.POST("/login", m.Handler.LoginUser)
		public.POST("/logout", m.Handler.Logout)
	}

	auth.GET("/me", middleware.JWTAuth(m.Tokens), m.Handler.Me)
}
