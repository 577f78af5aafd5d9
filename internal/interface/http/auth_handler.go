package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-auth/internal/application"
	"github.com/oksasatya/go-ddd-auth/internal/domain/entity"
	"github.com/oksasatya/go-ddd-auth/internal/domain/errs"
	"github.com/oksasatya/go-ddd-auth/internal/interface/middleware"
	"github.com/oksasatya/go-ddd-auth/pkg/helpers"
	"github.com/oksasatya/go-ddd-auth/pkg/response"
	"github.com/oksasatya/go-ddd-auth/pkg/validation"
)

type registerUseCase interface {
	Execute(ctx context.Context, in application.RegisterUserInput) (*entity.User, error)
}

type loginUseCase interface {
	Execute(ctx context.Context, in application.LoginInput) (*application.AuthenticateUserOutput, error)
}

type currentUserUseCase interface {
	Execute(ctx context.Context, in application.GetCurrentUserInput) (*entity.User, error)
}

type AuthHandler struct {
	Register    registerUseCase
	Login       loginUseCase
	CurrentUser currentUserUseCase
	Cookies     *helpers.Manager
	Logger      logrus.FieldLogger
}

func NewAuthHandler(register registerUseCase, login loginUseCase, current currentUserUseCase, cookies *helpers.Manager, logger logrus.FieldLogger) *AuthHandler {
	return &AuthHandler{Register: register, Login: login, CurrentUser: current, Cookies: cookies, Logger: logger}
}

// Request bodies carry no validation tags: the value objects own every rule
// so callers get the domain codes.
type registerRequest struct {
	AccountID string `json:"accountId"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	Password  string `json:"password"`
}

type loginRequest struct {
	AccountID string `json:"accountId"`
	Password  string `json:"password"`
}

type userView struct {
	ID        string    `json:"id"`
	AccountID string    `json:"accountId"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

type loginView struct {
	User userView `json:"user"`
}

func toUserView(u *entity.User) userView {
	return userView{
		ID:        u.ID(),
		AccountID: u.AccountID().String(),
		Email:     u.Email().String(),
		Name:      u.Name(),
		CreatedAt: u.CreatedAt(),
	}
}

func bindJSON(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		return &HTTPError{
			Status:  http.StatusBadRequest,
			Code:    CodeBadRequest,
			Message: "invalid payload",
			Details: validation.ToDetails(err),
		}
	}
	return nil
}

// RegisterUser POST /api/auth/register
func (h *AuthHandler) RegisterUser(c *gin.Context) {
	var req registerRequest
	if err := bindJSON(c, &req); err != nil {
		writeError(c, h.Logger, err)
		return
	}

	u, err := h.Register.Execute(c.Request.Context(), application.RegisterUserInput{
		AccountID: req.AccountID,
		Email:     req.Email,
		Name:      req.Name,
		Password:  req.Password,
	})
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, toUserView(u), "user registered")
}

// LoginUser POST /api/auth/login. The token travels only in the cookie.
func (h *AuthHandler) LoginUser(c *gin.Context) {
	var req loginRequest
	if err := bindJSON(c, &req); err != nil {
		writeError(c, h.Logger, err)
		return
	}

	out, err := h.Login.Execute(c.Request.Context(), application.LoginInput{
		AccountID: req.AccountID,
		Password:  req.Password,
		IP:        middleware.ClientIP(c),
	})
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	h.Cookies.SetAccessToken(c, out.AccessToken)
	response.Success(c, http.StatusOK, loginView{User: toUserView(out.User)}, "login successful")
}

// Logout POST /api/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	h.Cookies.Clear(c)
	response.Success[any](c, http.StatusOK, gin.H{"loggedOut": true}, "logged out")
}

// Me GET /api/auth/me (JWTAuth required)
func (h *AuthHandler) Me(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	if uid == "" {
		writeError(c, h.Logger, errs.ErrUnauthorized)
		return
	}
	u, err := h.CurrentUser.Execute(c.Request.Context(), application.GetCurrentUserInput{UserID: uid})
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toUserView(u), "current user")
}
