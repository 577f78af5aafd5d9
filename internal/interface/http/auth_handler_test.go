package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-ddd-auth/internal/application"
	"github.com/oksasatya/go-ddd-auth/internal/domain/entity"
	"github.com/oksasatya/go-ddd-auth/internal/domain/errs"
	handlers "github.com/oksasatya/go-ddd-auth/internal/interface/http"
	"github.com/oksasatya/go-ddd-auth/internal/interface/middleware"
	"github.com/oksasatya/go-ddd-auth/pkg/helpers"
)

type mockRegister struct{ mock.Mock }

func (m *mockRegister) Execute(ctx context.Context, in application.RegisterUserInput) (*entity.User, error) {
	args := m.Called(ctx, in)
	u, _ := args.Get(0).(*entity.User)
	return u, args.Error(1)
}

type mockLogin struct{ mock.Mock }

func (m *mockLogin) Execute(ctx context.Context, in application.LoginInput) (*application.AuthenticateUserOutput, error) {
	args := m.Called(ctx, in)
	out, _ := args.Get(0).(*application.AuthenticateUserOutput)
	return out, args.Error(1)
}

type mockCurrent struct{ mock.Mock }

func (m *mockCurrent) Execute(ctx context.Context, in application.GetCurrentUserInput) (*entity.User, error) {
	args := m.Called(ctx, in)
	u, _ := args.Get(0).(*entity.User)
	return u, args.Error(1)
}

type stubVerifier struct{}

func (stubVerifier) Verify(token string) (*helpers.TokenPayload, error) {
	if token == "good" {
		return &helpers.TokenPayload{Sub: "user-1", AccountID: "alice_01"}, nil
	}
	return nil, errs.ErrUnauthorized
}

type fixture struct {
	register *mockRegister
	login    *mockLogin
	current  *mockCurrent
	hook     *logtest.Hook
	engine   *gin.Engine
}

func newFixture(production bool) *fixture {
	gin.SetMode(gin.TestMode)
	logger, hook := logtest.NewNullLogger()
	f := &fixture{register: new(mockRegister), login: new(mockLogin), current: new(mockCurrent), hook: hook}

	h := handlers.NewAuthHandler(f.register, f.login, f.current, helpers.NewCookie("", production, 15*time.Minute), logger)
	r := gin.New()
	r.Use(middleware.RequestIDMiddleware(), middleware.RealIP())
	g := r.Group("/api/auth")
	g.POST("/register", h.RegisterUser)
	g.POST("/login", h.LoginUser)
	g.POST("/logout", h.Logout)
	g.GET("/me", middleware.JWTAuth(stubVerifier{}), h.Me)
	f.engine = r
	return f
}

func (f *fixture) do(method, path, body string, mod func(*http.Request)) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if mod != nil {
		mod(req)
	}
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)
	return w
}

type errorBody struct {
	Message    string `json:"message"`
	Extensions struct {
		Code      string            `json:"code"`
		RequestID string            `json:"request_id"`
		Details   map[string]string `json:"details"`
	} `json:"extensions"`
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var b errorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &b))
	return b
}

func testUser(t *testing.T) *entity.User {
	t.Helper()
	u, err := entity.NewUser(entity.CreateUserParams{
		AccountID:    "alice_01",
		Email:        "alice@example.com",
		Name:         "Alice",
		PasswordHash: "$2a$10$secret-hash",
	})
	require.NoError(t, err)
	return u
}

func TestRegisterUser(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		f := newFixture(false)
		u := testUser(t)
		f.register.On("Execute", mock.Anything, application.RegisterUserInput{
			AccountID: "alice_01", Email: "alice@example.com", Name: "Alice", Password: "p4ss-word!",
		}).Return(u, nil)

		w := f.do(http.MethodPost, "/api/auth/register",
			`{"accountId":"alice_01","email":"alice@example.com","name":"Alice","password":"p4ss-word!"}`, nil)
		require.Equal(t, http.StatusCreated, w.Code)

		var resp struct {
			Success bool                   `json:"success"`
			Data    map[string]interface{} `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Success)
		assert.Equal(t, u.ID(), resp.Data["id"])
		assert.Equal(t, "alice_01", resp.Data["accountId"])
		assert.Equal(t, "alice@example.com", resp.Data["email"])
		assert.Equal(t, "Alice", resp.Data["name"])
		assert.NotNil(t, resp.Data["createdAt"])
		assert.NotContains(t, w.Body.String(), "secret-hash")
	})

	t.Run("domain validation error", func(t *testing.T) {
		f := newFixture(false)
		f.register.On("Execute", mock.Anything, mock.Anything).
			Return(nil, errs.New(errs.PasswordTooShort, "password must be at least 10 characters"))

		w := f.do(http.MethodPost, "/api/auth/register", `{"accountId":"alice_01","password":"x"}`, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		b := decodeError(t, w)
		assert.Equal(t, "PASSWORD_TOO_SHORT", b.Extensions.Code)
		assert.NotEmpty(t, b.Extensions.RequestID)
	})

	t.Run("conflict", func(t *testing.T) {
		f := newFixture(false)
		f.register.On("Execute", mock.Anything, mock.Anything).Return(nil, errs.ErrEmailAlreadyExists)

		w := f.do(http.MethodPost, "/api/auth/register", `{}`, nil)
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "EMAIL_ALREADY_EXISTS", decodeError(t, w).Extensions.Code)
	})

	t.Run("malformed json", func(t *testing.T) {
		f := newFixture(false)
		w := f.do(http.MethodPost, "/api/auth/register", `{"accountId": 12}`, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		b := decodeError(t, w)
		assert.Equal(t, "BAD_REQUEST", b.Extensions.Code)
		assert.Equal(t, "must be a string", b.Extensions.Details["accountId"])
		f.register.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything)
	})

	t.Run("internal error hides detail", func(t *testing.T) {
		f := newFixture(false)
		f.register.On("Execute", mock.Anything, mock.Anything).Return(nil, errors.New("pq: connection to 10.1.2.3 refused"))

		w := f.do(http.MethodPost, "/api/auth/register", `{}`, nil)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, "INTERNAL_SERVER_ERROR", decodeError(t, w).Extensions.Code)
		assert.NotContains(t, w.Body.String(), "10.1.2.3")
		require.NotNil(t, f.hook.LastEntry())
		assert.Contains(t, f.hook.LastEntry().Data["error"], "10.1.2.3")
	})
}

func TestLoginUser(t *testing.T) {
	t.Run("sets cookie and returns user", func(t *testing.T) {
		f := newFixture(false)
		u := testUser(t)
		f.login.On("Execute", mock.Anything, application.LoginInput{
			AccountID: "alice_01", Password: "p4ss-word!", IP: "203.0.113.7",
		}).Return(&application.AuthenticateUserOutput{AccessToken: "signed-token", User: u}, nil)

		w := f.do(http.MethodPost, "/api/auth/login", `{"accountId":"alice_01","password":"p4ss-word!"}`, func(r *http.Request) {
			r.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
		})
		require.Equal(t, http.StatusOK, w.Code)

		cookies := w.Result().Cookies()
		require.Len(t, cookies, 1)
		ck := cookies[0]
		assert.Equal(t, "accessToken", ck.Name)
		assert.Equal(t, "signed-token", ck.Value)
		assert.Equal(t, 900, ck.MaxAge)
		assert.True(t, ck.HttpOnly)
		assert.False(t, ck.Secure)
		assert.Equal(t, http.SameSiteLaxMode, ck.SameSite)
		assert.Equal(t, "/", ck.Path)

		var resp struct {
			Data struct {
				User map[string]interface{} `json:"user"`
			} `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "alice_01", resp.Data.User["accountId"])
		assert.NotContains(t, w.Body.String(), "signed-token")
	})

	t.Run("production cookie is secure and strict", func(t *testing.T) {
		f := newFixture(true)
		f.login.On("Execute", mock.Anything, mock.Anything).
			Return(&application.AuthenticateUserOutput{AccessToken: "tok", User: testUser(t)}, nil)

		w := f.do(http.MethodPost, "/api/auth/login", `{"accountId":"alice_01","password":"x"}`, nil)
		require.Equal(t, http.StatusOK, w.Code)
		ck := w.Result().Cookies()[0]
		assert.True(t, ck.Secure)
		assert.Equal(t, http.SameSiteStrictMode, ck.SameSite)
	})

	t.Run("invalid credentials", func(t *testing.T) {
		f := newFixture(false)
		f.login.On("Execute", mock.Anything, mock.Anything).Return(nil, errs.ErrInvalidCredentials)

		w := f.do(http.MethodPost, "/api/auth/login", `{"accountId":"alice_01","password":"x"}`, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "INVALID_CREDENTIALS", decodeError(t, w).Extensions.Code)
		assert.Empty(t, w.Result().Cookies())
	})

	t.Run("locked", func(t *testing.T) {
		f := newFixture(false)
		f.login.On("Execute", mock.Anything, mock.Anything).Return(nil, errs.ErrAccountTemporarilyLocked)

		w := f.do(http.MethodPost, "/api/auth/login", `{"accountId":"alice_01","password":"x"}`, nil)
		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.Equal(t, "ACCOUNT_TEMPORARILY_LOCKED", decodeError(t, w).Extensions.Code)
	})
}

func TestLogout(t *testing.T) {
	f := newFixture(false)
	w := f.do(http.MethodPost, "/api/auth/logout", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	ck := w.Result().Cookies()
	require.Len(t, ck, 1)
	assert.Equal(t, "accessToken", ck[0].Name)
	assert.Equal(t, -1, ck[0].MaxAge)
}

func TestMe(t *testing.T) {
	t.Run("cookie token", func(t *testing.T) {
		f := newFixture(false)
		u := testUser(t)
		f.current.On("Execute", mock.Anything, application.GetCurrentUserInput{UserID: "user-1"}).Return(u, nil)

		w := f.do(http.MethodGet, "/api/auth/me", "", func(r *http.Request) {
			r.AddCookie(&http.Cookie{Name: "accessToken", Value: "good"})
		})
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"accountId":"alice_01"`)
	})

	t.Run("bearer token", func(t *testing.T) {
		f := newFixture(false)
		f.current.On("Execute", mock.Anything, application.GetCurrentUserInput{UserID: "user-1"}).Return(testUser(t), nil)

		w := f.do(http.MethodGet, "/api/auth/me", "", func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer good")
		})
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("missing and bad tokens look the same", func(t *testing.T) {
		f := newFixture(false)
		missing := f.do(http.MethodGet, "/api/auth/me", "", nil)
		bad := f.do(http.MethodGet, "/api/auth/me", "", func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer forged")
		})

		for _, w := range []*httptest.ResponseRecorder{missing, bad} {
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			b := decodeError(t, w)
			assert.Equal(t, "UNAUTHORIZED", b.Extensions.Code)
		}
		assert.Equal(t, decodeError(t, missing).Message, decodeError(t, bad).Message)
		f.current.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything)
	})

	t.Run("deleted user", func(t *testing.T) {
		f := newFixture(false)
		f.current.On("Execute", mock.Anything, mock.Anything).Return(nil, errs.ErrUnauthorized)

		w := f.do(http.MethodGet, "/api/auth/me", "", func(r *http.Request) {
			r.Header.Set("Authorization", "Bearer good")
		})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
