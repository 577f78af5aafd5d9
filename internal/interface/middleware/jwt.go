package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-ddd-auth/internal/domain/errs"
	"github.com/oksasatya/go-ddd-auth/pkg/helpers"
	"github.com/oksasatya/go-ddd-auth/pkg/response"
)

const (
	CtxUserIDKey    = "userID"
	CtxAccountIDKey = "accountID"
)

// TokenVerifier is satisfied by helpers.JWTManager.
type TokenVerifier interface {
	Verify(token string) (*helpers.TokenPayload, error)
}

// JWTAuth accepts a Bearer token or the accessToken cookie, verifies it,
// and injects the subject into context. Every failure is the same 401.
func JWTAuth(tokens TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			token, _ = c.Cookie(helpers.AccessTokenCookie)
		}
		if token == "" {
			abortUnauthorized(c)
			return
		}
		payload, err := tokens.Verify(token)
		if err != nil {
			abortUnauthorized(c)
			return
		}
		c.Set(CtxUserIDKey, payload.Sub)
		c.Set(CtxAccountIDKey, payload.AccountID)
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	h := strings.TrimSpace(c.GetHeader("Authorization"))
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

func abortUnauthorized(c *gin.Context) {
	response.Abort(c, http.StatusUnauthorized,
		response.Error(c, string(errs.Unauthorized), errs.ErrUnauthorized.Message, nil))
}
