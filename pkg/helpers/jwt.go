package helpers

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/samber/oops"

	"github.com/oksasatya/go-ddd-auth/internal/domain/errs"
)

// MinJWTSecretLength is the shortest accepted HMAC secret.
const MinJWTSecretLength = 32

// signingMethod is the only algorithm tokens are signed or accepted with.
var signingMethod = jwt.SigningMethodHS256

// TokenSubject is what a token is issued for.
type TokenSubject struct {
	Sub       string
	AccountID string
}

// TokenPayload is a verified token's content.
type TokenPayload struct {
	Sub       string
	AccountID string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Claims is the signed claim set.
type Claims struct {
	AccountID string `json:"accountId"`
	jwt.RegisteredClaims
}

// JWTManager signs and verifies access tokens with a pinned HS256 algorithm.
type JWTManager struct {
	secret    []byte
	expiresIn time.Duration
	now       func() time.Time
}

// JWTOption customizes a JWTManager.
type JWTOption func(*JWTManager)

// WithJWTClock overrides the clock used for iat, exp and validation.
func WithJWTClock(now func() time.Time) JWTOption {
	return func(m *JWTManager) { m.now = now }
}

// NewJWTManager fails when the secret is shorter than MinJWTSecretLength or
// the expiry is not positive.
func NewJWTManager(secret string, expiresIn time.Duration, opts ...JWTOption) (*JWTManager, error) {
	if len(secret) < MinJWTSecretLength {
		return nil, oops.Code("JWT_SECRET_TOO_SHORT").
			Errorf("jwt secret must be at least %d characters", MinJWTSecretLength)
	}
	if expiresIn <= 0 {
		return nil, oops.Code("JWT_INVALID_EXPIRY").Errorf("jwt expiry must be positive, got %s", expiresIn)
	}
	m := &JWTManager{secret: []byte(secret), expiresIn: expiresIn, now: time.Now}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// ExpiresIn returns the configured token lifetime.
func (m *JWTManager) ExpiresIn() time.Duration { return m.expiresIn }

// Sign issues a token for s.
func (m *JWTManager) Sign(s TokenSubject) (string, error) {
	now := m.now()
	claims := &Claims{
		AccountID: s.AccountID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   s.Sub,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.expiresIn)),
		},
	}
	signed, err := jwt.NewWithClaims(signingMethod, claims).SignedString(m.secret)
	if err != nil {
		return "", oops.Code("JWT_SIGN_FAILED").With("sub", s.Sub).Wrap(err)
	}
	return signed, nil
}

// Verify checks signature, algorithm, expiry and payload shape. Every
// failure yields the same Unauthorized error so callers learn nothing about
// which check failed.
func (m *JWTManager) Verify(token string) (*TokenPayload, error) {
	payload, err := m.verify(token)
	if err != nil {
		return nil, errs.ErrUnauthorized
	}
	return payload, nil
}

func (m *JWTManager) verify(token string) (*TokenPayload, error) {
	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		// Checked here as well as through WithValidMethods: the key must never
		// be handed out for any other algorithm.
		if t.Method == nil || t.Method.Alg() != signingMethod.Alg() {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{signingMethod.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return nil, err
	}
	if !parsed.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return nil, fmt.Errorf("missing sub")
	}
	accountID, ok := claims["accountId"].(string)
	if !ok || accountID == "" {
		return nil, fmt.Errorf("missing accountId")
	}

	payload := &TokenPayload{Sub: sub, AccountID: accountID}
	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		payload.IssuedAt = iat.Time
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		payload.ExpiresAt = exp.Time
	}
	return payload, nil
}
