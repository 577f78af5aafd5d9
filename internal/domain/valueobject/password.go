package valueobject

import (
	"fmt"
	"strings"

	"github.com/oksasatya/go-ddd-auth/internal/domain/errs"
)

// Password constraints. The upper bound is bcrypt's input limit, so lengths
// are measured in bytes.
const (
	MinPasswordLength = 10
	MaxPasswordLength = 72
)

// PasswordSpecialChars is the fixed set a password must draw at least one
// character from.
const PasswordSpecialChars = `!@#$%^&*()_+-=[]{}|;:'",.<>/?`

const (
	lowercaseLetters = "abcdefghijklmnopqrstuvwxyz"
	digits           = "0123456789"
)

// Password is a plaintext password that passed the policy. It only lives for
// the duration of a request and is never persisted.
type Password struct {
	value string
}

// NewPassword checks raw against the policy and reports the first violation
// only, in a fixed order: too short, too long, lowercase, digit, special.
func NewPassword(raw string) (Password, error) {
	switch {
	case len(raw) < MinPasswordLength:
		return Password{}, errs.New(errs.PasswordTooShort,
			fmt.Sprintf("password must be at least %d characters", MinPasswordLength))
	case len(raw) > MaxPasswordLength:
		return Password{}, errs.New(errs.PasswordTooLong,
			fmt.Sprintf("password must be at most %d characters", MaxPasswordLength))
	case !strings.ContainsAny(raw, lowercaseLetters):
		return Password{}, errs.New(errs.PasswordMissingLowercase,
			"password must contain a lowercase letter")
	case !strings.ContainsAny(raw, digits):
		return Password{}, errs.New(errs.PasswordMissingNumber,
			"password must contain a digit")
	case !strings.ContainsAny(raw, PasswordSpecialChars):
		return Password{}, errs.New(errs.PasswordMissingSpecialChar,
			"password must contain a special character")
	}
	return Password{value: raw}, nil
}

// Reveal returns the plaintext for hashing.
func (p Password) Reveal() string { return p.value }

// String never prints the plaintext.
func (p Password) String() string { return "[REDACTED]" }
