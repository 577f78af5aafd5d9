package valueobject

import (
	"regexp"
	"strings"

	"github.com/oksasatya/go-ddd-auth/internal/domain/errs"
)

// local@domain.tld: no whitespace, exactly one '@', a dot in the domain part.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Email is a trimmed, lowercased e-mail address.
type Email struct {
	value string
}

// NormalizeEmail trims and lowercases raw without validating it.
func NormalizeEmail(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// NewEmail normalizes raw and validates its shape.
func NewEmail(raw string) (Email, error) {
	normalized := NormalizeEmail(raw)
	if normalized == "" || !emailPattern.MatchString(normalized) {
		return Email{}, errs.New(errs.InvalidEmailFormat, "email address is not valid")
	}
	return Email{value: normalized}, nil
}

func (e Email) String() string { return e.value }

// Equals compares normalized values.
func (e Email) Equals(other Email) bool { return e.value == other.value }
