// Package valueobject holds the validated, immutable values the user
// aggregate is built from. Constructors either return a valid value or an
// *errs.Error carrying a stable code; there is no other way to obtain one.
package valueobject

import (
	"fmt"
	"regexp"
	"unicode/utf8"

	"github.com/oksasatya/go-ddd-auth/internal/domain/errs"
)

// Account id constraints.
const (
	MinAccountIDLength = 3
	MaxAccountIDLength = 20
)

var accountIDPattern = regexp.MustCompile(`^[a-z0-9_]+$`)

// AccountID is a login handle: lowercase letters, digits and underscores.
type AccountID struct {
	value string
}

// NewAccountID validates raw. Length is checked before the character set.
func NewAccountID(raw string) (AccountID, error) {
	n := utf8.RuneCountInString(raw)
	if n < MinAccountIDLength || n > MaxAccountIDLength {
		return AccountID{}, errs.New(errs.InvalidAccountIDLength,
			fmt.Sprintf("account id must be between %d and %d characters", MinAccountIDLength, MaxAccountIDLength))
	}
	if !accountIDPattern.MatchString(raw) {
		return AccountID{}, errs.New(errs.InvalidAccountIDFormat,
			"account id may only contain lowercase letters, digits and underscores")
	}
	return AccountID{value: raw}, nil
}

func (a AccountID) String() string { return a.value }

// Equals compares by value.
func (a AccountID) Equals(other AccountID) bool { return a.value == other.value }
