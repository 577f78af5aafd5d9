package valueobject

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/oksasatya/go-ddd-auth/internal/domain/errs"
)

// MaxNameLength is measured in characters after trimming.
const MaxNameLength = 50

// Name is a trimmed display name. Case is preserved.
type Name struct {
	value string
}

func NewName(raw string) (Name, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Name{}, errs.New(errs.NameRequired, "name is required")
	}
	if utf8.RuneCountInString(trimmed) > MaxNameLength {
		return Name{}, errs.New(errs.NameTooLong,
			fmt.Sprintf("name must be at most %d characters", MaxNameLength))
	}
	return Name{value: trimmed}, nil
}

func (n Name) String() string { return n.value }
