// Package errs defines the stable error taxonomy of the auth domain.
//
// Every error that may reach a caller carries a machine-stable Code and a
// human-readable Message. The code is the contract; the message may change.
package errs

import "errors"

// Code is a stable, externally visible error identifier.
type Code string

// Conflict, authentication and rate-limit codes.
const (
	AccountIDAlreadyExists   Code = "ACCOUNT_ID_ALREADY_EXISTS"
	EmailAlreadyExists       Code = "EMAIL_ALREADY_EXISTS"
	InvalidCredentials       Code = "INVALID_CREDENTIALS"
	AccountTemporarilyLocked Code = "ACCOUNT_TEMPORARILY_LOCKED"
	Unauthorized             Code = "UNAUTHORIZED"
)

// Validation codes, grouped by the value object that raises them.
const (
	InvalidAccountIDLength Code = "INVALID_ACCOUNT_ID_LENGTH"
	InvalidAccountIDFormat Code = "INVALID_ACCOUNT_ID_FORMAT"

	InvalidEmailFormat Code = "INVALID_EMAIL_FORMAT"

	PasswordTooShort           Code = "PASSWORD_TOO_SHORT"
	PasswordTooLong            Code = "PASSWORD_TOO_LONG"
	PasswordMissingLowercase   Code = "PASSWORD_MISSING_LOWERCASE"
	PasswordMissingNumber      Code = "PASSWORD_MISSING_NUMBER"
	PasswordMissingSpecialChar Code = "PASSWORD_MISSING_SPECIAL_CHAR"

	NameRequired Code = "NAME_REQUIRED"
	NameTooLong  Code = "NAME_TOO_LONG"
)

// InternalServerError is the code every unclassified failure collapses to.
const InternalServerError Code = "INTERNAL_SERVER_ERROR"

// Kind groups codes into the tiers of the taxonomy.
type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindConflict
	KindAuthentication
	KindRateLimit
)

var kinds = map[Code]Kind{
	AccountIDAlreadyExists:     KindConflict,
	EmailAlreadyExists:         KindConflict,
	InvalidCredentials:         KindAuthentication,
	Unauthorized:               KindAuthentication,
	AccountTemporarilyLocked:   KindRateLimit,
	InvalidAccountIDLength:     KindValidation,
	InvalidAccountIDFormat:     KindValidation,
	InvalidEmailFormat:         KindValidation,
	PasswordTooShort:           KindValidation,
	PasswordTooLong:            KindValidation,
	PasswordMissingLowercase:   KindValidation,
	PasswordMissingNumber:      KindValidation,
	PasswordMissingSpecialChar: KindValidation,
	NameRequired:               KindValidation,
	NameTooLong:                KindValidation,
}

// Known reports whether c is part of the public code surface.
func Known(c Code) bool {
	if c == InternalServerError {
		return true
	}
	_, ok := kinds[c]
	return ok
}

// KindOf returns the tier of c, or KindUnknown.
func KindOf(c Code) Kind {
	return kinds[c]
}

// Error is a domain error with a stable code.
type Error struct {
	Code    Code
	Message string
}

// New creates a domain error.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

func (e *Error) Error() string {
	return string(e.Code) + ": " + e.Message
}

// Is matches any *Error carrying the same code, so sentinel comparisons work
// with errors.Is regardless of message.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// CodeOf extracts the code of a domain error anywhere in err's chain.
func CodeOf(err error) (Code, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Code, true
	}
	return "", false
}

// HasCode reports whether err carries code.
func HasCode(err error, code Code) bool {
	c, ok := CodeOf(err)
	return ok && c == code
}

// Sentinels for the non-validation tiers. Messages are deliberately generic.
var (
	ErrAccountIDAlreadyExists   = New(AccountIDAlreadyExists, "account id is already in use")
	ErrEmailAlreadyExists       = New(EmailAlreadyExists, "email is already in use")
	ErrInvalidCredentials       = New(InvalidCredentials, "invalid account id or password")
	ErrAccountTemporarilyLocked = New(AccountTemporarilyLocked, "too many failed login attempts, try again later")
	ErrUnauthorized             = New(Unauthorized, "authentication required")
)
