package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/oksasatya/go-ddd-auth/internal/domain/valueobject"
)

// User is the aggregate root of the auth domain.
//
// Fields are unexported so a User can only come from NewUser or
// ReconstituteUser, both of which validate every value object. A User is
// never mutated in place; WithName returns a new value.
type User struct {
	id           string
	accountID    valueobject.AccountID
	email        valueobject.Email
	name         valueobject.Name
	passwordHash string
	createdAt    time.Time
	updatedAt    time.Time
}

// CreateUserParams are the raw inputs for a new account.
type CreateUserParams struct {
	AccountID    string
	Email        string
	Name         string
	PasswordHash string
}

// ReconstituteUserParams are the stored columns of an existing account.
type ReconstituteUserParams struct {
	ID           string
	AccountID    string
	Email        string
	Name         string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewUser validates p and assigns a fresh id and timestamps.
func NewUser(p CreateUserParams) (*User, error) {
	accountID, email, name, err := validate(p.AccountID, p.Email, p.Name)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	return &User{
		id:           uuid.NewString(),
		accountID:    accountID,
		email:        email,
		name:         name,
		passwordHash: p.PasswordHash,
		createdAt:    now,
		updatedAt:    now,
	}, nil
}

// ReconstituteUser rehydrates a stored user. Stored values go through the
// same validation as fresh input; storage is not trusted.
func ReconstituteUser(p ReconstituteUserParams) (*User, error) {
	accountID, email, name, err := validate(p.AccountID, p.Email, p.Name)
	if err != nil {
		return nil, err
	}
	return &User{
		id:           p.ID,
		accountID:    accountID,
		email:        email,
		name:         name,
		passwordHash: p.PasswordHash,
		createdAt:    p.CreatedAt,
		updatedAt:    p.UpdatedAt,
	}, nil
}

func validate(rawAccountID, rawEmail, rawName string) (valueobject.AccountID, valueobject.Email, valueobject.Name, error) {
	accountID, err := valueobject.NewAccountID(rawAccountID)
	if err != nil {
		return valueobject.AccountID{}, valueobject.Email{}, valueobject.Name{}, err
	}
	email, err := valueobject.NewEmail(rawEmail)
	if err != nil {
		return valueobject.AccountID{}, valueobject.Email{}, valueobject.Name{}, err
	}
	name, err := valueobject.NewName(rawName)
	if err != nil {
		return valueobject.AccountID{}, valueobject.Email{}, valueobject.Name{}, err
	}
	return accountID, email, name, nil
}

// WithName returns a copy of u with a new display name and UpdatedAt set to now.
func (u *User) WithName(raw string, now time.Time) (*User, error) {
	name, err := valueobject.NewName(raw)
	if err != nil {
		return nil, err
	}
	next := *u
	next.name = name
	next.updatedAt = now.UTC()
	return &next, nil
}

func (u *User) ID() string                       { return u.id }
func (u *User) AccountID() valueobject.AccountID { return u.accountID }
func (u *User) Email() valueobject.Email         { return u.email }
func (u *User) Name() string                     { return u.name.String() }
func (u *User) PasswordHash() string             { return u.passwordHash }
func (u *User) CreatedAt() time.Time             { return u.createdAt }
func (u *User) UpdatedAt() time.Time             { return u.updatedAt }
