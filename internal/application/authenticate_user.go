package application

import (
	"context"

	"github.com/samber/oops"

	"github.com/oksasatya/go-ddd-auth/internal/domain/entity"
	"github.com/oksasatya/go-ddd-auth/internal/domain/errs"
	"github.com/oksasatya/go-ddd-auth/internal/domain/repository"
	"github.com/oksasatya/go-ddd-auth/internal/domain/service"
	"github.com/oksasatya/go-ddd-auth/pkg/helpers"
)

// dummyHash is a well-formed cost-10 bcrypt hash compared against when the
// account does not exist, so an unknown account id costs the same bcrypt
// work as a wrong password.
const dummyHash = "$2a$10$7EqJtq98hPqEX7fNZaFWoO5uR3hQ0bUeK1b1ZQx4v8k3Qq9j7CZ2W"

type AuthenticateUserInput struct {
	AccountID string
	Password  string
}

type AuthenticateUserOutput struct {
	AccessToken string
	User        *entity.User
}

// AuthenticateUser checks credentials and issues an access token. An
// unknown account and a wrong password fail with the same error.
type AuthenticateUser struct {
	Users  repository.UserStore
	Hasher service.PasswordHasher
	Tokens TokenService
}

func NewAuthenticateUser(users repository.UserStore, hasher service.PasswordHasher, tokens TokenService) *AuthenticateUser {
	return &AuthenticateUser{Users: users, Hasher: hasher, Tokens: tokens}
}

func (uc *AuthenticateUser) Execute(ctx context.Context, in AuthenticateUserInput) (*AuthenticateUserOutput, error) {
	u, err := uc.Users.FindByAccountID(ctx, in.AccountID)
	if err != nil {
		return nil, oops.Code("USER_LOOKUP_FAILED").With("account_id", in.AccountID).Wrap(err)
	}
	if u == nil {
		uc.Hasher.Compare(in.Password, dummyHash)
		return nil, errs.ErrInvalidCredentials
	}
	if !uc.Hasher.Compare(in.Password, u.PasswordHash()) {
		return nil, errs.ErrInvalidCredentials
	}

	token, err := uc.Tokens.Sign(helpers.TokenSubject{
		Sub:       u.ID(),
		AccountID: u.AccountID().String(),
	})
	if err != nil {
		return nil, oops.Code("TOKEN_SIGN_FAILED").With("user_id", u.ID()).Wrap(err)
	}
	return &AuthenticateUserOutput{AccessToken: token, User: u}, nil
}
