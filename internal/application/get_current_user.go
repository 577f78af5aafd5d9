package application

import (
	"context"

	"github.com/samber/oops"

	"github.com/oksasatya/go-ddd-auth/internal/domain/entity"
	"github.com/oksasatya/go-ddd-auth/internal/domain/errs"
	"github.com/oksasatya/go-ddd-auth/internal/domain/repository"
)

type GetCurrentUserInput struct {
	UserID string
}

// GetCurrentUser resolves the user behind a verified token. A token whose
// user no longer exists is treated as unauthorized.
type GetCurrentUser struct {
	Users repository.UserStore
}

func NewGetCurrentUser(users repository.UserStore) *GetCurrentUser {
	return &GetCurrentUser{Users: users}
}

func (uc *GetCurrentUser) Execute(ctx context.Context, in GetCurrentUserInput) (*entity.User, error) {
	u, err := uc.Users.FindByID(ctx, in.UserID)
	if err != nil {
		return nil, oops.Code("USER_LOOKUP_FAILED").With("user_id", in.UserID).Wrap(err)
	}
	if u == nil {
		return nil, errs.ErrUnauthorized
	}
	return u, nil
}
