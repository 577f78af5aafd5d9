package repository

import (
	"context"

	"github.com/oksasatya/go-ddd-auth/internal/domain/entity"
)

// UserStore persists users. Finders return (nil, nil) when nothing matches;
// a non-nil error always means the store itself failed.
//
// Implementations enforce uniqueness of account id and email, both compared
// case-insensitively.
type UserStore interface {
	// Save inserts or updates u and returns the stored value.
	Save(ctx context.Context, u *entity.User) (*entity.User, error)

	// FindByAccountID looks up a user by account id, ignoring case.
	FindByAccountID(ctx context.Context, accountID string) (*entity.User, error)

	// FindByEmail looks up a user by email, ignoring case.
	FindByEmail(ctx context.Context, email string) (*entity.User, error)

	// FindByID looks up a user by its UUID.
	FindByID(ctx context.Context, id string) (*entity.User, error)
}
