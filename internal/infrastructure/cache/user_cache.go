// Package cache adds a redis read-through layer in front of the user store.
package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-auth/internal/domain/entity"
	"github.com/oksasatya/go-ddd-auth/internal/domain/repository"
	"github.com/oksasatya/go-ddd-auth/pkg/helpers"
)

const keyPrefix = "auth:user:"

// cachedUser is the stored JSON form of a user.
type cachedUser struct {
	ID           string    `json:"id"`
	AccountID    string    `json:"accountId"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"passwordHash"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// UserCache caches FindByID. Redis failures are logged and the call falls
// through to the wrapped store.
type UserCache struct {
	next   repository.UserStore
	rdb    redis.Cmdable
	ttl    time.Duration
	logger logrus.FieldLogger
}

func NewUserCache(next repository.UserStore, rdb redis.Cmdable, ttl time.Duration, logger logrus.FieldLogger) *UserCache {
	return &UserCache{next: next, rdb: rdb, ttl: ttl, logger: logger}
}

func key(id string) string { return keyPrefix + id }

func (c *UserCache) Save(ctx context.Context, u *entity.User) (*entity.User, error) {
	saved, err := c.next.Save(ctx, u)
	if err != nil {
		return nil, err
	}
	if err := helpers.RedisDel(ctx, c.rdb, key(saved.ID())); err != nil {
		c.warn(err, saved.ID(), "user cache invalidate failed")
	}
	return saved, nil
}

func (c *UserCache) FindByAccountID(ctx context.Context, accountID string) (*entity.User, error) {
	return c.next.FindByAccountID(ctx, accountID)
}

func (c *UserCache) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return c.next.FindByEmail(ctx, email)
}

func (c *UserCache) FindByID(ctx context.Context, id string) (*entity.User, error) {
	var cu cachedUser
	hit, err := helpers.RedisGetJSON(ctx, c.rdb, key(id), &cu)
	if err != nil {
		c.warn(err, id, "user cache read failed")
	}
	if hit {
		// Cached values are revalidated like any stored row.
		u, err := entity.ReconstituteUser(entity.ReconstituteUserParams(cu))
		if err == nil {
			return u, nil
		}
		c.warn(err, id, "cached user failed validation")
	}

	u, err := c.next.FindByID(ctx, id)
	if err != nil || u == nil {
		return u, err
	}
	if err := helpers.RedisSetJSON(ctx, c.rdb, key(id), fromEntity(u), c.ttl); err != nil {
		c.warn(err, id, "user cache write failed")
	}
	return u, nil
}

func fromEntity(u *entity.User) cachedUser {
	return cachedUser{
		ID:           u.ID(),
		AccountID:    u.AccountID().String(),
		Email:        u.Email().String(),
		Name:         u.Name(),
		PasswordHash: u.PasswordHash(),
		CreatedAt:    u.CreatedAt(),
		UpdatedAt:    u.UpdatedAt(),
	}
}

func (c *UserCache) warn(err error, id, msg string) {
	if c.logger == nil {
		return
	}
	c.logger.WithError(err).WithField("user_id", id).Warn(msg)
}

var _ repository.UserStore = (*UserCache)(nil)
