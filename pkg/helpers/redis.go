package helpers

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/samber/oops"
)

// NewRedisClient initializes a redis client
func NewRedisClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

func RedisSetJSON(ctx context.Context, rdb redis.Cmdable, key string, value interface{}, ttl time.Duration) error {
	b, err := json.Marshal(value)
	if err != nil {
		return oops.Code("REDIS_ENCODE").With("key", key).Wrap(err)
	}
	if err := rdb.Set(ctx, key, b, ttl).Err(); err != nil {
		return oops.Code("REDIS_SET").With("key", key).Wrap(err)
	}
	return nil
}

// RedisGetJSON reports false with a nil error when key is absent.
func RedisGetJSON[T any](ctx context.Context, rdb redis.Cmdable, key string, dest *T) (bool, error) {
	res, err := rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, oops.Code("REDIS_GET").With("key", key).Wrap(err)
	}
	if err := json.Unmarshal(res, dest); err != nil {
		return false, oops.Code("REDIS_DECODE").With("key", key).Wrap(err)
	}
	return true, nil
}

func RedisDel(ctx context.Context, rdb redis.Cmdable, key string) error {
	if err := rdb.Del(ctx, key).Err(); err != nil {
		return oops.Code("REDIS_DEL").With("key", key).Wrap(err)
	}
	return nil
}
