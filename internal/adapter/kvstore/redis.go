package kvstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/eslsoft/flashdeck/internal/repository"
)

// Redis persists entries as plain string keys.
type Redis struct {
	rdb redis.Cmdable
}

var _ repository.KVStore = (*Redis)(nil)

// NewRedis binds a store to rdb.
func NewRedis(rdb redis.Cmdable) (*Redis, error) {
	if rdb == nil {
		return nil, errors.New("kvstore: redis client is required")
	}
	return &Redis{rdb: rdb}, nil
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, err := r.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get %s: %w", key, err)
	}
	return value, true, nil
}

func (r *Redis) Set(ctx context.Context, key string, value []byte) error {
	if err := r.rdb.Set(ctx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}
