// Package tokenstore keeps the current refresh token id per user in Redis.
package tokenstore

import (
	"context"
	"time"

	"maltiti/internal/config"
	"maltiti/internal/repository"

	"github.com/go-faster/errors"
	"github.com/redis/go-redis/v9"
)

// ユーザーごとに有効なリフレッシュトークンIDを1つだけ持つ
type RedisStore struct {
	rdb redis.Cmdable
}

func New(rdb redis.Cmdable) *RedisStore {
	return &RedisStore{rdb: rdb}
}

// 起動時に疎通確認まで行う
func Connect(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, errors.Wrap(err, "redis ping")
	}
	return rdb, nil
}

func key(userID string) string {
	return "user-" + userID
}

func (s *RedisStore) Save(ctx context.Context, userID string, tokenID string, ttl time.Duration) error {
	if err := s.rdb.Set(ctx, key(userID), tokenID, ttl).Err(); err != nil {
		return errors.Wrap(err, "redis set")
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, userID string) (string, error) {
	v, err := s.rdb.Get(ctx, key(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", repository.ErrRefreshTokenNotFound
	}
	if err != nil {
		return "", errors.Wrap(err, "redis get")
	}
	return v, nil
}

func (s *RedisStore) Delete(ctx context.Context, userID string) error {
	if err := s.rdb.Del(ctx, key(userID)).Err(); err != nil {
		return errors.Wrap(err, "redis del")
	}
	return nil
}
