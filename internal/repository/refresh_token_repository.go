package repository

import (
	"context"
	"errors"
	"time"
)

var ErrRefreshTokenNotFound = errors.New("refresh token not found")

// ユーザーごとに有効なリフレッシュトークンIDを1つだけ保持する
type RefreshTokenStore interface {
	Save(ctx context.Context, userID string, tokenID string, ttl time.Duration) error
	Get(ctx context.Context, userID string) (string, error)
	Delete(ctx context.Context, userID string) error
}
