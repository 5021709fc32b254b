package usecase

import (
	"context"
	"io"
	"time"
)

// UUIDなどのIDを作る
type IDGenerator interface {
	NewID() string
}

// 現在時刻
type Clock interface {
	Now() time.Time
}

// 画像を保存して公開URLを返す
type ImageUploader interface {
	Upload(ctx context.Context, name string, contentType string, r io.Reader) (string, error)
}
