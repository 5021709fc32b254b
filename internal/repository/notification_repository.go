package repository

import (
	"context"
	"time"

	"maltiti/internal/domain/model"
)

// outboxへの積み込みと、dispatcherによる取り出し
type NotificationRepository interface {
	Enqueue(ctx context.Context, items []model.Notification) error
	// 送信期限が来たpendingをSKIP LOCKEDで取り、next_attempt_atをleaseUntilまで進めて他のdispatcherから隠す
	ClaimDue(ctx context.Context, now, leaseUntil time.Time, limit int) ([]model.Notification, error)
	MarkSent(ctx context.Context, id string, at time.Time) error
	MarkFailedAttempt(ctx context.Context, id string, attempts int, nextAttemptAt time.Time, lastErr string, status model.NotificationStatus) error
}
