package repository

import (
	"context"
	"time"

	"maltiti/internal/domain/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type NotificationGormRepository struct {
	db *gorm.DB
}

func NewNotificationGormRepository(db *gorm.DB) *NotificationGormRepository {
	return &NotificationGormRepository{db: db}
}

func (r *NotificationGormRepository) Enqueue(ctx context.Context, items []model.Notification) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&items).Error
}

// 他のdispatcherが掴んでいる行は飛ばす。
// 取った行はleaseUntilまで期限外になるので、送信はTxの外で行える
func (r *NotificationGormRepository) ClaimDue(ctx context.Context, now, leaseUntil time.Time, limit int) ([]model.Notification, error) {
	db := r.db.WithContext(ctx)

	var items []model.Notification
	err := db.
		Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
		Where("status = ? AND next_attempt_at <= ?", model.NotificationPending, now).
		Order("next_attempt_at asc").Order("created_at asc").
		Limit(limit).
		Find(&items).Error
	if err != nil {
		return []model.Notification{}, err
	}
	if len(items) == 0 {
		return items, nil
	}

	ids := make([]string, 0, len(items))
	for _, n := range items {
		ids = append(ids, n.ID)
	}
	err = db.Model(&model.Notification{}).
		Where("id IN ?", ids).
		Updates(map[string]interface{}{
			"next_attempt_at": leaseUntil,
			"updated_at":      now,
		}).Error
	if err != nil {
		return []model.Notification{}, err
	}
	for i := range items {
		items[i].NextAttemptAt = leaseUntil
	}
	return items, nil
}

func (r *NotificationGormRepository) MarkSent(ctx context.Context, id string, at time.Time) error {
	res := r.db.WithContext(ctx).Model(&model.Notification{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     model.NotificationSent,
			"sent_at":    at,
			"attempts":   gorm.Expr("attempts + 1"),
			"last_error": "",
			"updated_at": at,
		})
	return affected(res)
}

func (r *NotificationGormRepository) MarkFailedAttempt(ctx context.Context, id string, attempts int, nextAttemptAt time.Time, lastErr string, status model.NotificationStatus) error {
	res := r.db.WithContext(ctx).Model(&model.Notification{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":          status,
			"attempts":        attempts,
			"next_attempt_at": nextAttemptAt,
			"last_error":      lastErr,
			"updated_at":      time.Now(),
		})
	return affected(res)
}
