package repository

import (
	"context"
	"time"

	"maltiti/internal/domain/model"
	repo "maltiti/internal/repository"

	"gorm.io/gorm"
)

const (
	auditDefaultLimit = 50
	auditMaxLimit     = 200
)

type AuditLogGormRepository struct {
	db *gorm.DB
}

func NewAuditLogGormRepository(db *gorm.DB) *AuditLogGormRepository {
	return &AuditLogGormRepository{db: db}
}

// 注文・商品の更新と同じTxで書くので、失敗したら更新ごと戻る
func (r *AuditLogGormRepository) Create(ctx context.Context, entry model.AuditLog) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	return translate(r.db.WithContext(ctx).Create(&entry).Error)
}

func (r *AuditLogGormRepository) List(ctx context.Context, f repo.AuditLogFilter) ([]model.AuditLog, error) {
	q := r.db.WithContext(ctx).Model(&model.AuditLog{})

	if f.ActorUserID != nil {
		q = q.Where("actor_user_id = ?", *f.ActorUserID)
	}
	if f.Action != nil {
		q = q.Where("action = ?", *f.Action)
	}
	// 注文単位・商品単位で履歴を追えるように
	if f.ResourceType != nil {
		q = q.Where("resource_type = ?", *f.ResourceType)
	}
	if f.ResourceID != nil {
		q = q.Where("resource_id = ?", *f.ResourceID)
	}
	if f.CreatedFrom != nil {
		q = q.Where("created_at >= ?", *f.CreatedFrom)
	}
	if f.CreatedTo != nil {
		q = q.Where("created_at <= ?", *f.CreatedTo)
	}

	limit := f.Limit
	if limit <= 0 || limit > auditMaxLimit {
		limit = auditDefaultLimit
	}
	offset := f.Offset
	if offset < 0 {
		offset = 0
	}

	var entries []model.AuditLog
	err := q.
		Order("created_at desc").Order("id desc").
		Limit(limit).
		Offset(offset).
		Find(&entries).Error
	if err != nil {
		return []model.AuditLog{}, err
	}
	return entries, nil
}
