package repository

import (
	"context"

	"maltiti/internal/domain/model"

	"gorm.io/gorm"
)

type VerificationGormRepository struct {
	db *gorm.DB
}

func NewVerificationGormRepository(db *gorm.DB) *VerificationGormRepository {
	return &VerificationGormRepository{db: db}
}

func (r *VerificationGormRepository) Create(ctx context.Context, v *model.Verification) error {
	return translate(r.db.WithContext(ctx).Create(v).Error)
}

func (r *VerificationGormRepository) FindByToken(ctx context.Context, t model.VerificationType, token string) (model.Verification, error) {
	var v model.Verification
	err := r.db.WithContext(ctx).
		Where("type = ? AND token = ?", t, token).
		First(&v).Error
	if err != nil {
		return model.Verification{}, translate(err)
	}
	return v, nil
}

// 使い終わった/古いトークンをまとめて消す
func (r *VerificationGormRepository) DeleteByUser(ctx context.Context, userID string, t model.VerificationType) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND type = ?", userID, t).
		Delete(&model.Verification{}).Error
}
