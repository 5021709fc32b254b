package repository

import (
	"context"
	"strings"

	"maltiti/internal/domain/model"

	"gorm.io/gorm"
)

type CooperativeGormRepository struct {
	db *gorm.DB
}

func NewCooperativeGormRepository(db *gorm.DB) *CooperativeGormRepository {
	return &CooperativeGormRepository{db: db}
}

// 名前の重複はErrConflict
func (r *CooperativeGormRepository) Create(ctx context.Context, c *model.Cooperative) error {
	return translate(r.db.WithContext(ctx).Create(c).Error)
}

func (r *CooperativeGormRepository) FindByID(ctx context.Context, id string) (model.Cooperative, error) {
	var c model.Cooperative
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&c).Error; err != nil {
		return model.Cooperative{}, translate(err)
	}
	return c, nil
}

func (r *CooperativeGormRepository) FindByName(ctx context.Context, name string) (model.Cooperative, error) {
	var c model.Cooperative
	if err := r.db.WithContext(ctx).Where("lower(name) = lower(?)", name).First(&c).Error; err != nil {
		return model.Cooperative{}, translate(err)
	}
	return c, nil
}

func (r *CooperativeGormRepository) Update(ctx context.Context, c model.Cooperative) error {
	res := r.db.WithContext(ctx).Model(&model.Cooperative{}).Where("id = ?", c.ID).Updates(map[string]interface{}{
		"name":             c.Name,
		"community":        c.Community,
		"registration_fee": c.RegistrationFee,
		"monthly_fee":      c.MonthlyFee,
		"minimal_share":    c.MinimalShare,
	})
	return affected(res)
}

func (r *CooperativeGormRepository) Delete(ctx context.Context, id string) error {
	return affected(r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Cooperative{}))
}

func (r *CooperativeGormRepository) List(ctx context.Context, q string, page int, limit int) ([]model.Cooperative, int64, error) {
	tx := r.db.WithContext(ctx).Model(&model.Cooperative{})
	if s := strings.TrimSpace(q); s != "" {
		tx = tx.Where("name ILIKE ?", "%"+s+"%")
	}
	tx = tx.Session(&gorm.Session{})

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return []model.Cooperative{}, 0, err
	}

	var items []model.Cooperative
	if err := tx.Order("created_at desc").Order("id desc").
		Offset(offsetOf(page, limit)).Limit(limit).
		Find(&items).Error; err != nil {
		return []model.Cooperative{}, 0, err
	}
	return items, total, nil
}

type CooperativeMemberGormRepository struct {
	db *gorm.DB
}

func NewCooperativeMemberGormRepository(db *gorm.DB) *CooperativeMemberGormRepository {
	return &CooperativeMemberGormRepository{db: db}
}

// 電話番号の重複はErrConflict
func (r *CooperativeMemberGormRepository) Create(ctx context.Context, m *model.CooperativeMember) error {
	return translate(r.db.WithContext(ctx).Omit("Cooperative").Create(m).Error)
}

func (r *CooperativeMemberGormRepository) FindByID(ctx context.Context, id string) (model.CooperativeMember, error) {
	var m model.CooperativeMember
	if err := r.db.WithContext(ctx).Preload("Cooperative").Where("id = ?", id).First(&m).Error; err != nil {
		return model.CooperativeMember{}, translate(err)
	}
	return m, nil
}

func (r *CooperativeMemberGormRepository) FindByPhoneNumber(ctx context.Context, phone string) (model.CooperativeMember, error) {
	var m model.CooperativeMember
	if err := r.db.WithContext(ctx).Where("phone_number = ?", phone).First(&m).Error; err != nil {
		return model.CooperativeMember{}, translate(err)
	}
	return m, nil
}

func (r *CooperativeMemberGormRepository) Update(ctx context.Context, m model.CooperativeMember) error {
	m.Cooperative = nil
	res := r.db.WithContext(ctx).Omit("Cooperative", "CreatedAt").Save(&m)
	return translate(res.Error)
}

func (r *CooperativeMemberGormRepository) Delete(ctx context.Context, id string) error {
	return affected(r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.CooperativeMember{}))
}

func (r *CooperativeMemberGormRepository) List(ctx context.Context, q string, page int, limit int) ([]model.CooperativeMember, int64, error) {
	tx := r.db.WithContext(ctx).Model(&model.CooperativeMember{})
	if s := strings.TrimSpace(q); s != "" {
		tx = tx.Where("name ILIKE ?", "%"+s+"%")
	}
	tx = tx.Session(&gorm.Session{})

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return []model.CooperativeMember{}, 0, err
	}

	var items []model.CooperativeMember
	if err := tx.Preload("Cooperative").
		Order("created_at desc").Order("id desc").
		Offset(offsetOf(page, limit)).Limit(limit).
		Find(&items).Error; err != nil {
		return []model.CooperativeMember{}, 0, err
	}
	return items, total, nil
}

func (r *CooperativeMemberGormRepository) ListByCooperativeID(ctx context.Context, cooperativeID string) ([]model.CooperativeMember, error) {
	var items []model.CooperativeMember
	if err := r.db.WithContext(ctx).
		Where("cooperative_id = ?", cooperativeID).
		Order("name asc").
		Find(&items).Error; err != nil {
		return []model.CooperativeMember{}, err
	}
	return items, nil
}
