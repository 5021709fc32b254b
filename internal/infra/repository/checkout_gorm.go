package repository

import (
	"context"
	"strings"
	"time"

	"maltiti/internal/domain/model"
	repo "maltiti/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CheckoutGormRepository struct {
	db *gorm.DB
}

func NewCheckoutGormRepository(db *gorm.DB) *CheckoutGormRepository {
	return &CheckoutGormRepository{db: db}
}

// 明細と商品を先に読み込む（遅延読み込みはしない）
func withCarts(db *gorm.DB) *gorm.DB {
	return db.Preload("Carts", func(tx *gorm.DB) *gorm.DB {
		return tx.Order("carts.created_at asc")
	}).Preload("Carts.Product", func(tx *gorm.DB) *gorm.DB {
		// 削除済み商品でも過去の注文には表示する
		return tx.Unscoped()
	})
}

func (r *CheckoutGormRepository) Create(ctx context.Context, c *model.Checkout) error {
	// 明細はAttachOpenToCheckoutで紐づけるのでここでは作らない
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Create(c).Error)
}

func (r *CheckoutGormRepository) FindByID(ctx context.Context, id string) (model.Checkout, error) {
	var c model.Checkout
	err := withCarts(r.db.WithContext(ctx)).Where("id = ?", id).First(&c).Error
	if err != nil {
		return model.Checkout{}, translate(err)
	}
	return c, nil
}

func (r *CheckoutGormRepository) FindByIDForUpdate(ctx context.Context, id string) (model.Checkout, error) {
	var c model.Checkout
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&c).Error
	if err != nil {
		return model.Checkout{}, translate(err)
	}
	return c, nil
}

// ステータス2つだけ更新する
func (r *CheckoutGormRepository) UpdateStatuses(ctx context.Context, c model.Checkout) error {
	updatedAt := c.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}
	res := r.db.WithContext(ctx).Model(&model.Checkout{}).
		Where("id = ?", c.ID).
		Updates(map[string]interface{}{
			"order_status":   c.OrderStatus,
			"payment_status": c.PaymentStatus,
			"updated_at":     updatedAt,
		})
	return affected(res)
}

func (r *CheckoutGormRepository) ListByUserID(ctx context.Context, userID string) ([]model.Checkout, error) {
	var items []model.Checkout
	err := withCarts(r.db.WithContext(ctx)).
		Where("user_id = ?", userID).
		Order("created_at desc").Order("id desc").
		Find(&items).Error
	if err != nil {
		return []model.Checkout{}, err
	}
	return items, nil
}

func (r *CheckoutGormRepository) ListAdmin(ctx context.Context, f repo.CheckoutListFilter) ([]model.Checkout, int64, error) {
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.Limit <= 0 {
		f.Limit = 10
	}

	q := r.db.WithContext(ctx).Model(&model.Checkout{})

	//名前の部分一致
	if s := strings.TrimSpace(f.SearchTerm); s != "" {
		q = q.Where("name ILIKE ?", "%"+s+"%")
	}
	if f.OrderStatus != "" {
		q = q.Where("order_status = ?", f.OrderStatus)
	}
	if f.PaymentStatus != "" {
		q = q.Where("payment_status = ?", f.PaymentStatus)
	}

	// Count後も同じ条件で使い回す
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return []model.Checkout{}, 0, err
	}

	var items []model.Checkout
	err := withCarts(q).
		Order("created_at desc").Order("id desc").
		Limit(f.Limit).
		Offset(offsetOf(f.Page, f.Limit)).
		Find(&items).Error
	if err != nil {
		return []model.Checkout{}, 0, err
	}

	return items, total, nil
}
