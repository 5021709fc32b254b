package repository

import (
	"context"

	"maltiti/internal/domain/model"

	"gorm.io/gorm"
)

type CartGormRepository struct {
	db *gorm.DB
}

// DI
func NewCartGormRepository(db *gorm.DB) *CartGormRepository {
	return &CartGormRepository{db: db}
}

func (r *CartGormRepository) open(ctx context.Context, userID string) *gorm.DB {
	return r.db.WithContext(ctx).Where("user_id = ? AND checkout_id IS NULL", userID)
}

// 未注文の明細を商品付きで取得
func (r *CartGormRepository) ListOpenByUserID(ctx context.Context, userID string) ([]model.Cart, error) {
	var items []model.Cart
	if err := r.open(ctx, userID).
		Preload("Product").
		Order("created_at asc").Order("id asc").
		Find(&items).Error; err != nil {
		return []model.Cart{}, err
	}
	return items, nil
}

func (r *CartGormRepository) FindOpenByUserAndProduct(ctx context.Context, userID string, productID string) (model.Cart, error) {
	var item model.Cart
	err := r.open(ctx, userID).Where("product_id = ?", productID).First(&item).Error
	if err != nil {
		return model.Cart{}, translate(err)
	}
	return item, nil
}

func (r *CartGormRepository) FindOpenByID(ctx context.Context, userID string, cartID string) (model.Cart, error) {
	var item model.Cart
	err := r.open(ctx, userID).Preload("Product").Where("id = ?", cartID).First(&item).Error
	if err != nil {
		return model.Cart{}, translate(err)
	}
	return item, nil
}

// 同じ商品の未注文明細があれば部分ユニーク索引でErrConflictになる
func (r *CartGormRepository) Create(ctx context.Context, c *model.Cart) error {
	return translate(r.db.WithContext(ctx).Omit("Product").Create(c).Error)
}

func (r *CartGormRepository) UpdateQuantity(ctx context.Context, userID string, cartID string, qty int64) error {
	res := r.open(ctx, userID).
		Model(&model.Cart{}).
		Where("id = ?", cartID).
		Update("quantity", qty)
	return affected(res)
}

func (r *CartGormRepository) DeleteOpen(ctx context.Context, userID string, cartID string) error {
	res := r.open(ctx, userID).Where("id = ?", cartID).Delete(&model.Cart{})
	return affected(res)
}

// 注文済みの明細は消さない
func (r *CartGormRepository) DeleteAllOpen(ctx context.Context, userID string) (int64, error) {
	res := r.open(ctx, userID).Delete(&model.Cart{})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *CartGormRepository) AttachOpenToCheckout(ctx context.Context, userID string, checkoutID string) (int64, error) {
	res := r.open(ctx, userID).
		Model(&model.Cart{}).
		Update("checkout_id", checkoutID)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}
