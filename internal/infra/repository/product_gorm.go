package repository

import (
	"context"
	"strings"

	"maltiti/internal/domain/model"
	repo "maltiti/internal/repository"

	"gorm.io/gorm"
)

type ProductGormRepository struct {
	db *gorm.DB
}

// DI
func NewProductGormRepository(db *gorm.DB) *ProductGormRepository {
	return &ProductGormRepository{db: db}
}

// 検索/カテゴリ/ステータス/ページング付きで返す。
func (r *ProductGormRepository) List(ctx context.Context, q repo.ProductListQuery) ([]model.Product, int64, error) {
	var products []model.Product
	var total int64

	tx := r.db.WithContext(ctx).Model(&model.Product{})

	if q.Status != nil {
		tx = tx.Where("status = ?", *q.Status)
	}

	// nameを対象
	if s := strings.TrimSpace(q.Q); s != "" {
		tx = tx.Where("name ILIKE ?", "%"+s+"%")
	}
	if c := strings.TrimSpace(q.Category); c != "" {
		tx = tx.Where("category = ?", c)
	}

	tx = tx.Session(&gorm.Session{})

	//total（件数）
	if err := tx.Count(&total).Error; err != nil {
		return []model.Product{}, 0, err
	}

	if err := tx.Order("created_at desc").Order("id desc").
		Offset(offsetOf(q.Page, q.Limit)).
		Limit(q.Limit).
		Find(&products).Error; err != nil {
		return []model.Product{}, 0, err
	}

	return products, total, nil
}

// 公開中の商品をランダムに返す
func (r *ProductGormRepository) Random(ctx context.Context, limit int) ([]model.Product, error) {
	var products []model.Product
	if err := r.db.WithContext(ctx).
		Where("status = ?", model.ProductStatusActive).
		Order("random()").
		Limit(limit).
		Find(&products).Error; err != nil {
		return []model.Product{}, err
	}
	return products, nil
}

// IDで商品を取得
func (r *ProductGormRepository) FindByID(ctx context.Context, id string) (model.Product, error) {
	var p model.Product
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error; err != nil {
		return model.Product{}, translate(err)
	}
	return p, nil
}

// 商品の作成
func (r *ProductGormRepository) Create(ctx context.Context, p *model.Product) error {
	return translate(r.db.WithContext(ctx).Create(p).Error)
}

// 商品の更新
func (r *ProductGormRepository) Update(ctx context.Context, p model.Product) error {
	res := r.db.WithContext(ctx).Model(&model.Product{}).Where("id = ?", p.ID).Updates(map[string]interface{}{
		"name":            p.Name,
		"ingredients":     p.Ingredients,
		"weight":          p.Weight,
		"category":        p.Category,
		"description":     p.Description,
		"status":          p.Status,
		"size":            p.Size,
		"image":           p.Image,
		"wholesale":       p.Wholesale,
		"retail":          p.Retail,
		"stock_quantity":  p.StockQuantity,
		"quantity_in_box": p.QuantityInBox,
		"in_box_price":    p.InBoxPrice,
		"favorite":        p.Favorite,
	})
	return affected(res)
}

// 商品削除
func (r *ProductGormRepository) SoftDelete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Product{})
	return affected(res)
}
