package repository

import (
	"context"

	"maltiti/internal/domain/model"
)

// 一覧検索
type ProductListQuery struct {
	Page     int
	Limit    int
	Q        string
	Category string
	// nilなら全ステータス
	Status *model.ProductStatus
}

// 商品の永続化（保存・取得）だけを約束。
type ProductRepository interface {
	List(ctx context.Context, q ProductListQuery) ([]model.Product, int64, error)
	Random(ctx context.Context, limit int) ([]model.Product, error)
	FindByID(ctx context.Context, id string) (model.Product, error)
	Create(ctx context.Context, p *model.Product) error
	Update(ctx context.Context, p model.Product) error
	SoftDelete(ctx context.Context, id string) error
}
