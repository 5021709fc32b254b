package repository

import (
	"context"

	"maltiti/internal/domain/model"
)

type CheckoutListFilter struct {
	Page          int
	Limit         int
	SearchTerm    string
	OrderStatus   model.OrderStatus
	PaymentStatus model.PaymentStatus
}

type CheckoutRepository interface {
	Create(ctx context.Context, c *model.Checkout) error
	// 明細と商品をまとめて読み込む
	FindByID(ctx context.Context, id string) (model.Checkout, error)
	// 行ロック付き（Tx内でのみ使う）
	FindByIDForUpdate(ctx context.Context, id string) (model.Checkout, error)
	UpdateStatuses(ctx context.Context, c model.Checkout) error
	ListByUserID(ctx context.Context, userID string) ([]model.Checkout, error)
	//管理者用の注文一覧
	ListAdmin(ctx context.Context, f CheckoutListFilter) ([]model.Checkout, int64, error)
}
