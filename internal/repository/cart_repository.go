package repository

import (
	"context"

	"maltiti/internal/domain/model"
)

// 未注文の明細だけを扱う
type CartRepository interface {
	ListOpenByUserID(ctx context.Context, userID string) ([]model.Cart, error)
	FindOpenByUserAndProduct(ctx context.Context, userID string, productID string) (model.Cart, error)
	FindOpenByID(ctx context.Context, userID string, cartID string) (model.Cart, error)
	Create(ctx context.Context, c *model.Cart) error
	UpdateQuantity(ctx context.Context, userID string, cartID string, qty int64) error
	DeleteOpen(ctx context.Context, userID string, cartID string) error
	DeleteAllOpen(ctx context.Context, userID string) (int64, error)
	// 未注文の明細を注文に紐づける
	AttachOpenToCheckout(ctx context.Context, userID string, checkoutID string) (int64, error)
}
