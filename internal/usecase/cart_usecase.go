package usecase

import (
	"context"
	"net/http"

	"maltiti/internal/domain/model"
	repo "maltiti/internal/repository"

	"github.com/shopspring/decimal"
)

// CartUsecase は /cart の業務ロジックです。
// 扱うのは未注文（checkout_idがNULL）の明細だけ。
type CartUsecase struct {
	cartRepo    repo.CartRepository
	productRepo repo.ProductRepository
	idGen       IDGenerator
}

func NewCartUsecase(cartRepo repo.CartRepository, productRepo repo.ProductRepository, idGen IDGenerator) *CartUsecase {
	return &CartUsecase{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		idGen:       idGen,
	}
}

type CartResponse struct {
	Items []model.Cart    `json:"carts"`
	Count int             `json:"count"`
	Total decimal.Decimal `json:"total"`
}

type AddCartInput struct {
	ProductID string
}

type UpdateCartItemInput struct {
	Quantity int64
}

func (u *CartUsecase) GetCart(ctx context.Context, userID string) (CartResponse, error) {
	if userID == "" {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	return u.buildCartResponse(ctx, userID)
}

// 同じ商品の未注文明細があれば409。新規は数量1で作る
func (u *CartUsecase) AddToCart(ctx context.Context, userID string, in AddCartInput) (CartResponse, error) {
	if userID == "" {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if in.ProductID == "" {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid productId")
	}

	// 商品チェック（公開のみ）
	p, err := u.productRepo.FindByID(ctx, in.ProductID)
	if err == repo.ErrNotFound {
		return CartResponse{}, NewHTTPError(http.StatusNotFound, "product not found")
	}
	if err != nil {
		return CartResponse{}, dbError()
	}
	if p.Status != model.ProductStatusActive {
		return CartResponse{}, NewHTTPError(http.StatusNotFound, "product not found")
	}

	_, err = u.cartRepo.FindOpenByUserAndProduct(ctx, userID, in.ProductID)
	if err == nil {
		return CartResponse{}, NewHTTPError(http.StatusConflict, "Product already exists in cart")
	}
	if err != repo.ErrNotFound {
		return CartResponse{}, dbError()
	}

	item := model.Cart{
		ID:        u.idGen.NewID(),
		UserID:    userID,
		ProductID: in.ProductID,
		Quantity:  1,
	}
	if err := u.cartRepo.Create(ctx, &item); err != nil {
		// 同時追加は部分ユニーク索引で弾かれる
		if err == repo.ErrConflict {
			return CartResponse{}, NewHTTPError(http.StatusConflict, "Product already exists in cart")
		}
		return CartResponse{}, dbError()
	}

	return u.buildCartResponse(ctx, userID)
}

// 数量を置き換える。注文済み・他人の明細は404
func (u *CartUsecase) UpdateCartItem(ctx context.Context, userID string, cartID string, in UpdateCartItemInput) (CartResponse, error) {
	if userID == "" {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if cartID == "" {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if in.Quantity < 1 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid quantity")
	}

	if err := u.cartRepo.UpdateQuantity(ctx, userID, cartID, in.Quantity); err != nil {
		if err == repo.ErrNotFound {
			return CartResponse{}, NewHTTPError(http.StatusNotFound, "cart item not found")
		}
		return CartResponse{}, dbError()
	}

	return u.buildCartResponse(ctx, userID)
}

func (u *CartUsecase) DeleteCartItem(ctx context.Context, userID string, cartID string) (CartResponse, error) {
	if userID == "" {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if cartID == "" {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	if err := u.cartRepo.DeleteOpen(ctx, userID, cartID); err != nil {
		if err == repo.ErrNotFound {
			return CartResponse{}, NewHTTPError(http.StatusNotFound, "cart item not found")
		}
		return CartResponse{}, dbError()
	}

	return u.buildCartResponse(ctx, userID)
}

// 未注文の明細を全部消す（注文済みは残る）
func (u *CartUsecase) ClearCart(ctx context.Context, userID string) (CartResponse, error) {
	if userID == "" {
		return CartResponse{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if _, err := u.cartRepo.DeleteAllOpen(ctx, userID); err != nil {
		return CartResponse{}, dbError()
	}
	return u.buildCartResponse(ctx, userID)
}

func (u *CartUsecase) buildCartResponse(ctx context.Context, userID string) (CartResponse, error) {
	items, err := u.cartRepo.ListOpenByUserID(ctx, userID)
	if err != nil {
		return CartResponse{}, dbError()
	}
	if items == nil {
		items = []model.Cart{}
	}
	return CartResponse{
		Items: items,
		Count: len(items),
		Total: CartSubtotal(items).Round(2),
	}, nil
}
