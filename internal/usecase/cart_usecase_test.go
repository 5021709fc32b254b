package usecase_test

import (
	"context"
	"net/http"
	"testing"

	"maltiti/internal/domain/model"
	repo "maltiti/internal/repository"
	"maltiti/internal/repository/mocks"
	"maltiti/internal/usecase"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newCartUsecase() (*usecase.CartUsecase, *mocks.CartRepository, *mocks.ProductRepository) {
	carts := new(mocks.CartRepository)
	products := new(mocks.ProductRepository)
	return usecase.NewCartUsecase(carts, products, &mocks.SeqIDs{Prefix: "cart-"}), carts, products
}

func TestCartUsecase_GetCart_Totals(t *testing.T) {
	uc, carts, _ := newCartUsecase()
	carts.On("ListOpenByUserID", mock.Anything, "user-1").Return([]model.Cart{
		{ID: "c1", Quantity: 2, Product: model.Product{Retail: decimal.RequireFromString("12.50")}},
		{ID: "c2", Quantity: 1, Product: model.Product{Retail: decimal.RequireFromString("5")}},
	}, nil)

	out, err := uc.GetCart(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, 2, out.Count)
	assert.True(t, out.Total.Equal(decimal.NewFromInt(30)), "total=%s", out.Total)
}

func TestCartUsecase_AddToCart_Duplicate(t *testing.T) {
	uc, carts, products := newCartUsecase()
	products.On("FindByID", mock.Anything, "p-1").Return(model.Product{ID: "p-1", Status: model.ProductStatusActive}, nil)
	carts.On("FindOpenByUserAndProduct", mock.Anything, "user-1", "p-1").Return(model.Cart{ID: "c1"}, nil)

	_, err := uc.AddToCart(context.Background(), "user-1", usecase.AddCartInput{ProductID: "p-1"})
	assertStatus(t, err, http.StatusConflict)
	assertErrContains(t, err, "Product already exists in cart")
	carts.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCartUsecase_AddToCart_CreatesWithQuantityOne(t *testing.T) {
	uc, carts, products := newCartUsecase()
	products.On("FindByID", mock.Anything, "p-1").Return(model.Product{ID: "p-1", Status: model.ProductStatusActive}, nil)
	carts.On("FindOpenByUserAndProduct", mock.Anything, "user-1", "p-1").Return(model.Cart{}, repo.ErrNotFound)
	carts.On("Create", mock.Anything, mock.MatchedBy(func(c *model.Cart) bool {
		return c.ID == "cart-1" && c.Quantity == 1 && c.CheckoutID == nil
	})).Return(nil)
	carts.On("ListOpenByUserID", mock.Anything, "user-1").Return([]model.Cart{{ID: "cart-1", Quantity: 1}}, nil)

	out, err := uc.AddToCart(context.Background(), "user-1", usecase.AddCartInput{ProductID: "p-1"})
	require.NoError(t, err)
	assert.Equal(t, 1, out.Count)
	carts.AssertExpectations(t)
}

func TestCartUsecase_AddToCart_ConcurrentInsertConflicts(t *testing.T) {
	uc, carts, products := newCartUsecase()
	products.On("FindByID", mock.Anything, "p-1").Return(model.Product{ID: "p-1", Status: model.ProductStatusActive}, nil)
	carts.On("FindOpenByUserAndProduct", mock.Anything, "user-1", "p-1").Return(model.Cart{}, repo.ErrNotFound)
	carts.On("Create", mock.Anything, mock.Anything).Return(repo.ErrConflict)

	_, err := uc.AddToCart(context.Background(), "user-1", usecase.AddCartInput{ProductID: "p-1"})
	assertStatus(t, err, http.StatusConflict)
}

func TestCartUsecase_AddToCart_InactiveProduct(t *testing.T) {
	uc, _, products := newCartUsecase()
	products.On("FindByID", mock.Anything, "p-1").Return(model.Product{ID: "p-1", Status: model.ProductStatusInactive}, nil)

	_, err := uc.AddToCart(context.Background(), "user-1", usecase.AddCartInput{ProductID: "p-1"})
	assertStatus(t, err, http.StatusNotFound)
}

func TestCartUsecase_UpdateCartItem_FrozenLineIsNotFound(t *testing.T) {
	uc, carts, _ := newCartUsecase()
	// 注文済みの明細はopenの条件に当たらない
	carts.On("UpdateQuantity", mock.Anything, "user-1", "c1", int64(4)).Return(repo.ErrNotFound)

	_, err := uc.UpdateCartItem(context.Background(), "user-1", "c1", usecase.UpdateCartItemInput{Quantity: 4})
	assertStatus(t, err, http.StatusNotFound)
}

func TestCartUsecase_UpdateCartItem_InvalidQuantity(t *testing.T) {
	uc, carts, _ := newCartUsecase()

	_, err := uc.UpdateCartItem(context.Background(), "user-1", "c1", usecase.UpdateCartItemInput{Quantity: 0})
	assertStatus(t, err, http.StatusBadRequest)
	carts.AssertNotCalled(t, "UpdateQuantity", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCartUsecase_ClearCart(t *testing.T) {
	uc, carts, _ := newCartUsecase()
	carts.On("DeleteAllOpen", mock.Anything, "user-1").Return(int64(3), nil)
	carts.On("ListOpenByUserID", mock.Anything, "user-1").Return([]model.Cart{}, nil)

	out, err := uc.ClearCart(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, 0, out.Count)
	assert.True(t, out.Total.IsZero())
}

func TestCartUsecase_Unauthorized(t *testing.T) {
	uc, _, _ := newCartUsecase()

	_, err := uc.GetCart(context.Background(), "")
	assertStatus(t, err, http.StatusUnauthorized)
}
