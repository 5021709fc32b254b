package server

import (
	"maltiti/internal/handler"

	"github.com/labstack/echo/v4"
)

type Handlers struct {
	Auth         *handler.AuthHandler
	Product      *handler.ProductHandler
	AdminProduct *handler.AdminProductHandler
	Cart         *handler.CartHandler
	Checkout     *handler.CheckoutHandler
	AdminOrder   *handler.AdminOrderHandler
	AdminUser    *handler.AdminUserHandler
	Cooperative  *handler.CooperativeHandler
}

func RegisterRoutes(e *echo.Echo, h Handlers, g handler.Guards) {
	h.Auth.RegisterRoutes(e, g)
	h.Product.RegisterRoutes(e)
	h.Cart.RegisterRoutes(e, g)
	h.Checkout.RegisterRoutes(e, g)

	h.AdminProduct.RegisterRoutes(e, g)
	h.AdminOrder.RegisterRoutes(e, g)
	h.AdminUser.RegisterRoutes(e, g)
	h.Cooperative.RegisterRoutes(e, g)
}
