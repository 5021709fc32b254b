package handler

import (
	"net/http"

	"maltiti/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// /checkout のHTTP
type CheckoutHandler struct {
	uc *usecase.CheckoutUsecase
}

func NewCheckoutHandler(uc *usecase.CheckoutUsecase) *CheckoutHandler {
	return &CheckoutHandler{uc: uc}
}

type InitializeCheckoutRequest struct {
	Name      string `json:"name"`
	Location  string `json:"location"`
	Zone      string `json:"zone"`
	ExtraInfo string `json:"extraInfo"`
}

type ShippingResponse struct {
	Location string          `json:"location"`
	Amount   decimal.Decimal `json:"amount"`
}

func (h *CheckoutHandler) RegisterRoutes(e *echo.Echo, g Guards) {
	co := e.Group("/checkout", g.User()...)

	co.GET("/shipping/:location", h.shipping)
	co.POST("/initialize-transaction", h.initialize)
	co.GET("/confirm-payment/:userId/:checkoutId", h.confirmPayment)
	co.GET("/orders", h.listMine)
	co.GET("/orders/:id", h.get)
	co.PATCH("/cancel-order/:id", h.cancel)
}

func (h *CheckoutHandler) shipping(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
	}

	location := c.Param("location")
	amount, err := h.uc.Shipping(c.Request().Context(), userID, location)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, ShippingResponse{Location: location, Amount: amount})
}

// locationは配送先住所、zoneは送料区分(local/other)
func (h *CheckoutHandler) initialize(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
	}

	var req InitializeCheckoutRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorJSON("invalid body"))
	}

	out, err := h.uc.Initialize(c.Request().Context(), userID, usecase.InitializeCheckoutInput{
		Name:      req.Name,
		Location:  req.Location,
		ExtraInfo: req.ExtraInfo,
		Zone:      req.Zone,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// パスのuserIdはJWTの本人と一致しなければ存在しない扱い
func (h *CheckoutHandler) confirmPayment(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
	}
	if c.Param("userId") != userID {
		return c.JSON(http.StatusNotFound, errorJSON("order not found"))
	}

	order, err := h.uc.ConfirmPayment(c.Request().Context(), userID, c.Param("checkoutId"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, order)
}

func (h *CheckoutHandler) listMine(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
	}

	orders, err := h.uc.ListMine(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, orders)
}

func (h *CheckoutHandler) get(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
	}

	order, err := h.uc.Get(c.Request().Context(), userID, c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, order)
}

func (h *CheckoutHandler) cancel(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
	}

	out, err := h.uc.Cancel(c.Request().Context(), userID, c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
