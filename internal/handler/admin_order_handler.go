package handler

import (
	"net/http"
	"strconv"

	"maltiti/internal/usecase"

	"github.com/labstack/echo/v4"
)

type AdminOrderHandler struct {
	uc *usecase.AdminOrderUsecase
}

func NewAdminOrderHandler(uc *usecase.AdminOrderUsecase) *AdminOrderHandler {
	return &AdminOrderHandler{uc: uc}
}

type StatusUpdateRequest struct {
	Status string `json:"status"`
}

func (h *AdminOrderHandler) RegisterRoutes(e *echo.Echo, g Guards) {
	admin := e.Group("/admin", g.AdminOnly()...)

	admin.GET("/orders", h.list)
	admin.PATCH("/orders/:id/order-status", h.updateOrderStatus)
	admin.PATCH("/orders/:id/payment-status", h.updatePaymentStatus)
	admin.GET("/audit-logs", h.auditLogs)
}

func (h *AdminOrderHandler) list(c echo.Context) error {
	page, ok := queryPage(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, errorJSON("invalid page"))
	}

	out, err := h.uc.List(c.Request().Context(), usecase.AdminOrderListInput{
		Page:          page,
		SearchTerm:    c.QueryParam("searchTerm"),
		OrderStatus:   c.QueryParam("orderStatus"),
		PaymentStatus: c.QueryParam("paymentStatus"),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AdminOrderHandler) updateOrderStatus(c echo.Context) error {
	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
	}

	var req StatusUpdateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorJSON("invalid body"))
	}

	order, err := h.uc.UpdateOrderStatus(c.Request().Context(), adminID, c.Param("id"), req.Status)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, order)
}

func (h *AdminOrderHandler) updatePaymentStatus(c echo.Context) error {
	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
	}

	var req StatusUpdateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorJSON("invalid body"))
	}

	order, err := h.uc.UpdatePaymentStatus(c.Request().Context(), adminID, c.Param("id"), req.Status)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, order)
}

func (h *AdminOrderHandler) auditLogs(c echo.Context) error {
	in := usecase.AuditLogListInput{
		ActorUserID:  c.QueryParam("actor_user_id"),
		Action:       c.QueryParam("action"),
		ResourceType: c.QueryParam("resource_type"),
		ResourceID:   c.QueryParam("resource_id"),
		From:         c.QueryParam("from"),
		To:           c.QueryParam("to"),
	}

	if v := c.QueryParam("limit"); v != "" {
		l, err := strconv.Atoi(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, errorJSON("invalid limit"))
		}
		in.Limit = l
	}
	if v := c.QueryParam("offset"); v != "" {
		o, err := strconv.Atoi(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, errorJSON("invalid offset"))
		}
		in.Offset = o
	}

	logs, err := h.uc.ListAuditLogs(c.Request().Context(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, logs)
}
