package handler

import (
	"net/http"

	auth "maltiti/internal/usecase/auth_usecase"

	"github.com/labstack/echo/v4"
)

type AdminUserHandler struct {
	uc *auth.SessionUsecase
}

func NewAdminUserHandler(uc *auth.SessionUsecase) *AdminUserHandler {
	return &AdminUserHandler{uc: uc}
}

func (h *AdminUserHandler) RegisterRoutes(e *echo.Echo, g Guards) {
	// /admin 配下は全部「JWT必須 + token_version一致 + admin限定」
	admin := e.Group("/admin", g.AdminOnly()...)

	admin.POST("/users/:id/force-logout", h.ForceLogout)
}

func (h *AdminUserHandler) ForceLogout(c echo.Context) error {
	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
	}

	res, err := h.uc.ForceLogout(c.Request().Context(), adminID, c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, res)
}
