package handler

import (
	"errors"
	"net/http"
	"strconv"

	"maltiti/internal/middleware"
	"maltiti/internal/usecase"
	auth "maltiti/internal/usecase/auth_usecase"
	"maltiti/internal/validator"

	"github.com/labstack/echo/v4"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

// 成功時の { message: string }
type SuccessResponse struct {
	Message string `json:"message"`
}

func errorJSON(msg string) ErrorResponse {
	return ErrorResponse{Error: msg}
}

// 認証ルートに付けるミドルウェアの組
type Guards struct {
	Auth         echo.MiddlewareFunc
	TokenVersion echo.MiddlewareFunc
	Admin        echo.MiddlewareFunc
}

// JWT必須 + token_version一致
func (g Guards) User() []echo.MiddlewareFunc {
	return []echo.MiddlewareFunc{g.Auth, g.TokenVersion}
}

// JWT必須 + token_version一致 + admin限定
func (g Guards) AdminOnly() []echo.MiddlewareFunc {
	return []echo.MiddlewareFunc{g.Auth, g.TokenVersion, g.Admin}
}

// usecaseのエラーをステータスに変換。想定外は500（中身は出さない）
func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}
	if he, ok := usecase.AsHTTPError(err); ok {
		return c.JSON(he.Status, ErrorResponse{Error: he.Message})
	}

	var ve *validator.Error
	if errors.As(err, &ve) {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: ve.Message})
	}

	switch {
	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrInvalidRefreshToken):
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: err.Error()})
	case errors.Is(err, auth.ErrUserInactive):
		return c.JSON(http.StatusForbidden, ErrorResponse{Error: err.Error()})
	case errors.Is(err, auth.ErrUserNotFound),
		errors.Is(err, auth.ErrTokenNotFound):
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
	case errors.Is(err, auth.ErrEmailAlreadyExists):
		return c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
	case errors.Is(err, auth.ErrTokenExpired):
		return c.JSON(http.StatusGone, ErrorResponse{Error: err.Error()})
	case errors.Is(err, auth.ErrInvalidPhoneCode),
		errors.Is(err, auth.ErrPhoneMissing):
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	}

	c.Logger().Error(err)
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}

func getUserIDFromContext(c echo.Context) (string, bool) {
	id, ok := c.Get(middleware.CtxUserIDKey).(string)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}

// page（default 1）
func queryPage(c echo.Context) (int, bool) {
	v := c.QueryParam("page")
	if v == "" {
		return 1, true
	}
	p, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return p, true
}
