package middleware

import (
	"net/http"
	"strings"

	"maltiti/internal/infra/token"

	"github.com/labstack/echo/v4"
)

const (
	CtxUserIDKey       = "user_id"       // string (uuid)
	CtxUserRoleKey     = "user_role"     // string
	CtxTokenVersionKey = "token_version" // int
)

// アクセストークンを検証する約束（token.Manager）
type AccessTokenParser interface {
	ParseAccess(raw string) (token.AccessClaims, error)
}

// bearerAuth用のJWT検証ミドルウェア。
func AuthJWT(parser AccessTokenParser) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			//Authorizationヘッダを取得
			authz := c.Request().Header.Get("Authorization")
			if authz == "" {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			//Bearer形式か確認してtokenを抜く
			parts := strings.SplitN(authz, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}
			rawToken := strings.TrimSpace(parts[1])
			if rawToken == "" {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			//署名・期限・sub/role/tvを検証
			claims, err := parser.ParseAccess(rawToken)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			//contextへ保存
			c.Set(CtxUserIDKey, claims.Subject)
			c.Set(CtxUserRoleKey, claims.Role)
			c.Set(CtxTokenVersionKey, claims.TV)

			return next(c)
		}
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func errorJSON(msg string) errorResponse {
	return errorResponse{Error: msg}
}
