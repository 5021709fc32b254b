package handler

import (
	"net/http"
	"time"

	auth "maltiti/internal/usecase/auth_usecase"

	"github.com/labstack/echo/v4"
)

const refreshCookieName = "refresh"

type AuthHandler struct {
	registerUC   *auth.RegisterUserUsecase // 会員登録usecase
	loginUC      *auth.LoginUsecase        // ログインusecase
	sessionUC    *auth.SessionUsecase      // refresh / logout
	accountUC    *auth.AccountUsecase      // メール確認・再設定・電話番号
	refreshTTL   time.Duration             // refresh cookie の有効期限
	cookieSecure bool
}

// DIコンストラクタ
func NewAuthHandler(
	registerUC *auth.RegisterUserUsecase,
	loginUC *auth.LoginUsecase,
	sessionUC *auth.SessionUsecase,
	accountUC *auth.AccountUsecase,
	refreshTTL time.Duration,
	cookieSecure bool,
) *AuthHandler {
	return &AuthHandler{
		registerUC:   registerUC,
		loginUC:      loginUC,
		sessionUC:    sessionUC,
		accountUC:    accountUC,
		refreshTTL:   refreshTTL,
		cookieSecure: cookieSecure,
	}
}

// /auth/register のリクエストボディ。
type registerRequest struct {
	Email           string `json:"email"`
	Name            string `json:"name"`
	PhoneNumber     string `json:"phoneNumber"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

// /auth/login のリクエストボディ。
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

type resetPasswordRequest struct {
	Token           string `json:"token"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

type verifyPhoneRequest struct {
	Code string `json:"code"`
}

func (h *AuthHandler) RegisterRoutes(e *echo.Echo, g Guards) {
	a := e.Group("/auth")
	a.POST("/register", h.register)
	a.POST("/login", h.login)
	a.POST("/refresh", h.refresh)
	a.GET("/verify/:userId/:token", h.verifyEmail)
	a.POST("/forgot-password", h.forgotPassword)
	a.POST("/reset-password", h.resetPassword)

	a.POST("/logout", h.logout, g.User()...)
	a.GET("/me", h.me, g.User()...)
	a.POST("/phone-code", h.requestPhoneCode, g.User()...)
	a.POST("/verify-phone", h.verifyPhone, g.User()...)
}

func (h *AuthHandler) register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorJSON("invalid body"))
	}

	out, err := h.registerUC.Execute(c.Request().Context(), auth.RegisterUserInput{
		Email:           req.Email,
		Name:            req.Name,
		PhoneNumber:     req.PhoneNumber,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, out)
}

func (h *AuthHandler) login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorJSON("invalid body"))
	}

	out, err := h.loginUC.Execute(c.Request().Context(), auth.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return writeError(c, err)
	}

	// refresh cookie
	h.setRefreshCookie(c, out.Token.RefreshToken)
	return c.JSON(http.StatusOK, out)
}

// bodyのrefresh_tokenが無ければcookieを使う
func (h *AuthHandler) refresh(c echo.Context) error {
	var req refreshRequest
	_ = c.Bind(&req)
	if req.RefreshToken == "" {
		if ck, err := c.Cookie(refreshCookieName); err == nil {
			req.RefreshToken = ck.Value
		}
	}
	if req.RefreshToken == "" {
		return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
	}

	pair, err := h.sessionUC.Refresh(c.Request().Context(), req.RefreshToken)
	if err != nil {
		return writeError(c, err)
	}

	h.setRefreshCookie(c, pair.RefreshToken)
	return c.JSON(http.StatusOK, pair)
}

func (h *AuthHandler) logout(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
	}

	if err := h.sessionUC.Logout(c.Request().Context(), userID); err != nil {
		return writeError(c, err)
	}

	h.clearRefreshCookie(c)
	return c.JSON(http.StatusOK, SuccessResponse{Message: "Logged out"})
}

func (h *AuthHandler) me(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
	}

	user, err := h.accountUC.Me(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, user)
}

func (h *AuthHandler) verifyEmail(c echo.Context) error {
	if err := h.accountUC.VerifyEmail(c.Request().Context(), c.Param("userId"), c.Param("token")); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "Email verified"})
}

func (h *AuthHandler) forgotPassword(c echo.Context) error {
	var req forgotPasswordRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorJSON("invalid body"))
	}

	if err := h.accountUC.ForgotPassword(c.Request().Context(), req.Email); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "Password reset link sent"})
}

func (h *AuthHandler) resetPassword(c echo.Context) error {
	var req resetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorJSON("invalid body"))
	}

	err := h.accountUC.ResetPassword(c.Request().Context(), auth.ResetPasswordInput{
		Token:           req.Token,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "Password updated"})
}

func (h *AuthHandler) requestPhoneCode(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
	}

	if err := h.accountUC.RequestPhoneCode(c.Request().Context(), userID); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "Verification code sent"})
}

func (h *AuthHandler) verifyPhone(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
	}

	var req verifyPhoneRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorJSON("invalid body"))
	}

	user, err := h.accountUC.VerifyPhone(c.Request().Context(), userID, req.Code)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, user)
}

// refreshtoken をCookieにセット。
func (h *AuthHandler) setRefreshCookie(c echo.Context, plainRefresh string) {
	c.SetCookie(&http.Cookie{
		Name:     refreshCookieName,
		Value:    plainRefresh,
		Path:     "/auth",
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(h.refreshTTL),
	})
}

func (h *AuthHandler) clearRefreshCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     refreshCookieName,
		Value:    "",
		Path:     "/auth",
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}
