package handler

import (
	"net/http"

	"maltiti/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// 商品の作成・更新リクエスト
type ProductRequest struct {
	Name          string          `json:"name"`
	Ingredients   []string        `json:"ingredients"`
	Weight        string          `json:"weight"`
	Category      string          `json:"category"`
	Description   string          `json:"description"`
	Status        string          `json:"status"`
	Size          string          `json:"size"`
	Image         string          `json:"image"`
	Wholesale     decimal.Decimal `json:"wholesale"`
	Retail        decimal.Decimal `json:"retail"`
	StockQuantity int64           `json:"stockQuantity"`
	QuantityInBox int64           `json:"quantityInBox"`
	Favorite      bool            `json:"favorite"`
}

func (r ProductRequest) input() usecase.AdminProductInput {
	return usecase.AdminProductInput{
		Name:          r.Name,
		Ingredients:   r.Ingredients,
		Weight:        r.Weight,
		Category:      r.Category,
		Description:   r.Description,
		Status:        r.Status,
		Size:          r.Size,
		Image:         r.Image,
		Wholesale:     r.Wholesale,
		Retail:        r.Retail,
		StockQuantity: r.StockQuantity,
		QuantityInBox: r.QuantityInBox,
		Favorite:      r.Favorite,
	}
}

type ImageUploadResponse struct {
	URL string `json:"url"`
}

// /admin/products
type AdminProductHandler struct {
	uc *usecase.ProductUsecase
}

// DI
func NewAdminProductHandler(uc *usecase.ProductUsecase) *AdminProductHandler {
	return &AdminProductHandler{uc: uc}
}

// adminを登録
func (h *AdminProductHandler) RegisterRoutes(e *echo.Echo, g Guards) {
	admin := e.Group("/admin/products", g.AdminOnly()...)

	admin.GET("", h.list)
	admin.POST("", h.createProduct)
	admin.POST("/image", h.uploadImage)
	admin.PUT("/:id", h.updateProduct)
	admin.PATCH("/:id/status", h.toggleStatus)
	admin.PATCH("/:id/favorite", h.toggleFavorite)
	admin.DELETE("/:id", h.deleteProduct)
}

func (h *AdminProductHandler) list(c echo.Context) error {
	page, ok := queryPage(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, errorJSON("invalid page"))
	}

	out, err := h.uc.AdminListProducts(c.Request().Context(), usecase.ListProductsInput{
		Page:     page,
		Q:        c.QueryParam("searchTerm"),
		Category: c.QueryParam("category"),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AdminProductHandler) createProduct(c echo.Context) error {
	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
	}

	var req ProductRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorJSON("invalid body"))
	}

	p, err := h.uc.AdminCreateProduct(c.Request().Context(), adminID, req.input())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *AdminProductHandler) updateProduct(c echo.Context) error {
	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
	}

	var req ProductRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorJSON("invalid body"))
	}

	p, err := h.uc.AdminUpdateProduct(c.Request().Context(), adminID, c.Param("id"), req.input())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *AdminProductHandler) toggleStatus(c echo.Context) error {
	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
	}

	p, err := h.uc.AdminToggleStatus(c.Request().Context(), adminID, c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *AdminProductHandler) toggleFavorite(c echo.Context) error {
	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
	}

	p, err := h.uc.AdminToggleFavorite(c.Request().Context(), adminID, c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *AdminProductHandler) deleteProduct(c echo.Context) error {
	adminID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
	}

	if err := h.uc.AdminDeleteProduct(c.Request().Context(), adminID, c.Param("id")); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "Product deleted"})
}

// multipartの"image"をGCSへ
func (h *AdminProductHandler) uploadImage(c echo.Context) error {
	fh, err := c.FormFile("image")
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorJSON("image required"))
	}
	f, err := fh.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorJSON("image required"))
	}
	defer f.Close()

	url, err := h.uc.UploadImage(c.Request().Context(), fh.Filename, fh.Header.Get("Content-Type"), f)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, ImageUploadResponse{URL: url})
}
