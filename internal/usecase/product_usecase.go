package usecase

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"path"
	"strings"

	"maltiti/internal/domain/model"
	repo "maltiti/internal/repository"

	"github.com/shopspring/decimal"
)

const (
	productPageSize  = 10
	bestProductsSize = 8
)

type ProductUsecase struct {
	productRepo repo.ProductRepository
	auditRepo   repo.AuditLogRepository
	uploader    ImageUploader
	idGen       IDGenerator
	clock       Clock
}

// DI
func NewProductUsecase(
	productRepo repo.ProductRepository,
	auditRepo repo.AuditLogRepository,
	uploader ImageUploader,
	idGen IDGenerator,
	clock Clock,
) *ProductUsecase {
	return &ProductUsecase{
		productRepo: productRepo,
		auditRepo:   auditRepo,
		uploader:    uploader,
		idGen:       idGen,
		clock:       clock,
	}
}

// GET /productsの入力DTO
type ListProductsInput struct {
	Page     int
	Q        string
	Category string
}

type ProductListOutput struct {
	TotalItems  int64           `json:"total_items"`
	CurrentPage int             `json:"current_page"`
	TotalPages  int64           `json:"total_pages"`
	Products    []model.Product `json:"products"`
}

type BestProductsOutput struct {
	TotalItems int             `json:"total_items"`
	Data       []model.Product `json:"data"`
}

func (u *ProductUsecase) ListPublicProducts(ctx context.Context, in ListProductsInput) (ProductListOutput, error) {
	active := model.ProductStatusActive
	return u.list(ctx, in, &active)
}

// 管理者は非公開も含めて見る
func (u *ProductUsecase) AdminListProducts(ctx context.Context, in ListProductsInput) (ProductListOutput, error) {
	return u.list(ctx, in, nil)
}

func (u *ProductUsecase) list(ctx context.Context, in ListProductsInput, status *model.ProductStatus) (ProductListOutput, error) {
	if in.Page == 0 {
		in.Page = 1
	}
	if in.Page < 1 {
		return ProductListOutput{Products: []model.Product{}}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if len(in.Q) > 100 {
		return ProductListOutput{Products: []model.Product{}}, NewHTTPError(http.StatusBadRequest, "q too long")
	}

	items, total, err := u.productRepo.List(ctx, repo.ProductListQuery{
		Page:     in.Page,
		Limit:    productPageSize,
		Q:        strings.TrimSpace(in.Q),
		Category: strings.TrimSpace(in.Category),
		Status:   status,
	})
	if err != nil {
		return ProductListOutput{Products: []model.Product{}}, dbError()
	}
	if items == nil {
		items = []model.Product{}
	}

	return ProductListOutput{
		TotalItems:  total,
		CurrentPage: in.Page,
		TotalPages:  (total + productPageSize - 1) / productPageSize,
		Products:    items,
	}, nil
}

// トップページ用にランダムで8件
func (u *ProductUsecase) BestProducts(ctx context.Context) (BestProductsOutput, error) {
	items, err := u.productRepo.Random(ctx, bestProductsSize)
	if err != nil {
		return BestProductsOutput{Data: []model.Product{}}, dbError()
	}
	if items == nil {
		items = []model.Product{}
	}
	return BestProductsOutput{TotalItems: len(items), Data: items}, nil
}

func (u *ProductUsecase) GetProductDetail(ctx context.Context, productID string) (model.Product, error) {
	if productID == "" {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	p, err := u.productRepo.FindByID(ctx, productID)
	if err == repo.ErrNotFound {
		return model.Product{}, NewHTTPError(http.StatusNotFound, "product not found")
	}
	if err != nil {
		return model.Product{}, dbError()
	}

	if p.Status != model.ProductStatusActive {
		return model.Product{}, NewHTTPError(http.StatusNotFound, "product not found")
	}
	return p, nil
}

type AdminProductInput struct {
	Name          string
	Ingredients   []string
	Weight        string
	Category      string
	Description   string
	Status        string
	Size          string
	Image         string
	Wholesale     decimal.Decimal
	Retail        decimal.Decimal
	StockQuantity int64
	QuantityInBox int64
	Favorite      bool
}

func (in AdminProductInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return NewHTTPError(http.StatusBadRequest, "name required")
	}
	if strings.TrimSpace(in.Category) == "" {
		return NewHTTPError(http.StatusBadRequest, "category required")
	}
	switch model.ProductStatus(in.Status) {
	case model.ProductStatusActive, model.ProductStatusInactive:
	default:
		return NewHTTPError(http.StatusBadRequest, "invalid status")
	}
	if in.Wholesale.IsNegative() || in.Retail.IsNegative() {
		return NewHTTPError(http.StatusBadRequest, "price must be >= 0")
	}
	if in.StockQuantity < 0 {
		return NewHTTPError(http.StatusBadRequest, "stock must be >= 0")
	}
	if in.QuantityInBox < 1 {
		return NewHTTPError(http.StatusBadRequest, "quantityInBox must be >= 1")
	}
	return nil
}

// 入力を商品に写す。箱価格は入数×卸値で毎回計算し直す
func (in AdminProductInput) apply(p *model.Product) {
	p.Name = strings.TrimSpace(in.Name)
	p.Ingredients = model.JoinIngredients(in.Ingredients)
	p.Weight = in.Weight
	p.Category = strings.TrimSpace(in.Category)
	p.Description = in.Description
	p.Status = model.ProductStatus(in.Status)
	p.Size = in.Size
	p.Image = in.Image
	p.Wholesale = in.Wholesale
	p.Retail = in.Retail
	p.StockQuantity = in.StockQuantity
	p.QuantityInBox = in.QuantityInBox
	p.InBoxPrice = p.BoxPrice()
	p.Favorite = in.Favorite
}

func (u *ProductUsecase) AdminCreateProduct(ctx context.Context, adminUserID string, in AdminProductInput) (model.Product, error) {
	if adminUserID == "" {
		return model.Product{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if err := in.validate(); err != nil {
		return model.Product{}, err
	}

	now := u.clock.Now()
	p := model.Product{ID: u.idGen.NewID(), CreatedAt: now, UpdatedAt: now}
	in.apply(&p)

	if err := u.productRepo.Create(ctx, &p); err != nil {
		return model.Product{}, dbError()
	}

	if err := u.audit(ctx, adminUserID, model.AuditActionCreateProduct, p.ID, nil, p); err != nil {
		return model.Product{}, err
	}
	return p, nil
}

func (u *ProductUsecase) AdminUpdateProduct(ctx context.Context, adminUserID string, productID string, in AdminProductInput) (model.Product, error) {
	if adminUserID == "" {
		return model.Product{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if productID == "" {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "invalid product id")
	}
	if err := in.validate(); err != nil {
		return model.Product{}, err
	}

	before, err := u.find(ctx, productID)
	if err != nil {
		return model.Product{}, err
	}
	after := before
	in.apply(&after)
	after.UpdatedAt = u.clock.Now()

	return u.save(ctx, adminUserID, model.AuditActionUpdateProduct, before, after)
}

// active ⇔ inactive
func (u *ProductUsecase) AdminToggleStatus(ctx context.Context, adminUserID string, productID string) (model.Product, error) {
	if adminUserID == "" {
		return model.Product{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	before, err := u.find(ctx, productID)
	if err != nil {
		return model.Product{}, err
	}

	after := before
	if before.Status == model.ProductStatusActive {
		after.Status = model.ProductStatusInactive
	} else {
		after.Status = model.ProductStatusActive
	}
	after.UpdatedAt = u.clock.Now()

	return u.save(ctx, adminUserID, model.AuditActionToggleProductStatus, before, after)
}

func (u *ProductUsecase) AdminToggleFavorite(ctx context.Context, adminUserID string, productID string) (model.Product, error) {
	if adminUserID == "" {
		return model.Product{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	before, err := u.find(ctx, productID)
	if err != nil {
		return model.Product{}, err
	}

	after := before
	after.Favorite = !before.Favorite
	after.UpdatedAt = u.clock.Now()

	return u.save(ctx, adminUserID, model.AuditActionUpdateProduct, before, after)
}

func (u *ProductUsecase) AdminDeleteProduct(ctx context.Context, adminUserID string, productID string) error {
	if adminUserID == "" {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if productID == "" {
		return NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	before, err := u.find(ctx, productID)
	if err != nil {
		return err
	}

	err = u.productRepo.SoftDelete(ctx, productID)
	if err == repo.ErrNotFound {
		return NewHTTPError(http.StatusNotFound, "product not found")
	}
	if err != nil {
		return dbError()
	}
	return u.audit(ctx, adminUserID, model.AuditActionDeleteProduct, productID, before, nil)
}

// 画像をストレージに置いて公開URLを返す
func (u *ProductUsecase) UploadImage(ctx context.Context, filename string, contentType string, r io.Reader) (string, error) {
	if !strings.HasPrefix(contentType, "image/") {
		return "", NewHTTPError(http.StatusBadRequest, "file must be an image")
	}
	name := "products/" + u.idGen.NewID() + strings.ToLower(path.Ext(filename))
	url, err := u.uploader.Upload(ctx, name, contentType, r)
	if err != nil {
		return "", NewHTTPError(http.StatusInternalServerError, "upload failed")
	}
	return url, nil
}

func (u *ProductUsecase) find(ctx context.Context, productID string) (model.Product, error) {
	if productID == "" {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "invalid product id")
	}
	p, err := u.productRepo.FindByID(ctx, productID)
	if err == repo.ErrNotFound {
		return model.Product{}, NewHTTPError(http.StatusNotFound, "product not found")
	}
	if err != nil {
		return model.Product{}, dbError()
	}
	return p, nil
}

func (u *ProductUsecase) save(ctx context.Context, adminUserID string, action model.AuditAction, before model.Product, after model.Product) (model.Product, error) {
	err := u.productRepo.Update(ctx, after)
	if err == repo.ErrNotFound {
		return model.Product{}, NewHTTPError(http.StatusNotFound, "product not found")
	}
	if err != nil {
		return model.Product{}, dbError()
	}
	if err := u.audit(ctx, adminUserID, action, after.ID, before, after); err != nil {
		return model.Product{}, err
	}
	return after, nil
}

// 監査ログを作成
// 「誰が」「何を」「どの対象に」「どう変えたか」を残す
func (u *ProductUsecase) audit(ctx context.Context, adminUserID string, action model.AuditAction, productID string, before interface{}, after interface{}) error {
	if err := u.auditRepo.Create(ctx, model.AuditLog{
		ActorUserID:  adminUserID,
		Action:       action,
		ResourceType: model.AuditResourceProduct,
		ResourceID:   productID,
		BeforeJSON:   toJSON(before),
		AfterJSON:    toJSON(after),
		CreatedAt:    u.clock.Now(),
	}); err != nil {
		return dbError()
	}
	return nil
}

func toJSON(v interface{}) string {
	if v == nil {
		return ""
	}
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}
