// Package mocks holds testify mocks of the repository ports.
package mocks

import (
	"context"
	"time"

	"maltiti/internal/domain/model"
	repo "maltiti/internal/repository"

	"github.com/stretchr/testify/mock"
)

// WithinTxの中で渡すreposを固定する。fnがエラーを返したらロールバック扱い
type TxManager struct {
	Repos      repo.TxRepos
	Commits    int
	Rollbacks  int
	BeginError error
}

func (m *TxManager) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	if m.BeginError != nil {
		return m.BeginError
	}
	if err := fn(m.Repos); err != nil {
		m.Rollbacks++
		return err
	}
	m.Commits++
	return nil
}

type TxRepos struct {
	CheckoutRepo     *CheckoutRepository
	CartRepo         *CartRepository
	ProductRepo      *ProductRepository
	UserRepo         *UserRepository
	VerificationRepo *VerificationRepository
	NotificationRepo *NotificationRepository
	AuditLogRepo     *AuditLogRepository
}

// 全部新しいmockで埋める
func NewTxRepos() *TxRepos {
	return &TxRepos{
		CheckoutRepo:     new(CheckoutRepository),
		CartRepo:         new(CartRepository),
		ProductRepo:      new(ProductRepository),
		UserRepo:         new(UserRepository),
		VerificationRepo: new(VerificationRepository),
		NotificationRepo: new(NotificationRepository),
		AuditLogRepo:     new(AuditLogRepository),
	}
}

func (r *TxRepos) Checkouts() repo.CheckoutRepository         { return r.CheckoutRepo }
func (r *TxRepos) Carts() repo.CartRepository                 { return r.CartRepo }
func (r *TxRepos) Products() repo.ProductRepository           { return r.ProductRepo }
func (r *TxRepos) Users() repo.UserRepository                 { return r.UserRepo }
func (r *TxRepos) Verifications() repo.VerificationRepository { return r.VerificationRepo }
func (r *TxRepos) Notifications() repo.NotificationRepository { return r.NotificationRepo }
func (r *TxRepos) AuditLogs() repo.AuditLogRepository         { return r.AuditLogRepo }

type CheckoutRepository struct{ mock.Mock }

func (m *CheckoutRepository) Create(ctx context.Context, c *model.Checkout) error {
	return m.Called(ctx, c).Error(0)
}

func (m *CheckoutRepository) FindByID(ctx context.Context, id string) (model.Checkout, error) {
	args := m.Called(ctx, id)
	c, _ := args.Get(0).(model.Checkout)
	return c, args.Error(1)
}

func (m *CheckoutRepository) FindByIDForUpdate(ctx context.Context, id string) (model.Checkout, error) {
	args := m.Called(ctx, id)
	c, _ := args.Get(0).(model.Checkout)
	return c, args.Error(1)
}

func (m *CheckoutRepository) UpdateStatuses(ctx context.Context, c model.Checkout) error {
	return m.Called(ctx, c).Error(0)
}

func (m *CheckoutRepository) ListByUserID(ctx context.Context, userID string) ([]model.Checkout, error) {
	args := m.Called(ctx, userID)
	items, _ := args.Get(0).([]model.Checkout)
	return items, args.Error(1)
}

func (m *CheckoutRepository) ListAdmin(ctx context.Context, f repo.CheckoutListFilter) ([]model.Checkout, int64, error) {
	args := m.Called(ctx, f)
	items, _ := args.Get(0).([]model.Checkout)
	total, _ := args.Get(1).(int64)
	return items, total, args.Error(2)
}

type CartRepository struct{ mock.Mock }

func (m *CartRepository) ListOpenByUserID(ctx context.Context, userID string) ([]model.Cart, error) {
	args := m.Called(ctx, userID)
	items, _ := args.Get(0).([]model.Cart)
	return items, args.Error(1)
}

func (m *CartRepository) FindOpenByUserAndProduct(ctx context.Context, userID string, productID string) (model.Cart, error) {
	args := m.Called(ctx, userID, productID)
	c, _ := args.Get(0).(model.Cart)
	return c, args.Error(1)
}

func (m *CartRepository) FindOpenByID(ctx context.Context, userID string, cartID string) (model.Cart, error) {
	args := m.Called(ctx, userID, cartID)
	c, _ := args.Get(0).(model.Cart)
	return c, args.Error(1)
}

func (m *CartRepository) Create(ctx context.Context, c *model.Cart) error {
	return m.Called(ctx, c).Error(0)
}

func (m *CartRepository) UpdateQuantity(ctx context.Context, userID string, cartID string, qty int64) error {
	return m.Called(ctx, userID, cartID, qty).Error(0)
}

func (m *CartRepository) DeleteOpen(ctx context.Context, userID string, cartID string) error {
	return m.Called(ctx, userID, cartID).Error(0)
}

func (m *CartRepository) DeleteAllOpen(ctx context.Context, userID string) (int64, error) {
	args := m.Called(ctx, userID)
	n, _ := args.Get(0).(int64)
	return n, args.Error(1)
}

func (m *CartRepository) AttachOpenToCheckout(ctx context.Context, userID string, checkoutID string) (int64, error) {
	args := m.Called(ctx, userID, checkoutID)
	n, _ := args.Get(0).(int64)
	return n, args.Error(1)
}

type ProductRepository struct{ mock.Mock }

func (m *ProductRepository) List(ctx context.Context, q repo.ProductListQuery) ([]model.Product, int64, error) {
	args := m.Called(ctx, q)
	items, _ := args.Get(0).([]model.Product)
	total, _ := args.Get(1).(int64)
	return items, total, args.Error(2)
}

func (m *ProductRepository) Random(ctx context.Context, limit int) ([]model.Product, error) {
	args := m.Called(ctx, limit)
	items, _ := args.Get(0).([]model.Product)
	return items, args.Error(1)
}

func (m *ProductRepository) FindByID(ctx context.Context, id string) (model.Product, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(model.Product)
	return p, args.Error(1)
}

func (m *ProductRepository) Create(ctx context.Context, p *model.Product) error {
	return m.Called(ctx, p).Error(0)
}

func (m *ProductRepository) Update(ctx context.Context, p model.Product) error {
	return m.Called(ctx, p).Error(0)
}

func (m *ProductRepository) SoftDelete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type UserRepository struct{ mock.Mock }

func (m *UserRepository) Create(ctx context.Context, user *model.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *UserRepository) FindByID(ctx context.Context, userID string) (*model.User, error) {
	args := m.Called(ctx, userID)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *UserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *UserRepository) Update(ctx context.Context, user *model.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *UserRepository) IncrementTokenVersion(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

type VerificationRepository struct{ mock.Mock }

func (m *VerificationRepository) Create(ctx context.Context, v *model.Verification) error {
	return m.Called(ctx, v).Error(0)
}

func (m *VerificationRepository) FindByToken(ctx context.Context, t model.VerificationType, token string) (model.Verification, error) {
	args := m.Called(ctx, t, token)
	v, _ := args.Get(0).(model.Verification)
	return v, args.Error(1)
}

func (m *VerificationRepository) DeleteByUser(ctx context.Context, userID string, t model.VerificationType) error {
	return m.Called(ctx, userID, t).Error(0)
}

type NotificationRepository struct{ mock.Mock }

func (m *NotificationRepository) Enqueue(ctx context.Context, items []model.Notification) error {
	return m.Called(ctx, items).Error(0)
}

func (m *NotificationRepository) ClaimDue(ctx context.Context, now, leaseUntil time.Time, limit int) ([]model.Notification, error) {
	args := m.Called(ctx, now, leaseUntil, limit)
	items, _ := args.Get(0).([]model.Notification)
	return items, args.Error(1)
}

func (m *NotificationRepository) MarkSent(ctx context.Context, id string, at time.Time) error {
	return m.Called(ctx, id, at).Error(0)
}

func (m *NotificationRepository) MarkFailedAttempt(ctx context.Context, id string, attempts int, nextAttemptAt time.Time, lastErr string, status model.NotificationStatus) error {
	return m.Called(ctx, id, attempts, nextAttemptAt, lastErr, status).Error(0)
}

type AuditLogRepository struct{ mock.Mock }

func (m *AuditLogRepository) Create(ctx context.Context, log model.AuditLog) error {
	return m.Called(ctx, log).Error(0)
}

func (m *AuditLogRepository) List(ctx context.Context, filter repo.AuditLogFilter) ([]model.AuditLog, error) {
	args := m.Called(ctx, filter)
	items, _ := args.Get(0).([]model.AuditLog)
	return items, args.Error(1)
}

type CooperativeRepository struct{ mock.Mock }

func (m *CooperativeRepository) Create(ctx context.Context, c *model.Cooperative) error {
	return m.Called(ctx, c).Error(0)
}

func (m *CooperativeRepository) FindByID(ctx context.Context, id string) (model.Cooperative, error) {
	args := m.Called(ctx, id)
	c, _ := args.Get(0).(model.Cooperative)
	return c, args.Error(1)
}

func (m *CooperativeRepository) FindByName(ctx context.Context, name string) (model.Cooperative, error) {
	args := m.Called(ctx, name)
	c, _ := args.Get(0).(model.Cooperative)
	return c, args.Error(1)
}

func (m *CooperativeRepository) Update(ctx context.Context, c model.Cooperative) error {
	return m.Called(ctx, c).Error(0)
}

func (m *CooperativeRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *CooperativeRepository) List(ctx context.Context, q string, page int, limit int) ([]model.Cooperative, int64, error) {
	args := m.Called(ctx, q, page, limit)
	items, _ := args.Get(0).([]model.Cooperative)
	total, _ := args.Get(1).(int64)
	return items, total, args.Error(2)
}

type CooperativeMemberRepository struct{ mock.Mock }

func (m *CooperativeMemberRepository) Create(ctx context.Context, mem *model.CooperativeMember) error {
	return m.Called(ctx, mem).Error(0)
}

func (m *CooperativeMemberRepository) FindByID(ctx context.Context, id string) (model.CooperativeMember, error) {
	args := m.Called(ctx, id)
	c, _ := args.Get(0).(model.CooperativeMember)
	return c, args.Error(1)
}

func (m *CooperativeMemberRepository) FindByPhoneNumber(ctx context.Context, phone string) (model.CooperativeMember, error) {
	args := m.Called(ctx, phone)
	c, _ := args.Get(0).(model.CooperativeMember)
	return c, args.Error(1)
}

func (m *CooperativeMemberRepository) Update(ctx context.Context, mem model.CooperativeMember) error {
	return m.Called(ctx, mem).Error(0)
}

func (m *CooperativeMemberRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *CooperativeMemberRepository) List(ctx context.Context, q string, page int, limit int) ([]model.CooperativeMember, int64, error) {
	args := m.Called(ctx, q, page, limit)
	items, _ := args.Get(0).([]model.CooperativeMember)
	total, _ := args.Get(1).(int64)
	return items, total, args.Error(2)
}

func (m *CooperativeMemberRepository) ListByCooperativeID(ctx context.Context, cooperativeID string) ([]model.CooperativeMember, error) {
	args := m.Called(ctx, cooperativeID)
	items, _ := args.Get(0).([]model.CooperativeMember)
	return items, args.Error(1)
}

type RefreshTokenStore struct{ mock.Mock }

func (m *RefreshTokenStore) Save(ctx context.Context, userID string, tokenID string, ttl time.Duration) error {
	return m.Called(ctx, userID, tokenID, ttl).Error(0)
}

func (m *RefreshTokenStore) Get(ctx context.Context, userID string) (string, error) {
	args := m.Called(ctx, userID)
	return args.String(0), args.Error(1)
}

func (m *RefreshTokenStore) Delete(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}
