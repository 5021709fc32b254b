package repository_test

import (
	"context"
	"errors"
	"os"
	"sort"
	"testing"
	"time"

	"maltiti/internal/config"
	"maltiti/internal/domain/model"
	"maltiti/internal/infra/db"
	infraRepo "maltiti/internal/infra/repository"
	repo "maltiti/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// =====================
// Helpers
// =====================

// TEST_DATABASE_DSNが無ければスキップ
func openDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		t.Skip("TEST_DATABASE_DSN is not set")
	}

	gormDB, err := db.Connect(config.PostgresConfig{DatabaseURL: dsn})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gormDB, zap.NewNop()))

	sqlDB, err := gormDB.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return gormDB
}

// 作った行はテスト後に消す（子→親の順）
func cleanup(t *testing.T, gormDB *gorm.DB, userID string, productID string) {
	t.Helper()
	t.Cleanup(func() {
		gormDB.Exec("DELETE FROM carts WHERE user_id = ?", userID)
		gormDB.Exec("DELETE FROM checkouts WHERE user_id = ?", userID)
		gormDB.Unscoped().Exec("DELETE FROM products WHERE id = ?", productID)
		gormDB.Exec("DELETE FROM users WHERE id = ?", userID)
	})
}

type seed struct {
	user    model.User
	product model.Product
}

func seedUserAndProduct(t *testing.T, gormDB *gorm.DB) seed {
	t.Helper()
	ctx := context.Background()

	u := model.User{
		ID:           uuid.NewString(),
		Email:        uuid.NewString() + "@example.com",
		Name:         "Ama",
		PasswordHash: "x",
		Role:         model.RoleUser,
		IsActive:     true,
	}
	p := model.Product{
		ID:            uuid.NewString(),
		Name:          "Shea butter",
		Status:        model.ProductStatusActive,
		Retail:        decimal.NewFromInt(10),
		Wholesale:     decimal.NewFromInt(8),
		QuantityInBox: 2,
	}
	cleanup(t, gormDB, u.ID, p.ID)

	require.NoError(t, infraRepo.NewUserGormRepository(gormDB).Create(ctx, &u))
	require.NoError(t, infraRepo.NewProductGormRepository(gormDB).Create(ctx, &p))
	return seed{user: u, product: p}
}

func newCheckout(userID string, name string, createdAt time.Time, status model.OrderStatus, ps model.PaymentStatus) model.Checkout {
	id := uuid.NewString()
	return model.Checkout{
		ID:               id,
		UserID:           userID,
		Amount:           decimal.NewFromInt(60),
		Name:             name,
		Location:         "12 Hospital Rd, Tamale",
		OrderStatus:      status,
		PaymentStatus:    ps,
		PaymentReference: model.PaymentReference(userID, id),
		CreatedAt:        createdAt,
		UpdatedAt:        createdAt,
	}
}

// =====================
// Checkout list
// =====================

func TestCheckoutGorm_ListAdmin_SortFiltersAndCount(t *testing.T) {
	gormDB := openDB(t)
	ctx := context.Background()
	s := seedUserAndProduct(t, gormDB)
	checkouts := infraRepo.NewCheckoutGormRepository(gormDB)

	// 検索語をテストごとに変えて他の行と混ざらないようにする
	tag := "List-" + uuid.NewString()[:8]
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	oldest := newCheckout(s.user.ID, tag+" Ama", base, model.OrderStatusReview, model.PaymentStatusUnpaid)
	tieA := newCheckout(s.user.ID, tag+" Kofi", base.Add(time.Hour), model.OrderStatusReview, model.PaymentStatusPaid)
	tieB := newCheckout(s.user.ID, tag+" kofi mensah", base.Add(time.Hour), model.OrderStatusReview, model.PaymentStatusPaid)
	newest := newCheckout(s.user.ID, tag+" Esi", base.Add(2*time.Hour), model.OrderStatusPackaging, model.PaymentStatusPaid)
	for _, c := range []model.Checkout{oldest, tieA, tieB, newest} {
		c := c
		require.NoError(t, checkouts.Create(ctx, &c))
	}

	items, total, err := checkouts.ListAdmin(ctx, repo.CheckoutListFilter{Page: 1, Limit: 10, SearchTerm: tag})
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)
	require.Len(t, items, 4)

	// created_at desc、同時刻はid desc
	ties := []string{tieA.ID, tieB.ID}
	sort.Sort(sort.Reverse(sort.StringSlice(ties)))
	assert.Equal(t, []string{newest.ID, ties[0], ties[1], oldest.ID},
		[]string{items[0].ID, items[1].ID, items[2].ID, items[3].ID})

	// 名前は大文字小文字を区別しない部分一致
	items, total, err = checkouts.ListAdmin(ctx, repo.CheckoutListFilter{Page: 1, Limit: 10, SearchTerm: tag + " KOFI"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, items, 2)

	// ステータス条件はAND
	items, total, err = checkouts.ListAdmin(ctx, repo.CheckoutListFilter{
		Page: 1, Limit: 10, SearchTerm: tag,
		OrderStatus:   model.OrderStatusReview,
		PaymentStatus: model.PaymentStatusPaid,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	for _, it := range items {
		assert.Equal(t, model.OrderStatusReview, it.OrderStatus)
		assert.Equal(t, model.PaymentStatusPaid, it.PaymentStatus)
	}

	// totalはページに関係なく全件
	items, total, err = checkouts.ListAdmin(ctx, repo.CheckoutListFilter{Page: 2, Limit: 3, SearchTerm: tag})
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)
	require.Len(t, items, 1)
	assert.Equal(t, oldest.ID, items[0].ID)
}

// =====================
// Cart lines
// =====================

func TestCartGorm_OpenLineIsUniquePerProduct(t *testing.T) {
	gormDB := openDB(t)
	ctx := context.Background()
	s := seedUserAndProduct(t, gormDB)
	carts := infraRepo.NewCartGormRepository(gormDB)
	checkouts := infraRepo.NewCheckoutGormRepository(gormDB)

	first := model.Cart{ID: uuid.NewString(), UserID: s.user.ID, ProductID: s.product.ID, Quantity: 1}
	require.NoError(t, carts.Create(ctx, &first))

	dup := model.Cart{ID: uuid.NewString(), UserID: s.user.ID, ProductID: s.product.ID, Quantity: 2}
	assert.True(t, errors.Is(carts.Create(ctx, &dup), repo.ErrConflict))

	// 注文済みになった明細は索引の対象外
	order := newCheckout(s.user.ID, "Ama", time.Now().UTC(), model.OrderStatusReview, model.PaymentStatusUnpaid)
	require.NoError(t, checkouts.Create(ctx, &order))
	n, err := carts.AttachOpenToCheckout(ctx, s.user.ID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	again := model.Cart{ID: uuid.NewString(), UserID: s.user.ID, ProductID: s.product.ID, Quantity: 3}
	require.NoError(t, carts.Create(ctx, &again))
}

func TestCartGorm_AttachOpenToCheckout_RollbackLeavesLinesOpen(t *testing.T) {
	gormDB := openDB(t)
	ctx := context.Background()
	s := seedUserAndProduct(t, gormDB)
	carts := infraRepo.NewCartGormRepository(gormDB)
	checkouts := infraRepo.NewCheckoutGormRepository(gormDB)
	tx := infraRepo.NewTxManagerGorm(gormDB)

	line := model.Cart{ID: uuid.NewString(), UserID: s.user.ID, ProductID: s.product.ID, Quantity: 3}
	require.NoError(t, carts.Create(ctx, &line))

	order := newCheckout(s.user.ID, "Ama", time.Now().UTC(), model.OrderStatusReview, model.PaymentStatusUnpaid)
	gatewayDown := errors.New("gateway down")

	err := tx.WithinTx(ctx, func(r repo.TxRepos) error {
		if err := r.Checkouts().Create(ctx, &order); err != nil {
			return err
		}
		n, err := r.Carts().AttachOpenToCheckout(ctx, s.user.ID, order.ID)
		if err != nil {
			return err
		}
		if n != 1 {
			return errors.New("expected one attached line")
		}
		return gatewayDown
	})
	require.ErrorIs(t, err, gatewayDown)

	_, err = checkouts.FindByID(ctx, order.ID)
	assert.ErrorIs(t, err, repo.ErrNotFound)

	open, err := carts.ListOpenByUserID(ctx, s.user.ID)
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, line.ID, open[0].ID)
	assert.Nil(t, open[0].CheckoutID)
	assert.Equal(t, s.product.ID, open[0].Product.ID)
}

func TestCartGorm_AttachOpenToCheckout_CommitFreezesLines(t *testing.T) {
	gormDB := openDB(t)
	ctx := context.Background()
	s := seedUserAndProduct(t, gormDB)
	carts := infraRepo.NewCartGormRepository(gormDB)
	checkouts := infraRepo.NewCheckoutGormRepository(gormDB)
	tx := infraRepo.NewTxManagerGorm(gormDB)

	line := model.Cart{ID: uuid.NewString(), UserID: s.user.ID, ProductID: s.product.ID, Quantity: 3}
	require.NoError(t, carts.Create(ctx, &line))

	order := newCheckout(s.user.ID, "Ama", time.Now().UTC(), model.OrderStatusReview, model.PaymentStatusUnpaid)
	require.NoError(t, tx.WithinTx(ctx, func(r repo.TxRepos) error {
		if err := r.Checkouts().Create(ctx, &order); err != nil {
			return err
		}
		_, err := r.Carts().AttachOpenToCheckout(ctx, s.user.ID, order.ID)
		return err
	}))

	open, err := carts.ListOpenByUserID(ctx, s.user.ID)
	require.NoError(t, err)
	assert.Empty(t, open)

	// 注文済み明細は編集も削除もできない
	assert.ErrorIs(t, carts.UpdateQuantity(ctx, s.user.ID, line.ID, 9), repo.ErrNotFound)
	assert.ErrorIs(t, carts.DeleteOpen(ctx, s.user.ID, line.ID), repo.ErrNotFound)

	got, err := checkouts.FindByID(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, got.Carts, 1)
	assert.Equal(t, line.ID, got.Carts[0].ID)
	assert.Equal(t, s.product.ID, got.Carts[0].Product.ID)
}

// =====================
// Notifications
// =====================

func TestNotificationGorm_ClaimDue_HidesClaimedRowsUntilLeaseEnds(t *testing.T) {
	gormDB := openDB(t)
	ctx := context.Background()
	notifications := infraRepo.NewNotificationGormRepository(gormDB)

	now := time.Now().UTC().Truncate(time.Second)
	n := model.Notification{
		ID:            uuid.NewString(),
		Channel:       model.ChannelSMS,
		Recipient:     "+233201111111",
		Body:          "hi",
		Status:        model.NotificationPending,
		NextAttemptAt: time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	t.Cleanup(func() { gormDB.Exec("DELETE FROM notifications WHERE id = ?", n.ID) })
	require.NoError(t, notifications.Enqueue(ctx, []model.Notification{n}))

	lease := now.Add(time.Minute)
	claimed, err := notifications.ClaimDue(ctx, now, lease, 1000)
	require.NoError(t, err)
	assert.True(t, containsNotification(claimed, n.ID))

	// leaseの間は次のClaimDueに出てこない
	again, err := notifications.ClaimDue(ctx, now, lease, 1000)
	require.NoError(t, err)
	assert.False(t, containsNotification(again, n.ID))

	afterLease, err := notifications.ClaimDue(ctx, lease, lease.Add(time.Minute), 1000)
	require.NoError(t, err)
	assert.True(t, containsNotification(afterLease, n.ID))

	require.NoError(t, notifications.MarkSent(ctx, n.ID, now))
	done, err := notifications.ClaimDue(ctx, lease.Add(time.Hour), lease.Add(2*time.Hour), 1000)
	require.NoError(t, err)
	assert.False(t, containsNotification(done, n.ID))
}

func containsNotification(items []model.Notification, id string) bool {
	for _, it := range items {
		if it.ID == id {
			return true
		}
	}
	return false
}

// =====================
// Audit logs
// =====================

func TestAuditLogGorm_ListNewestFirstWithFilters(t *testing.T) {
	gormDB := openDB(t)
	ctx := context.Background()
	audits := infraRepo.NewAuditLogGormRepository(gormDB)

	actor := uuid.NewString()
	orderID := uuid.NewString()
	t.Cleanup(func() { gormDB.Exec("DELETE FROM audit_logs WHERE actor_user_id = ?", actor) })

	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	entries := []model.AuditLog{
		{ActorUserID: actor, Action: model.AuditActionUpdateOrderStatus, ResourceType: model.AuditResourceOrder, ResourceID: orderID, CreatedAt: base},
		{ActorUserID: actor, Action: model.AuditActionUpdatePaymentStatus, ResourceType: model.AuditResourceOrder, ResourceID: orderID, CreatedAt: base.Add(time.Minute)},
		{ActorUserID: actor, Action: model.AuditActionUpdateOrderStatus, ResourceType: model.AuditResourceOrder, ResourceID: uuid.NewString(), CreatedAt: base.Add(2 * time.Minute)},
	}
	for _, e := range entries {
		require.NoError(t, audits.Create(ctx, e))
	}

	logs, err := audits.List(ctx, repo.AuditLogFilter{ActorUserID: &actor})
	require.NoError(t, err)
	require.Len(t, logs, 3)
	assert.True(t, logs[0].CreatedAt.After(logs[1].CreatedAt))
	assert.True(t, logs[1].CreatedAt.After(logs[2].CreatedAt))

	rt := model.AuditResourceOrder
	logs, err = audits.List(ctx, repo.AuditLogFilter{ActorUserID: &actor, ResourceType: &rt, ResourceID: &orderID})
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, model.AuditActionUpdatePaymentStatus, logs[0].Action)

	from := base.Add(30 * time.Second)
	logs, err = audits.List(ctx, repo.AuditLogFilter{ActorUserID: &actor, CreatedFrom: &from, Limit: 1})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.NotEqual(t, orderID, logs[0].ResourceID)
}
