package usecase

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"maltiti/internal/domain/model"
	"maltiti/internal/notify"
	repo "maltiti/internal/repository"
)

// 管理画面の1ページ件数は固定
const adminOrderPageSize = 10

type AdminOrderUsecase struct {
	tx        repo.TransactionManager
	checkouts repo.CheckoutRepository
	auditRepo repo.AuditLogRepository
	notices   *notify.Composer
	clock     Clock
}

func NewAdminOrderUsecase(tx repo.TransactionManager, checkouts repo.CheckoutRepository, auditRepo repo.AuditLogRepository, notices *notify.Composer, clock Clock) *AdminOrderUsecase {
	return &AdminOrderUsecase{
		tx:        tx,
		checkouts: checkouts,
		auditRepo: auditRepo,
		notices:   notices,
		clock:     clock,
	}
}

type AdminOrderListInput struct {
	Page          int
	SearchTerm    string
	OrderStatus   string
	PaymentStatus string
}

type AdminOrderListOutput struct {
	TotalItems  int64            `json:"total_items"`
	CurrentPage int              `json:"current_page"`
	TotalPages  int64            `json:"total_pages"`
	Orders      []model.Checkout `json:"orders"`
}

// 注文一覧（名前の部分一致、ステータス完全一致。条件はANDで効く）
func (u *AdminOrderUsecase) List(ctx context.Context, in AdminOrderListInput) (AdminOrderListOutput, error) {
	if in.Page < 1 {
		return AdminOrderListOutput{Orders: []model.Checkout{}}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}

	f := repo.CheckoutListFilter{
		Page:       in.Page,
		Limit:      adminOrderPageSize,
		SearchTerm: strings.TrimSpace(in.SearchTerm),
	}
	if s := strings.TrimSpace(in.OrderStatus); s != "" {
		st := model.OrderStatus(s)
		if !st.Valid() {
			return AdminOrderListOutput{Orders: []model.Checkout{}}, NewHTTPError(http.StatusBadRequest, "invalid order status")
		}
		f.OrderStatus = st
	}
	if s := strings.TrimSpace(in.PaymentStatus); s != "" {
		st := model.PaymentStatus(s)
		if !st.Valid() {
			return AdminOrderListOutput{Orders: []model.Checkout{}}, NewHTTPError(http.StatusBadRequest, "invalid payment status")
		}
		f.PaymentStatus = st
	}

	orders, total, err := u.checkouts.ListAdmin(ctx, f)
	if err != nil {
		return AdminOrderListOutput{Orders: []model.Checkout{}}, dbError()
	}
	if orders == nil {
		orders = []model.Checkout{}
	}

	return AdminOrderListOutput{
		TotalItems:  total,
		CurrentPage: in.Page,
		TotalPages:  (total + adminOrderPageSize - 1) / adminOrderPageSize,
		Orders:      orders,
	}, nil
}

// 注文ステータスだけを書き換える。遷移の正しさは見ない（管理者の判断）
func (u *AdminOrderUsecase) UpdateOrderStatus(ctx context.Context, actorAdminUserID string, checkoutID string, status string) (model.Checkout, error) {
	next := model.OrderStatus(strings.TrimSpace(status))
	if !next.Valid() {
		return model.Checkout{}, NewHTTPError(http.StatusBadRequest, "invalid order status")
	}

	return u.update(ctx, actorAdminUserID, checkoutID, model.AuditActionUpdateOrderStatus,
		func(c *model.Checkout) (string, string) {
			before := string(c.OrderStatus)
			c.OrderStatus = next
			return before, string(next)
		},
		u.notices.OrderStatusChanged,
	)
}

// 支払いステータスだけを書き換える
func (u *AdminOrderUsecase) UpdatePaymentStatus(ctx context.Context, actorAdminUserID string, checkoutID string, status string) (model.Checkout, error) {
	next := model.PaymentStatus(strings.TrimSpace(status))
	if !next.Valid() {
		return model.Checkout{}, NewHTTPError(http.StatusBadRequest, "invalid payment status")
	}

	return u.update(ctx, actorAdminUserID, checkoutID, model.AuditActionUpdatePaymentStatus,
		func(c *model.Checkout) (string, string) {
			before := string(c.PaymentStatus)
			c.PaymentStatus = next
			return before, string(next)
		},
		u.notices.PaymentStatusChanged,
	)
}

// 行ロック → 変更 → 監査ログ → 通知 を1つのTxで行う
func (u *AdminOrderUsecase) update(
	ctx context.Context,
	actorAdminUserID string,
	checkoutID string,
	action model.AuditAction,
	apply func(c *model.Checkout) (before string, after string),
	compose func(model.User, model.Checkout) []model.Notification,
) (model.Checkout, error) {
	if actorAdminUserID == "" {
		return model.Checkout{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if checkoutID == "" {
		return model.Checkout{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var out model.Checkout

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		c, err := r.Checkouts().FindByIDForUpdate(ctx, checkoutID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "order not found")
		}
		if err != nil {
			return dbError()
		}

		before, after := apply(&c)
		c.UpdatedAt = u.clock.Now()
		if err := r.Checkouts().UpdateStatuses(ctx, c); err != nil {
			if err == repo.ErrNotFound {
				return NewHTTPError(http.StatusNotFound, "order not found")
			}
			return dbError()
		}

		if err := r.AuditLogs().Create(ctx, model.AuditLog{
			ActorUserID:  actorAdminUserID,
			Action:       action,
			ResourceType: model.AuditResourceOrder,
			ResourceID:   c.ID,
			BeforeJSON:   statusJSON(before),
			AfterJSON:    statusJSON(after),
			CreatedAt:    c.UpdatedAt,
		}); err != nil {
			return dbError()
		}

		if err := enqueueForOwner(ctx, r, c, compose); err != nil {
			return err
		}

		out, err = r.Checkouts().FindByID(ctx, c.ID)
		if err != nil {
			return dbError()
		}
		return nil
	})
	if err != nil {
		return model.Checkout{}, err
	}
	return out, nil
}

func statusJSON(status string) string {
	b, _ := json.Marshal(map[string]string{"status": status})
	return string(b)
}

type AuditLogListInput struct {
	ActorUserID  string
	Action       string
	ResourceType string
	ResourceID   string
	From         string
	To           string
	Limit        int
	Offset       int
}

// 監査ログ一覧（期間はRFC3339）
func (u *AdminOrderUsecase) ListAuditLogs(ctx context.Context, in AuditLogListInput) ([]model.AuditLog, error) {
	if in.Limit == 0 {
		in.Limit = 50
	}
	if in.Limit < 1 || in.Limit > 200 {
		return []model.AuditLog{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}
	if in.Offset < 0 {
		return []model.AuditLog{}, NewHTTPError(http.StatusBadRequest, "invalid offset")
	}

	f := repo.AuditLogFilter{Limit: in.Limit, Offset: in.Offset}
	if s := strings.TrimSpace(in.ActorUserID); s != "" {
		f.ActorUserID = &s
	}
	if s := strings.TrimSpace(in.Action); s != "" {
		a := model.AuditAction(s)
		f.Action = &a
	}
	if s := strings.TrimSpace(in.ResourceType); s != "" {
		rt := model.AuditResourceType(s)
		f.ResourceType = &rt
	}
	if s := strings.TrimSpace(in.ResourceID); s != "" {
		f.ResourceID = &s
	}
	if in.From != "" {
		t, ok := parseDateTimeRFC3339(in.From)
		if !ok {
			return []model.AuditLog{}, NewHTTPError(http.StatusBadRequest, "invalid from")
		}
		f.CreatedFrom = t
	}
	if in.To != "" {
		t, ok := parseDateTimeRFC3339(in.To)
		if !ok {
			return []model.AuditLog{}, NewHTTPError(http.StatusBadRequest, "invalid to")
		}
		f.CreatedTo = t
	}

	logs, err := u.auditRepo.List(ctx, f)
	if err != nil {
		return []model.AuditLog{}, dbError()
	}
	if logs == nil {
		logs = []model.AuditLog{}
	}
	return logs, nil
}

func parseDateTimeRFC3339(s string) (*time.Time, bool) {
	if strings.TrimSpace(s) == "" {
		return nil, false
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, false
	}
	return &t, true
}
