package usecase

import (
	"context"
	"net/http"
	"strings"

	"maltiti/internal/config"
	"maltiti/internal/domain/model"
	"maltiti/internal/notify"
	"maltiti/internal/payment"
	repo "maltiti/internal/repository"
	"maltiti/internal/validator"

	"github.com/shopspring/decimal"
)

const cancelledMessage = "Order has been successfully cancelled. If you have paid, you will receive refund in 3 working days"

// 注文（チェックアウト）の状態遷移を扱う
type CheckoutUsecase struct {
	tx          repo.TransactionManager
	carts       repo.CartRepository
	checkouts   repo.CheckoutRepository
	gateway     payment.Gateway
	notices     *notify.Composer
	rates       config.ShippingRates
	frontendURL string
	idGen       IDGenerator
	clock       Clock
}

func NewCheckoutUsecase(
	tx repo.TransactionManager,
	carts repo.CartRepository,
	checkouts repo.CheckoutRepository,
	gateway payment.Gateway,
	notices *notify.Composer,
	rates config.ShippingRates,
	frontendURL string,
	idGen IDGenerator,
	clock Clock,
) *CheckoutUsecase {
	return &CheckoutUsecase{
		tx:          tx,
		carts:       carts,
		checkouts:   checkouts,
		gateway:     gateway,
		notices:     notices,
		rates:       rates,
		frontendURL: strings.TrimRight(frontendURL, "/"),
		idGen:       idGen,
		clock:       clock,
	}
}

type InitializeCheckoutInput struct {
	Name      string
	Location  string
	ExtraInfo string
	Zone      string
}

type InitializeCheckoutOutput struct {
	AuthorizationURL string         `json:"authorization_url"`
	AccessCode       string         `json:"access_code"`
	Reference        string         `json:"reference"`
	Order            model.Checkout `json:"order"`
}

type CancelCheckoutOutput struct {
	Message string         `json:"message"`
	Order   model.Checkout `json:"order"`
}

// 未注文カートの配送料
func (u *CheckoutUsecase) Shipping(ctx context.Context, userID string, zone string) (decimal.Decimal, error) {
	if userID == "" {
		return decimal.Zero, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	z, ok := ParseShippingZone(zone)
	if !ok {
		return decimal.Zero, invalid(validator.Zone(zone))
	}

	lines, err := u.carts.ListOpenByUserID(ctx, userID)
	if err != nil {
		return decimal.Zero, dbError()
	}
	return EstimateShipping(lines, z, u.rates), nil
}

// 未注文の明細をまとめて注文にし、決済URLを発行する。
// ゲートウェイが失敗したらTxごと戻すので、注文も明細の紐づけも残らない。
func (u *CheckoutUsecase) Initialize(ctx context.Context, userID string, in InitializeCheckoutInput) (InitializeCheckoutOutput, error) {
	if userID == "" {
		return InitializeCheckoutOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if err := (validator.CheckoutInput{
		Name:      in.Name,
		Location:  in.Location,
		ExtraInfo: in.ExtraInfo,
		Zone:      in.Zone,
	}).Validate(); err != nil {
		return InitializeCheckoutOutput{}, invalid(err)
	}
	zone, _ := ParseShippingZone(in.Zone)

	var out InitializeCheckoutOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		user, err := r.Users().FindByID(ctx, userID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "user not found")
		}
		if err != nil {
			return dbError()
		}

		lines, err := r.Carts().ListOpenByUserID(ctx, userID)
		if err != nil {
			return dbError()
		}
		if len(lines) == 0 {
			return NewHTTPError(http.StatusBadRequest, "cart is empty")
		}

		amount := CartSubtotal(lines).Add(EstimateShipping(lines, zone, u.rates)).Round(2)

		now := u.clock.Now()
		order := model.Checkout{
			ID:            u.idGen.NewID(),
			UserID:        userID,
			Amount:        amount,
			Name:          strings.TrimSpace(in.Name),
			Location:      strings.TrimSpace(in.Location),
			ExtraInfo:     strings.TrimSpace(in.ExtraInfo),
			OrderStatus:   model.OrderStatusReview,
			PaymentStatus: model.PaymentStatusUnpaid,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		order.PaymentReference = model.PaymentReference(userID, order.ID)

		if err := r.Checkouts().Create(ctx, &order); err != nil {
			return dbError()
		}
		if _, err := r.Carts().AttachOpenToCheckout(ctx, userID, order.ID); err != nil {
			return dbError()
		}

		session, err := u.gateway.Initialize(ctx, payment.InitializeRequest{
			Amount:      amount,
			Email:       user.Email,
			Reference:   order.PaymentReference,
			CallbackURL: u.frontendURL + "/confirm-payment/" + userID + "/" + order.ID,
			Metadata: map[string]string{
				"user_id":     userID,
				"checkout_id": order.ID,
				"name":        order.Name,
			},
		})
		if err != nil {
			return upstreamError(err)
		}

		if err := r.Notifications().Enqueue(ctx, u.notices.OrderPlaced(*user, order)); err != nil {
			return dbError()
		}

		for i := range lines {
			lines[i].CheckoutID = &order.ID
		}
		order.Carts = lines

		out = InitializeCheckoutOutput{
			AuthorizationURL: session.AuthorizationURL,
			AccessCode:       session.AccessCode,
			Reference:        order.PaymentReference,
			Order:            order,
		}
		return nil
	})
	if err != nil {
		return InitializeCheckoutOutput{}, err
	}
	return out, nil
}

// ゲートウェイの取引結果がsuccessで金額が一致したときだけpaidにする
func (u *CheckoutUsecase) ConfirmPayment(ctx context.Context, userID string, checkoutID string) (model.Checkout, error) {
	if userID == "" {
		return model.Checkout{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if checkoutID == "" {
		return model.Checkout{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var out model.Checkout

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		order, err := lockOwnedCheckout(ctx, r, userID, checkoutID)
		if err != nil {
			return err
		}

		switch {
		case order.PaymentStatus == model.PaymentStatusPaid:
			// 二重確認は何もしない
			out, err = r.Checkouts().FindByID(ctx, order.ID)
			if err != nil {
				return dbError()
			}
			return nil
		case order.PaymentStatus == model.PaymentStatusRefunded:
			return NewHTTPError(http.StatusConflict, "payment already refunded")
		case order.OrderStatus == model.OrderStatusCancelled:
			return NewHTTPError(http.StatusConflict, "order already cancelled")
		}

		v, err := u.gateway.Verify(ctx, order.PaymentReference)
		if err != nil {
			return upstreamError(err)
		}
		if v.Status != payment.StatusSuccess {
			return NewHTTPError(http.StatusConflict, "payment not completed: "+string(v.Status))
		}
		if !v.Amount.IsZero() && !v.Amount.Equal(order.Amount) {
			return NewHTTPError(http.StatusConflict, "paid amount does not match order amount")
		}

		order.PaymentStatus = model.PaymentStatusPaid
		order.UpdatedAt = u.clock.Now()
		if err := r.Checkouts().UpdateStatuses(ctx, order); err != nil {
			return dbError()
		}

		if err := enqueueForOwner(ctx, r, order, u.notices.PaymentReceived); err != nil {
			return err
		}

		out, err = r.Checkouts().FindByID(ctx, order.ID)
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

// ガードを全部見てから状態を変える。支払済みなら返金してからrefundedにする
func (u *CheckoutUsecase) Cancel(ctx context.Context, userID string, checkoutID string) (CancelCheckoutOutput, error) {
	if userID == "" {
		return CancelCheckoutOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if checkoutID == "" {
		return CancelCheckoutOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var out CancelCheckoutOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		order, err := lockOwnedCheckout(ctx, r, userID, checkoutID)
		if err != nil {
			return err
		}

		switch order.OrderStatus {
		case model.OrderStatusCancelled:
			return NewHTTPError(http.StatusConflict, "order already cancelled")
		case model.OrderStatusDelivered, model.OrderStatusDeliveryInProgress:
			return NewHTTPError(http.StatusConflict, "order already in progress or delivered")
		}

		next := order
		next.OrderStatus = model.OrderStatusCancelled
		if order.PaymentStatus == model.PaymentStatusPaid {
			if _, err := u.gateway.Refund(ctx, order.PaymentReference); err != nil {
				return upstreamError(err)
			}
			next.PaymentStatus = model.PaymentStatusRefunded
		}
		next.UpdatedAt = u.clock.Now()

		if err := r.Checkouts().UpdateStatuses(ctx, next); err != nil {
			return dbError()
		}

		if err := enqueueForOwner(ctx, r, next, u.notices.OrderCancelled); err != nil {
			return err
		}

		saved, err := r.Checkouts().FindByID(ctx, next.ID)
		if err != nil {
			return dbError()
		}
		out = CancelCheckoutOutput{Message: cancelledMessage, Order: saved}
		return nil
	})
	if err != nil {
		return CancelCheckoutOutput{}, err
	}
	return out, nil
}

func (u *CheckoutUsecase) ListMine(ctx context.Context, userID string) ([]model.Checkout, error) {
	if userID == "" {
		return []model.Checkout{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	items, err := u.checkouts.ListByUserID(ctx, userID)
	if err != nil {
		return []model.Checkout{}, dbError()
	}
	return items, nil
}

func (u *CheckoutUsecase) Get(ctx context.Context, userID string, checkoutID string) (model.Checkout, error) {
	if userID == "" {
		return model.Checkout{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	c, err := u.checkouts.FindByID(ctx, checkoutID)
	if err == repo.ErrNotFound {
		return model.Checkout{}, NewHTTPError(http.StatusNotFound, "order not found")
	}
	if err != nil {
		return model.Checkout{}, dbError()
	}
	//他人の注文は「存在しない扱い」
	if c.UserID != userID {
		return model.Checkout{}, NewHTTPError(http.StatusNotFound, "order not found")
	}
	return c, nil
}

// 行ロックして持ち主を確認する
func lockOwnedCheckout(ctx context.Context, r repo.TxRepos, userID string, checkoutID string) (model.Checkout, error) {
	order, err := r.Checkouts().FindByIDForUpdate(ctx, checkoutID)
	if err == repo.ErrNotFound {
		return model.Checkout{}, NewHTTPError(http.StatusNotFound, "order not found")
	}
	if err != nil {
		return model.Checkout{}, dbError()
	}
	if order.UserID != userID {
		return model.Checkout{}, NewHTTPError(http.StatusNotFound, "order not found")
	}
	return order, nil
}

// 注文の持ち主を読み込んで通知をoutboxに積む
func enqueueForOwner(ctx context.Context, r repo.TxRepos, order model.Checkout, compose func(model.User, model.Checkout) []model.Notification) error {
	user, err := r.Users().FindByID(ctx, order.UserID)
	if err == repo.ErrNotFound {
		return NewHTTPError(http.StatusNotFound, "user not found")
	}
	if err != nil {
		return dbError()
	}
	if err := r.Notifications().Enqueue(ctx, compose(*user, order)); err != nil {
		return dbError()
	}
	return nil
}
