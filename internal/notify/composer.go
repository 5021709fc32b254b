package notify

import (
	"fmt"
	"strings"
	"time"

	"maltiti/internal/domain/model"
)

type IDGenerator interface {
	NewID() string
}

type Clock interface {
	Now() time.Time
}

// 注文通知を受け取る管理者の連絡先
type Admin struct {
	Name  string
	Phone string
	Email string
}

// Email is what an EmailSender delivers.
type Email struct {
	To          string
	Name        string
	Subject     string
	Body        string
	ActionURL   string
	LinkLabel   string
	ActionLabel string
}

// 業務イベントからoutboxに積む通知を組み立てる
type Composer struct {
	admin       Admin
	frontendURL string
	idGen       IDGenerator
	clock       Clock
}

func NewComposer(admin Admin, frontendURL string, idGen IDGenerator, clock Clock) *Composer {
	return &Composer{
		admin:       admin,
		frontendURL: strings.TrimRight(frontendURL, "/"),
		idGen:       idGen,
		clock:       clock,
	}
}

func (c *Composer) sms(to string, message string) []model.Notification {
	if strings.TrimSpace(to) == "" {
		return nil
	}
	now := c.clock.Now()
	return []model.Notification{{
		ID:            c.idGen.NewID(),
		Channel:       model.ChannelSMS,
		Recipient:     to,
		Body:          message,
		Status:        model.NotificationPending,
		NextAttemptAt: now,
		CreatedAt:     now,
		UpdatedAt:     now,
	}}
}

func (c *Composer) email(e Email) []model.Notification {
	if strings.TrimSpace(e.To) == "" {
		return nil
	}
	now := c.clock.Now()
	return []model.Notification{{
		ID:            c.idGen.NewID(),
		Channel:       model.ChannelEmail,
		Recipient:     e.To,
		RecipientName: e.Name,
		Subject:       e.Subject,
		Body:          e.Body,
		ActionURL:     e.ActionURL,
		LinkLabel:     e.LinkLabel,
		ActionLabel:   e.ActionLabel,
		Status:        model.NotificationPending,
		NextAttemptAt: now,
		CreatedAt:     now,
		UpdatedAt:     now,
	}}
}

func (c *Composer) ordersURL() string {
	return c.frontendURL + "/orders"
}

func (c *Composer) adminOrdersURL() string {
	return c.frontendURL + "/admin/orders"
}

// 顧客にSMSとメールの両方を送る
func (c *Composer) toCustomer(user model.User, subject string, body string) []model.Notification {
	out := c.sms(user.PhoneNumber, body)
	return append(out, c.email(Email{
		To:          user.Email,
		Name:        user.Name,
		Subject:     subject,
		Body:        body,
		ActionURL:   c.ordersURL(),
		LinkLabel:   c.ordersURL(),
		ActionLabel: "View your orders",
	})...)
}

func (c *Composer) toAdmin(subject string, body string) []model.Notification {
	out := c.sms(c.admin.Phone, body)
	return append(out, c.email(Email{
		To:          c.admin.Email,
		Name:        c.admin.Name,
		Subject:     subject,
		Body:        body,
		ActionURL:   c.adminOrdersURL(),
		LinkLabel:   c.adminOrdersURL(),
		ActionLabel: "Open orders",
	})...)
}

func (c *Composer) OrderPlaced(user model.User, order model.Checkout) []model.Notification {
	out := c.toAdmin(
		"New order placed",
		fmt.Sprintf("%s has placed an order (%s) of GHS %s for delivery to %s.", user.Name, order.ID, order.Amount.StringFixed(2), order.Location),
	)
	return append(out, c.toCustomer(user,
		"Order placed",
		fmt.Sprintf("Hi %s, your order %s of GHS %s has been placed. Complete your payment to start processing.", user.Name, order.ID, order.Amount.StringFixed(2)),
	)...)
}

func (c *Composer) PaymentReceived(user model.User, order model.Checkout) []model.Notification {
	return c.toCustomer(user,
		"Payment received",
		fmt.Sprintf("Hi %s, we have received your payment of GHS %s for order %s. We will notify you as it progresses.", user.Name, order.Amount.StringFixed(2), order.ID),
	)
}

func (c *Composer) OrderStatusChanged(user model.User, order model.Checkout) []model.Notification {
	return c.toCustomer(user,
		"Order status updated",
		fmt.Sprintf("Hi %s, your order %s is now %s.", user.Name, order.ID, order.OrderStatus),
	)
}

func (c *Composer) PaymentStatusChanged(user model.User, order model.Checkout) []model.Notification {
	return c.toCustomer(user,
		"Payment status updated",
		fmt.Sprintf("Hi %s, the payment for your order %s is now %s.", user.Name, order.ID, order.PaymentStatus),
	)
}

// 管理者へ「顧客がキャンセルした」、顧客へ「キャンセル完了」
func (c *Composer) OrderCancelled(user model.User, order model.Checkout) []model.Notification {
	out := c.toAdmin(
		"Order cancelled by customer",
		fmt.Sprintf("%s has cancelled order %s (payment: %s).", user.Name, order.ID, order.PaymentStatus),
	)
	body := fmt.Sprintf("Hi %s, your order %s has been successfully cancelled.", user.Name, order.ID)
	if order.PaymentStatus == model.PaymentStatusRefunded {
		body += " Your refund will be processed in 3 working days."
	}
	return append(out, c.toCustomer(user, "Order cancelled", body)...)
}

func (c *Composer) EmailVerification(user model.User, link string) []model.Notification {
	return c.email(Email{
		To:          user.Email,
		Name:        user.Name,
		Subject:     "Verify your email",
		Body:        "Thank you for signing up. Please verify your email address to activate your account.",
		ActionURL:   link,
		LinkLabel:   link,
		ActionLabel: "Verify email",
	})
}

func (c *Composer) PasswordReset(user model.User, link string) []model.Notification {
	return c.email(Email{
		To:          user.Email,
		Name:        user.Name,
		Subject:     "Reset your password",
		Body:        "We received a request to reset your password. The link expires in 10 minutes.",
		ActionURL:   link,
		LinkLabel:   link,
		ActionLabel: "Reset password",
	})
}
