package notify_test

import (
	"testing"
	"time"

	"maltiti/internal/domain/model"
	"maltiti/internal/notify"
	"maltiti/internal/repository/mocks"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

func newComposer(admin notify.Admin) *notify.Composer {
	return notify.NewComposer(admin, "https://shop.test/", &mocks.SeqIDs{Prefix: "n-"}, mocks.FixedClock{T: now})
}

var (
	admin = notify.Admin{Name: "Maltiti", Phone: "+233200000000", Email: "admin@maltiti.test"}
	ama   = model.User{ID: "user-1", Name: "Ama", Email: "ama@example.com", PhoneNumber: "+233201111111"}
)

func TestComposer_OrderPlaced_AdminAndCustomer(t *testing.T) {
	c := newComposer(admin)
	order := model.Checkout{ID: "order-1", Amount: decimal.RequireFromString("60"), Location: "Tamale"}

	items := c.OrderPlaced(ama, order)
	require.Len(t, items, 4)

	assert.Equal(t, model.ChannelSMS, items[0].Channel)
	assert.Equal(t, "+233200000000", items[0].Recipient)
	assert.Equal(t, model.ChannelEmail, items[1].Channel)
	assert.Equal(t, "https://shop.test/admin/orders", items[1].ActionURL)
	assert.Equal(t, "+233201111111", items[2].Recipient)
	assert.Equal(t, "ama@example.com", items[3].Recipient)
	assert.Contains(t, items[3].Body, "GHS 60.00")

	for _, n := range items {
		assert.Equal(t, model.NotificationPending, n.Status)
		assert.Equal(t, now, n.NextAttemptAt)
		assert.NotEmpty(t, n.ID)
	}
}

func TestComposer_SkipsMissingRecipients(t *testing.T) {
	c := newComposer(notify.Admin{})
	noPhone := ama
	noPhone.PhoneNumber = ""

	items := c.OrderPlaced(noPhone, model.Checkout{ID: "order-1"})
	require.Len(t, items, 1)
	assert.Equal(t, model.ChannelEmail, items[0].Channel)
}

func TestComposer_OrderCancelled_MentionsRefund(t *testing.T) {
	c := newComposer(admin)

	refunded := c.OrderCancelled(ama, model.Checkout{ID: "order-1", PaymentStatus: model.PaymentStatusRefunded})
	require.Len(t, refunded, 4)
	assert.Contains(t, refunded[3].Body, "refund")

	unpaid := c.OrderCancelled(ama, model.Checkout{ID: "order-1", PaymentStatus: model.PaymentStatusUnpaid})
	assert.NotContains(t, unpaid[3].Body, "refund")
}

func TestComposer_OrderStatusChanged(t *testing.T) {
	c := newComposer(admin)

	items := c.OrderStatusChanged(ama, model.Checkout{ID: "order-1", OrderStatus: model.OrderStatusDeliveryInProgress})
	require.Len(t, items, 2)
	assert.Contains(t, items[0].Body, "delivery in progress")
}

func TestComposer_EmailVerification(t *testing.T) {
	c := newComposer(admin)

	items := c.EmailVerification(ama, "https://api.test/auth/verify/user-1/tok")
	require.Len(t, items, 1)
	assert.Equal(t, "https://api.test/auth/verify/user-1/tok", items[0].ActionURL)
	assert.Equal(t, "Verify your email", items[0].Subject)
}
