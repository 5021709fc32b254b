package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusReview             OrderStatus = "review"
	OrderStatusPackaging          OrderStatus = "packaging"
	OrderStatusDeliveryInProgress OrderStatus = "delivery in progress"
	OrderStatusDelivered          OrderStatus = "delivered"
	OrderStatusCancelled          OrderStatus = "cancelled"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusReview, OrderStatusPackaging, OrderStatusDeliveryInProgress, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentStatusUnpaid   PaymentStatus = "unpaid"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentStatusUnpaid, PaymentStatusPaid, PaymentStatusRefunded:
		return true
	}
	return false
}

// 注文（チェックアウト）
type Checkout struct {
	ID               string          `gorm:"type:uuid;primaryKey" json:"id"`
	UserID           string          `gorm:"type:uuid;not null;index" json:"user_id"`
	User             *User           `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Carts            []Cart          `gorm:"foreignKey:CheckoutID" json:"carts"`
	Amount           decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"amount"`
	Name             string          `gorm:"type:varchar(255);not null;index" json:"name"`
	Location         string          `gorm:"type:varchar(255);not null" json:"location"`
	ExtraInfo        string          `gorm:"type:text" json:"extra_info"`
	OrderStatus      OrderStatus     `gorm:"type:varchar(32);not null;index" json:"order_status"`
	PaymentStatus    PaymentStatus   `gorm:"type:varchar(20);not null;index" json:"payment_status"`
	PaymentReference string          `gorm:"type:varchar(100);not null;uniqueIndex" json:"payment_reference"`
	CreatedAt        time.Time       `gorm:"not null;index" json:"created_at"`
	UpdatedAt        time.Time       `gorm:"not null" json:"updated_at"`
}

// 決済参照は「ユーザーID=注文ID」
func PaymentReference(userID string, checkoutID string) string {
	return userID + "=" + checkoutID
}
