package model

import "time"

// カート明細。CheckoutIDがnilの間は編集可能、注文に取り込まれたら固定。
type Cart struct {
	ID         string    `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     string    `gorm:"type:uuid;not null;index" json:"user_id"`
	ProductID  string    `gorm:"type:uuid;not null;index" json:"product_id"`
	Product    Product   `gorm:"foreignKey:ProductID" json:"product"`
	Quantity   int64     `gorm:"not null" json:"quantity"`
	CheckoutID *string   `gorm:"type:uuid;index" json:"checkout_id,omitempty"`
	CreatedAt  time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (c Cart) IsOpen() bool {
	return c.CheckoutID == nil
}
