package model

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ProductStatus string

const (
	ProductStatusActive   ProductStatus = "active"
	ProductStatusInactive ProductStatus = "inactive"
)

type Product struct {
	ID            string          `gorm:"type:uuid;primaryKey" json:"id"`
	Name          string          `gorm:"type:varchar(255);not null;index" json:"name"`
	Ingredients   string          `gorm:"type:text" json:"-"`
	Weight        string          `gorm:"type:varchar(64)" json:"weight"`
	Category      string          `gorm:"type:varchar(100);index" json:"category"`
	Description   string          `gorm:"type:text" json:"description"`
	Status        ProductStatus   `gorm:"type:varchar(20);not null;default:'active';index" json:"status"`
	Size          string          `gorm:"type:varchar(64)" json:"size"`
	Image         string          `gorm:"type:text" json:"image"`
	Wholesale     decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"wholesale"`
	Retail        decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"retail"`
	StockQuantity int64           `gorm:"not null;default:0" json:"stock_quantity"`
	QuantityInBox int64           `gorm:"not null;default:1" json:"quantity_in_box"`
	InBoxPrice    decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"in_box_price"`
	Favorite      bool            `gorm:"not null;default:false" json:"favorite"`
	Rating        decimal.Decimal `gorm:"type:numeric(3,1);not null;default:0" json:"rating"`
	Reviews       int64           `gorm:"not null;default:0" json:"reviews"`
	CreatedAt     time.Time       `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"not null;autoUpdateTime" json:"updated_at"`
	DeletedAt     gorm.DeletedAt  `gorm:"index" json:"-"`
}

// 箱単位の卸値
func (p Product) BoxPrice() decimal.Decimal {
	return p.Wholesale.Mul(decimal.NewFromInt(p.QuantityInBox)).Round(2)
}

// カンマ区切りで保存している原材料を配列で返す
func (p Product) IngredientList() []string {
	if strings.TrimSpace(p.Ingredients) == "" {
		return []string{}
	}
	parts := strings.Split(p.Ingredients, ",")
	out := make([]string, 0, len(parts))
	for _, s := range parts {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func JoinIngredients(list []string) string {
	cleaned := make([]string, 0, len(list))
	for _, s := range list {
		if s = strings.TrimSpace(s); s != "" {
			cleaned = append(cleaned, s)
		}
	}
	return strings.Join(cleaned, ",")
}

// JSONでは原材料を配列で出す
func (p Product) MarshalJSON() ([]byte, error) {
	type alias Product
	return json.Marshal(struct {
		alias
		Ingredients []string `json:"ingredients"`
	}{
		alias:       alias(p),
		Ingredients: p.IngredientList(),
	})
}
