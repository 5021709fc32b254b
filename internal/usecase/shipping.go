package usecase

import (
	"strings"

	"maltiti/internal/config"
	"maltiti/internal/domain/model"

	"github.com/shopspring/decimal"
)

// 配送地域（1箱あたりの料金が違う）
type ShippingZone string

const (
	ShippingZoneLocal ShippingZone = "local"
	ShippingZoneOther ShippingZone = "other"
)

func ParseShippingZone(s string) (ShippingZone, bool) {
	switch ShippingZone(strings.ToLower(strings.TrimSpace(s))) {
	case ShippingZoneLocal:
		return ShippingZoneLocal, true
	case ShippingZoneOther:
		return ShippingZoneOther, true
	}
	return "", false
}

var oneBox = decimal.NewFromInt(1)

// 配送料 = 箱数 × 地域の単価。
// 箱数は明細ごとに丸めず quantity/入数 を合計し、1箱未満は1箱にする（空カートでも1箱分）。
func EstimateShipping(lines []model.Cart, zone ShippingZone, rates config.ShippingRates) decimal.Decimal {
	boxes := decimal.Zero
	for _, l := range lines {
		perBox := l.Product.QuantityInBox
		if perBox <= 0 {
			perBox = 1
		}
		boxes = boxes.Add(decimal.NewFromInt(l.Quantity).Div(decimal.NewFromInt(perBox)))
	}
	if boxes.LessThan(oneBox) {
		boxes = oneBox
	}

	rate := rates.Other
	if zone == ShippingZoneLocal {
		rate = rates.Local
	}
	return boxes.Mul(rate)
}

// 明細の小計（小売価格 × 数量）
func CartSubtotal(lines []model.Cart) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Product.Retail.Mul(decimal.NewFromInt(l.Quantity)))
	}
	return total
}
