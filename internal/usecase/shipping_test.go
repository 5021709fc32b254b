package usecase

import (
	"testing"

	"maltiti/internal/config"
	"maltiti/internal/domain/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

var testRates = config.ShippingRates{
	Local: decimal.NewFromInt(20),
	Other: decimal.NewFromInt(30),
}

func line(qty int64, perBox int64, retail string) model.Cart {
	return model.Cart{
		Quantity: qty,
		Product:  model.Product{QuantityInBox: perBox, Retail: decimal.RequireFromString(retail)},
	}
}

func TestEstimateShipping_EmptyCartChargesOneBox(t *testing.T) {
	got := EstimateShipping(nil, ShippingZoneLocal, testRates)
	assert.True(t, got.Equal(decimal.NewFromInt(20)), got.String())
}

func TestEstimateShipping_BelowOneBoxIsClamped(t *testing.T) {
	lines := []model.Cart{line(1, 12, "5"), line(2, 24, "5")}
	got := EstimateShipping(lines, ShippingZoneOther, testRates)
	assert.True(t, got.Equal(decimal.NewFromInt(30)), got.String())
}

func TestEstimateShipping_FractionalBoxesAreNotRoundedPerLine(t *testing.T) {
	// 15/10 + 10/10 = 2.5箱
	lines := []model.Cart{line(15, 10, "5"), line(10, 10, "5")}
	got := EstimateShipping(lines, ShippingZoneOther, testRates)
	assert.True(t, got.Equal(decimal.NewFromInt(75)), got.String())
}

func TestEstimateShipping_ZeroPerBoxCountsEachUnit(t *testing.T) {
	got := EstimateShipping([]model.Cart{line(3, 0, "1")}, ShippingZoneLocal, testRates)
	assert.True(t, got.Equal(decimal.NewFromInt(60)), got.String())
}

func TestParseShippingZone(t *testing.T) {
	z, ok := ParseShippingZone(" Local ")
	assert.True(t, ok)
	assert.Equal(t, ShippingZoneLocal, z)

	_, ok = ParseShippingZone("tamale")
	assert.False(t, ok)
}

func TestCartSubtotal(t *testing.T) {
	lines := []model.Cart{line(2, 10, "12.50"), line(1, 10, "3")}
	assert.True(t, CartSubtotal(lines).Equal(decimal.RequireFromString("28")))
}
