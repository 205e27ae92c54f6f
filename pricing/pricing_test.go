package pricing_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Hasan-Al-Banna-Nahid/pi-commerce-sub000/models"
	"github.com/Hasan-Al-Banna-Nahid/pi-commerce-sub000/pricing"
)

func linesWithSubtotal() []models.CartLine {
	// 2×300 + 4×100 = 1000
	return []models.CartLine{
		{ProductID: "p1", Name: "Kettle", UnitPrice: 300, Quantity: 2},
		{ProductID: "p2", Name: "Mug", UnitPrice: 100, Quantity: 4},
	}
}

func TestQuote_CapitalDestination(t *testing.T) {
	engine := pricing.NewEngine()

	quote := engine.Quote(linesWithSubtotal(), "Dhaka", 0)

	assert.Equal(t, 1000.0, quote.Subtotal)
	assert.Equal(t, float64(pricing.DefaultCapitalShipping), quote.ShippingCost)
	assert.Equal(t, 50.0, quote.Tax)
	assert.Equal(t, 1000.0+pricing.DefaultCapitalShipping+50.0, quote.Total)
}

func TestQuote_RegionalDestination(t *testing.T) {
	engine := pricing.NewEngine()

	quote := engine.Quote(linesWithSubtotal(), "Chattogram", 0)

	assert.Equal(t, float64(pricing.DefaultRegionShipping), quote.ShippingCost)
	assert.Equal(t, 1000.0+pricing.DefaultRegionShipping+50.0, quote.Total)
}

func TestQuote_CapitalMatchIsCaseInsensitive(t *testing.T) {
	engine := pricing.NewEngine()

	for _, city := range []string{"dhaka", "DHAKA", "  Dhaka  "} {
		quote := engine.Quote(linesWithSubtotal(), city, 0)
		assert.Equal(t, float64(pricing.DefaultCapitalShipping), quote.ShippingCost, "city %q", city)
	}
}

func TestQuote_DiscountIsAbsoluteAndPreTax(t *testing.T) {
	engine := pricing.NewEngine()

	quote := engine.Quote(linesWithSubtotal(), "Dhaka", 200)

	// Tax applies to the discounted amount
	assert.Equal(t, 200.0, quote.Discount)
	assert.Equal(t, 800.0*0.05, quote.Tax)
	assert.Equal(t, 800.0+pricing.DefaultCapitalShipping+800.0*0.05, quote.Total)
}

func TestQuote_DiscountClampedToSubtotal(t *testing.T) {
	engine := pricing.NewEngine()

	quote := engine.Quote(linesWithSubtotal(), "Dhaka", 5000)

	assert.Equal(t, 1000.0, quote.Discount)
	assert.Equal(t, 0.0, quote.Tax)
	assert.Equal(t, float64(pricing.DefaultCapitalShipping), quote.Total)
}

func TestQuote_EmptyCart(t *testing.T) {
	engine := pricing.NewEngine()

	quote := engine.Quote(nil, "Dhaka", 0)

	assert.Equal(t, 0.0, quote.Subtotal)
	assert.Equal(t, 0.0, quote.Tax)
	assert.Equal(t, float64(pricing.DefaultCapitalShipping), quote.ShippingCost)
}

func TestQuote_CustomTiersAndRate(t *testing.T) {
	engine := pricing.NewEngine(
		pricing.WithShippingTiers("Oslo", 49, 99),
		pricing.WithTaxRate(0.25),
	)

	quote := engine.Quote(linesWithSubtotal(), "Oslo", 0)
	assert.Equal(t, 49.0, quote.ShippingCost)
	assert.Equal(t, 250.0, quote.Tax)

	quote = engine.Quote(linesWithSubtotal(), "Bergen", 0)
	assert.Equal(t, 99.0, quote.ShippingCost)
}
