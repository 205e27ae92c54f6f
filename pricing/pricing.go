package pricing

import (
	"strings"

	"github.com/Hasan-Al-Banna-Nahid/pi-commerce-sub000/models"
)

// Default tariff: a fixed rate inside the capital and a fixed rate for every
// other region. Shipping is tiered, not distance-based.
const (
	DefaultCapitalCity     = "Dhaka"
	DefaultCapitalShipping = 60
	DefaultRegionShipping  = 120
	DefaultTaxRate         = 0.05
)

// Engine computes checkout charges. It is pure: quotes are recomputed from
// the cart and destination on every call, never cached.
type Engine struct {
	capitalCity     string
	capitalShipping float64
	regionShipping  float64
	taxRate         float64
}

// Option configures an Engine.
type Option func(*Engine)

// WithShippingTiers overrides the capital city and the two shipping rates.
func WithShippingTiers(capitalCity string, capital, region float64) Option {
	return func(e *Engine) {
		e.capitalCity = capitalCity
		e.capitalShipping = capital
		e.regionShipping = region
	}
}

// WithTaxRate overrides the tax rate.
func WithTaxRate(rate float64) Option {
	return func(e *Engine) { e.taxRate = rate }
}

func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		capitalCity:     DefaultCapitalCity,
		capitalShipping: DefaultCapitalShipping,
		regionShipping:  DefaultRegionShipping,
		taxRate:         DefaultTaxRate,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Quote prices the cart for a destination city. Discount is an absolute
// amount subtracted from the subtotal before tax, clamped to [0, subtotal];
// tax applies to the discounted amount. Full float precision throughout,
// rounding is a display concern.
func (e *Engine) Quote(lines []models.CartLine, destinationCity string, discount float64) models.Quote {
	subtotal := 0.0
	for _, line := range lines {
		subtotal += line.UnitPrice * float64(line.Quantity)
	}

	if discount < 0 {
		discount = 0
	}
	if discount > subtotal {
		discount = subtotal
	}

	shipping := e.regionShipping
	if strings.EqualFold(strings.TrimSpace(destinationCity), e.capitalCity) {
		shipping = e.capitalShipping
	}

	taxable := subtotal - discount
	tax := taxable * e.taxRate

	return models.Quote{
		Subtotal:     subtotal,
		Discount:     discount,
		ShippingCost: shipping,
		Tax:          tax,
		Total:        taxable + shipping + tax,
	}
}
