package models

// PaymentMethod selects how an order is settled.
type PaymentMethod string

const (
	PaymentMethodCard PaymentMethod = "card"
	PaymentMethodCOD  PaymentMethod = "cod"
)

// Address holds the fields required for shipping or billing.
type Address struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Street     string `json:"street"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
}

// CheckoutForm is the address data collected before submission. When
// SeparateBilling is set the billing address is validated independently;
// otherwise the shipping address doubles as billing.
type CheckoutForm struct {
	Shipping        Address `json:"shipping"`
	SeparateBilling bool    `json:"separate_billing"`
	Billing         Address `json:"billing"`

	// CardToken is the tokenized payment method for card submissions.
	CardToken string `json:"card_token,omitempty"`
}

// BillingAddress returns the address the charge should be billed to.
func (f *CheckoutForm) BillingAddress() Address {
	if f.SeparateBilling {
		return f.Billing
	}
	return f.Shipping
}

// Quote is the priced breakdown of a cart for a destination.
type Quote struct {
	Subtotal     float64 `json:"subtotal"`
	Discount     float64 `json:"discount"`
	ShippingCost float64 `json:"shipping_cost"`
	Tax          float64 `json:"tax"`
	Total        float64 `json:"total"`
}
