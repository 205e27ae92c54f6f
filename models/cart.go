package models

// CartLine is one product entry in the shopping cart, unique by ProductID.
// The persisted cart is the bare line list; the item count is always derived
// from the lines, never stored.
type CartLine struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	UnitPrice float64 `json:"unit_price"`
	Quantity  int     `json:"quantity"`
	ImageRef  string  `json:"image_ref,omitempty"`
}
