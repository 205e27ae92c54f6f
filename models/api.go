package models

import "time"

// Typed response contracts for the remote Pi-Commerce API. The backend wraps
// single resources as {"<resource>": {...}} and collections as
// {"<resources>": [...], "pagination": {...}}.

// Pagination is the list-envelope page descriptor.
type Pagination struct {
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	TotalPages int `json:"total_pages"`
	TotalItems int `json:"total_items"`
}

// Product is a catalog entry.
type Product struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Stock       int     `json:"stock"`
	ImageRef    string  `json:"image_ref"`
	Category    string  `json:"category"`
}

// OrderItem is one line of a placed order.
type OrderItem struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	UnitPrice float64 `json:"unit_price"`
	Quantity  int     `json:"quantity"`
}

// Order is a placed order as returned by the orders API.
type Order struct {
	ID              string      `json:"id"`
	Items           []OrderItem `json:"items"`
	ShippingAddress Address     `json:"shipping_address"`
	BillingAddress  Address     `json:"billing_address"`
	PaymentMethod   string      `json:"payment_method"`
	ShippingCost    float64     `json:"shipping_cost"`
	Tax             float64     `json:"tax"`
	Total           float64     `json:"total"`
	Status          string      `json:"status"`
	CreatedAt       time.Time   `json:"created_at"`
}

// CreateOrderRequest is the payload for cash-on-delivery order creation.
type CreateOrderRequest struct {
	Items           []OrderItem `json:"items"`
	ShippingAddress Address     `json:"shipping_address"`
	BillingAddress  Address     `json:"billing_address"`
	PaymentMethod   string      `json:"payment_method"`
	ShippingCost    float64     `json:"shipping_cost"`
	Tax             float64     `json:"tax"`
	Total           float64     `json:"total"`
	IdempotencyKey  string      `json:"idempotency_key"`
}

// PaymentIntentRequest asks the backend to create an order intent and a
// matching payment handshake token scoped to the cart and destination.
type PaymentIntentRequest struct {
	Items           []OrderItem `json:"items"`
	ShippingAddress Address     `json:"shipping_address"`
	BillingAddress  Address     `json:"billing_address"`
	ShippingCost    float64     `json:"shipping_cost"`
	Tax             float64     `json:"tax"`
	Total           float64     `json:"total"`
	IdempotencyKey  string      `json:"idempotency_key"`
}

// PaymentIntent is the handshake issued by the payment collaborator: an order
// id and the client secret authorizing a single charge attempt for it.
type PaymentIntent struct {
	OrderID      string `json:"order_id"`
	ClientSecret string `json:"client_secret"`
}

// AuthResponse is the login/register envelope.
type AuthResponse struct {
	Success bool    `json:"success"`
	User    Profile `json:"user"`
	Token   string  `json:"token"`
}

// RefreshResponse is the token-refresh envelope.
type RefreshResponse struct {
	Token string `json:"token"`
}

// VerifyCODResponse is the phone-verification envelope.
type VerifyCODResponse struct {
	Success  bool `json:"success"`
	Verified bool `json:"verified"`
}
