package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/Hasan-Al-Banna-Nahid/pi-commerce-sub000/gateway"
	"github.com/Hasan-Al-Banna-Nahid/pi-commerce-sub000/models"
	"github.com/Hasan-Al-Banna-Nahid/pi-commerce-sub000/pkg/apperrors"
)

// Client is the typed surface over the remote Pi-Commerce REST API. Single
// resources arrive wrapped as {"<resource>": {...}} and collections as
// {"<resources>": [...], "pagination": {...}}; every method decodes into an
// explicit envelope instead of walking untyped JSON.
type Client struct {
	gw *gateway.Gateway
}

func NewClient(gw *gateway.Gateway) *Client {
	return &Client{gw: gw}
}

// ---- auth ----

// Login authenticates and returns the session payload. Exempt from the
// refresh machinery: a 401 here means bad credentials, not an expired token.
func (c *Client) Login(ctx context.Context, email, password string) (*models.AuthResponse, error) {
	req := map[string]string{"email": email, "password": password}
	var resp models.AuthResponse
	err := c.gw.DoJSON(ctx, http.MethodPost, "/auth/login", req, &resp, gateway.WithoutAuth())
	if err != nil {
		return nil, err
	}
	if !resp.Success || resp.Token == "" {
		return nil, apperrors.ErrInvalidCredentials
	}
	return &resp, nil
}

// Register creates an account and returns the session payload.
func (c *Client) Register(ctx context.Context, name, email, password string) (*models.AuthResponse, error) {
	req := map[string]string{"name": name, "email": email, "password": password}
	var resp models.AuthResponse
	err := c.gw.DoJSON(ctx, http.MethodPost, "/auth/register", req, &resp, gateway.WithoutAuth())
	if err != nil {
		return nil, err
	}
	if !resp.Success || resp.Token == "" {
		return nil, apperrors.New(http.StatusBadRequest, "Registration failed", nil)
	}
	return &resp, nil
}

// Logout tells the backend to drop the session. Fire-and-forget: local
// sign-out proceeds whether or not the call lands.
func (c *Client) Logout(ctx context.Context) {
	_ = c.gw.DoJSON(ctx, http.MethodPost, "/auth/logout", nil, nil)
}

// Me fetches the signed-in user's profile.
func (c *Client) Me(ctx context.Context) (*models.Profile, error) {
	var envelope struct {
		User models.Profile `json:"user"`
	}
	if err := c.gw.DoJSON(ctx, http.MethodGet, "/users/me", nil, &envelope); err != nil {
		return nil, err
	}
	return &envelope.User, nil
}

// ---- catalog ----

// ListProducts fetches one catalog page.
func (c *Client) ListProducts(ctx context.Context, page int) ([]models.Product, *models.Pagination, error) {
	path := fmt.Sprintf("/products?page=%d", page)
	var envelope struct {
		Products   []models.Product   `json:"products"`
		Pagination *models.Pagination `json:"pagination"`
	}
	if err := c.gw.DoJSON(ctx, http.MethodGet, path, nil, &envelope); err != nil {
		return nil, nil, err
	}
	return envelope.Products, envelope.Pagination, nil
}

// GetProduct fetches a single product.
func (c *Client) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	var envelope struct {
		Product models.Product `json:"product"`
	}
	path := "/products/" + url.PathEscape(id)
	if err := c.gw.DoJSON(ctx, http.MethodGet, path, nil, &envelope); err != nil {
		return nil, err
	}
	return &envelope.Product, nil
}

// ---- orders & checkout ----

// VerifyCOD asks the backend to verify a phone number for cash-on-delivery.
func (c *Client) VerifyCOD(ctx context.Context, phone string) (bool, error) {
	req := map[string]string{"phone": phone}
	var resp models.VerifyCODResponse
	if err := c.gw.DoJSON(ctx, http.MethodPost, "/orders/verify-cod", req, &resp); err != nil {
		return false, err
	}
	return resp.Success && resp.Verified, nil
}

// CreatePaymentIntent creates the order intent and returns the handshake
// token (client secret) scoped to the given cart contents and destination.
func (c *Client) CreatePaymentIntent(ctx context.Context, req models.PaymentIntentRequest) (*models.PaymentIntent, error) {
	var envelope struct {
		Success      bool   `json:"success"`
		OrderID      string `json:"order_id"`
		ClientSecret string `json:"client_secret"`
	}
	if err := c.gw.DoJSON(ctx, http.MethodPost, "/orders/payment-intent", req, &envelope); err != nil {
		return nil, err
	}
	if envelope.ClientSecret == "" {
		return nil, apperrors.New(http.StatusBadGateway, "Payment intent missing client secret", nil)
	}
	return &models.PaymentIntent{OrderID: envelope.OrderID, ClientSecret: envelope.ClientSecret}, nil
}

// CreateOrder places a cash-on-delivery order.
func (c *Client) CreateOrder(ctx context.Context, req models.CreateOrderRequest) (*models.Order, error) {
	var envelope struct {
		Order models.Order `json:"order"`
	}
	if err := c.gw.DoJSON(ctx, http.MethodPost, "/orders", req, &envelope); err != nil {
		return nil, err
	}
	return &envelope.Order, nil
}

// ListOrders fetches the signed-in user's order history.
func (c *Client) ListOrders(ctx context.Context, page int) ([]models.Order, *models.Pagination, error) {
	path := fmt.Sprintf("/orders?page=%d", page)
	var envelope struct {
		Orders     []models.Order     `json:"orders"`
		Pagination *models.Pagination `json:"pagination"`
	}
	if err := c.gw.DoJSON(ctx, http.MethodGet, path, nil, &envelope); err != nil {
		return nil, nil, err
	}
	return envelope.Orders, envelope.Pagination, nil
}
