package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Hasan-Al-Banna-Nahid/pi-commerce-sub000/models"
	"github.com/Hasan-Al-Banna-Nahid/pi-commerce-sub000/notify"
	"github.com/Hasan-Al-Banna-Nahid/pi-commerce-sub000/payment"
	"github.com/Hasan-Al-Banna-Nahid/pi-commerce-sub000/pricing"
)

var (
	// ErrAlreadyProcessing rejects re-entrant submissions while one is in
	// flight. Callers surface it as a disabled affordance, not a queue.
	ErrAlreadyProcessing = errors.New("checkout: submission already in progress")

	// ErrNoPaymentMethod means Submit was called before a method was chosen.
	ErrNoPaymentMethod = errors.New("checkout: no payment method selected")

	// ErrCODNotVerified blocks cash-on-delivery submission until the phone
	// number has been verified.
	ErrCODNotVerified = errors.New("checkout: phone not verified for cash on delivery")

	// ErrCartEmpty rejects submission of an empty cart.
	ErrCartEmpty = errors.New("checkout: cart is empty")

	// ErrClosed is returned when a response arrives after Close; the result
	// is discarded instead of mutating a no-longer-visible view.
	ErrClosed = errors.New("checkout: orchestrator closed")
)

// FieldError identifies the form field that failed validation.
type FieldError struct {
	Field string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("missing required field: %s", e.Field)
}

// minPhoneDigits is the minimum digit count accepted for COD verification.
const minPhoneDigits = 10

// OrderPlacer is the slice of the API client the orchestrator uses.
type OrderPlacer interface {
	VerifyCOD(ctx context.Context, phone string) (bool, error)
	CreatePaymentIntent(ctx context.Context, req models.PaymentIntentRequest) (*models.PaymentIntent, error)
	CreateOrder(ctx context.Context, req models.CreateOrderRequest) (*models.Order, error)
}

// CartStore is the slice of the cart store the orchestrator uses.
type CartStore interface {
	Lines() []models.CartLine
	Clear(ctx context.Context)
}

// Orchestrator sequences payment-method selection, COD phone verification,
// payment-handshake acquisition and order submission. All collaborators are
// explicit constructor parameters so the state machine tests in isolation.
type Orchestrator struct {
	cart     CartStore
	api      OrderPlacer
	charger  payment.CardCharger
	engine   *pricing.Engine
	notifier notify.Notifier
	logger   *zap.Logger

	mu           sync.Mutex
	method       models.PaymentMethod
	codVerified  bool
	clientSecret string
	pendingOrder string
	idemKey      string
	discount     float64
	processing   bool
	closed       bool
}

func NewOrchestrator(cart CartStore, api OrderPlacer, charger payment.CardCharger, engine *pricing.Engine, notifier notify.Notifier, logger *zap.Logger) *Orchestrator {
	return &Orchestrator{
		cart:     cart,
		api:      api,
		charger:  charger,
		engine:   engine,
		notifier: notifier,
		logger:   logger,
	}
}

// SelectPaymentMethod switches between card and cash on delivery. The two
// paths share no verification state: switching resets COD verification and
// discards any retained handshake token.
func (o *Orchestrator) SelectPaymentMethod(method models.PaymentMethod) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.method = method
	o.codVerified = false
	o.clientSecret = ""
	o.pendingOrder = ""
	o.idemKey = ""
}

// PaymentMethod returns the currently selected method.
func (o *Orchestrator) PaymentMethod() models.PaymentMethod {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.method
}

// CODVerified reports whether the phone number has been verified.
func (o *Orchestrator) CODVerified() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.codVerified
}

// Processing reports whether a submission is in flight.
func (o *Orchestrator) Processing() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.processing
}

// ApplyDiscount sets an absolute discount amount carried into the quote.
func (o *Orchestrator) ApplyDiscount(amount float64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if amount < 0 {
		amount = 0
	}
	o.discount = amount
}

// Quote prices the current cart for a destination city.
func (o *Orchestrator) Quote(destinationCity string) models.Quote {
	o.mu.Lock()
	discount := o.discount
	o.mu.Unlock()
	return o.engine.Quote(o.cart.Lines(), destinationCity, discount)
}

// VerifyPhone runs COD phone verification. It never silently succeeds: on
// any failure codVerified stays false and the error is returned.
func (o *Orchestrator) VerifyPhone(ctx context.Context, phone string) error {
	if digitCount(phone) < minPhoneDigits {
		return &FieldError{Field: "phone"}
	}

	verified, err := o.api.VerifyCOD(ctx, phone)

	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return ErrClosed
	}
	if err == nil && verified {
		o.codVerified = true
	}
	o.mu.Unlock()

	// Notify outside the lock: a notifier is free to read orchestrator state.
	if err != nil {
		o.notifier.Error("Phone verification failed")
		return fmt.Errorf("verify phone: %w", err)
	}
	if !verified {
		o.notifier.Error("Phone number could not be verified")
		return ErrCODNotVerified
	}
	return nil
}

// Submit validates the form and places the order via the selected payment
// path. On success the cart is cleared and the new order id is returned for
// the confirmation view.
func (o *Orchestrator) Submit(ctx context.Context, form models.CheckoutForm) (string, error) {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return "", ErrClosed
	}
	if o.processing {
		o.mu.Unlock()
		return "", ErrAlreadyProcessing
	}
	method := o.method
	codVerified := o.codVerified
	o.processing = true
	if o.idemKey == "" {
		o.idemKey = uuid.NewString()
	}
	o.mu.Unlock()

	defer func() {
		o.mu.Lock()
		o.processing = false
		o.mu.Unlock()
	}()

	// Everything below must fail before any network call when the input is
	// incomplete.
	if method == "" {
		return "", ErrNoPaymentMethod
	}
	if err := validateForm(&form); err != nil {
		return "", err
	}
	lines := o.cart.Lines()
	if len(lines) == 0 {
		return "", ErrCartEmpty
	}

	switch method {
	case models.PaymentMethodCOD:
		if !codVerified {
			return "", ErrCODNotVerified
		}
		return o.submitCOD(ctx, form, lines)
	case models.PaymentMethodCard:
		return o.submitCard(ctx, form, lines)
	default:
		return "", fmt.Errorf("checkout: unknown payment method %q", method)
	}
}

func (o *Orchestrator) submitCOD(ctx context.Context, form models.CheckoutForm, lines []models.CartLine) (string, error) {
	quote := o.engine.Quote(lines, form.Shipping.City, o.currentDiscount())

	order, err := o.api.CreateOrder(ctx, models.CreateOrderRequest{
		Items:           orderItems(lines),
		ShippingAddress: form.Shipping,
		BillingAddress:  form.BillingAddress(),
		PaymentMethod:   string(models.PaymentMethodCOD),
		ShippingCost:    quote.ShippingCost,
		Tax:             quote.Tax,
		Total:           quote.Total,
		IdempotencyKey:  o.currentIdemKey(),
	})
	if err != nil {
		o.notifyError("Order could not be placed")
		return "", fmt.Errorf("create order: %w", err)
	}

	return o.complete(ctx, order.ID)
}

func (o *Orchestrator) submitCard(ctx context.Context, form models.CheckoutForm, lines []models.CartLine) (string, error) {
	o.mu.Lock()
	secret := o.clientSecret
	orderID := o.pendingOrder
	o.mu.Unlock()

	// The handshake token is acquired before any charge attempt and kept
	// across failed charges so a retry reuses the same order intent.
	if secret == "" {
		quote := o.engine.Quote(lines, form.Shipping.City, o.currentDiscount())

		intent, err := o.api.CreatePaymentIntent(ctx, models.PaymentIntentRequest{
			Items:           orderItems(lines),
			ShippingAddress: form.Shipping,
			BillingAddress:  form.BillingAddress(),
			ShippingCost:    quote.ShippingCost,
			Tax:             quote.Tax,
			Total:           quote.Total,
			IdempotencyKey:  o.currentIdemKey(),
		})
		if err != nil {
			o.notifyError("Payment could not be started")
			return "", fmt.Errorf("create payment intent: %w", err)
		}

		o.mu.Lock()
		if o.closed {
			o.mu.Unlock()
			return "", ErrClosed
		}
		o.clientSecret = intent.ClientSecret
		o.pendingOrder = intent.OrderID
		o.mu.Unlock()

		secret = intent.ClientSecret
		orderID = intent.OrderID
	}

	if err := o.charger.Charge(ctx, secret, form.CardToken, form.BillingAddress()); err != nil {
		o.notifyError("Payment failed, please try again")
		return "", fmt.Errorf("card charge: %w", err)
	}

	return o.complete(ctx, orderID)
}

// complete clears the cart and resets the machine. A result arriving after
// Close is discarded without touching state.
func (o *Orchestrator) complete(ctx context.Context, orderID string) (string, error) {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return "", ErrClosed
	}
	o.method = ""
	o.codVerified = false
	o.clientSecret = ""
	o.pendingOrder = ""
	o.idemKey = ""
	o.discount = 0
	o.mu.Unlock()

	o.cart.Clear(ctx)
	o.notifier.Success("Order placed")
	o.logger.Info("order submitted", zap.String("order_id", orderID))
	return orderID, nil
}

// Close marks the orchestrator as unmounted: in-flight responses are
// discarded rather than applied.
func (o *Orchestrator) Close() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.closed = true
}

func (o *Orchestrator) currentDiscount() float64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.discount
}

func (o *Orchestrator) currentIdemKey() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.idemKey
}

func (o *Orchestrator) notifyError(msg string) {
	o.mu.Lock()
	closed := o.closed
	o.mu.Unlock()
	if !closed {
		o.notifier.Error(msg)
	}
}

// validateForm checks every required address field; billing is validated
// independently when a separate billing address is requested.
func validateForm(form *models.CheckoutForm) error {
	if err := validateAddress("shipping", form.Shipping); err != nil {
		return err
	}
	if form.SeparateBilling {
		if err := validateAddress("billing", form.Billing); err != nil {
			return err
		}
	}
	return nil
}

func validateAddress(prefix string, addr models.Address) error {
	fields := []struct {
		name  string
		value string
	}{
		{"name", addr.Name},
		{"email", addr.Email},
		{"phone", addr.Phone},
		{"street", addr.Street},
		{"city", addr.City},
		{"state", addr.State},
		{"postal_code", addr.PostalCode},
	}
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			return &FieldError{Field: prefix + "." + f.name}
		}
	}
	return nil
}

func orderItems(lines []models.CartLine) []models.OrderItem {
	items := make([]models.OrderItem, 0, len(lines))
	for _, line := range lines {
		items = append(items, models.OrderItem{
			ProductID: line.ProductID,
			Name:      line.Name,
			UnitPrice: line.UnitPrice,
			Quantity:  line.Quantity,
		})
	}
	return items
}

func digitCount(s string) int {
	n := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n
}
