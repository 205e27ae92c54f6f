package checkout_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Hasan-Al-Banna-Nahid/pi-commerce-sub000/checkout"
	"github.com/Hasan-Al-Banna-Nahid/pi-commerce-sub000/models"
	"github.com/Hasan-Al-Banna-Nahid/pi-commerce-sub000/pricing"
)

// ---- mock cart ----

type mockCart struct {
	mu      sync.Mutex
	lines   []models.CartLine
	cleared bool
}

func (m *mockCart) Lines() []models.CartLine {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.CartLine, len(m.lines))
	copy(out, m.lines)
	return out
}

func (m *mockCart) Clear(_ context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cleared = true
	m.lines = nil
}

func (m *mockCart) wasCleared() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cleared
}

// ---- mock API ----

type mockAPI struct {
	mu sync.Mutex

	verifyResult bool
	verifyErr    error
	verifyCalls  int

	intent      *models.PaymentIntent
	intentErr   error
	intentCalls int

	order      *models.Order
	orderErr   error
	orderCalls int

	// release, when set, blocks CreateOrder until closed (for the
	// re-entrancy test)
	release chan struct{}
}

func (m *mockAPI) VerifyCOD(_ context.Context, phone string) (bool, error) {
	m.mu.Lock()
	m.verifyCalls++
	m.mu.Unlock()
	return m.verifyResult, m.verifyErr
}

func (m *mockAPI) CreatePaymentIntent(_ context.Context, req models.PaymentIntentRequest) (*models.PaymentIntent, error) {
	m.mu.Lock()
	m.intentCalls++
	m.mu.Unlock()
	if m.intentErr != nil {
		return nil, m.intentErr
	}
	return m.intent, nil
}

func (m *mockAPI) CreateOrder(_ context.Context, req models.CreateOrderRequest) (*models.Order, error) {
	m.mu.Lock()
	m.orderCalls++
	release := m.release
	m.mu.Unlock()
	if release != nil {
		<-release
	}
	if m.orderErr != nil {
		return nil, m.orderErr
	}
	return m.order, nil
}

func (m *mockAPI) calls() (verify, intent, order int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.verifyCalls, m.intentCalls, m.orderCalls
}

// ---- mock charger ----

type mockCharger struct {
	mu      sync.Mutex
	err     error
	calls   int
	secrets []string
}

func (m *mockCharger) Charge(_ context.Context, clientSecret, cardToken string, _ models.Address) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.secrets = append(m.secrets, clientSecret)
	return m.err
}

// ---- mock notifier ----

type silentNotifier struct{}

func (silentNotifier) Success(string) {}
func (silentNotifier) Info(string)    {}
func (silentNotifier) Error(string)   {}

// reentrantNotifier reads orchestrator state from its callback, the way a
// notifier that re-renders a cart badge would.
type reentrantNotifier struct{ orc *checkout.Orchestrator }

func (n *reentrantNotifier) Success(string) {}
func (n *reentrantNotifier) Info(string)    {}
func (n *reentrantNotifier) Error(string)   { n.orc.CODVerified() }

// ---- helpers ----

func validForm() models.CheckoutForm {
	return models.CheckoutForm{
		Shipping: models.Address{
			Name:       "Amina Rahman",
			Email:      "amina@example.com",
			Phone:      "01712345678",
			Street:     "12 Green Road",
			City:       "Dhaka",
			State:      "Dhaka",
			PostalCode: "1205",
		},
		CardToken: "pm_test_visa",
	}
}

func testOrchestrator(cartLines []models.CartLine, api *mockAPI, charger *mockCharger) (*checkout.Orchestrator, *mockCart) {
	mc := &mockCart{lines: cartLines}
	orc := checkout.NewOrchestrator(mc, api, charger, pricing.NewEngine(), silentNotifier{}, zap.NewNop())
	return orc, mc
}

func someLines() []models.CartLine {
	return []models.CartLine{{ProductID: "p1", Name: "Kettle", UnitPrice: 500, Quantity: 2}}
}

// ---- tests ----

func TestSelectPaymentMethod_ResetsCODVerification(t *testing.T) {
	api := &mockAPI{verifyResult: true}
	orc, _ := testOrchestrator(someLines(), api, &mockCharger{})

	orc.SelectPaymentMethod(models.PaymentMethodCOD)
	require.NoError(t, orc.VerifyPhone(context.Background(), "01712345678"))
	require.True(t, orc.CODVerified())

	orc.SelectPaymentMethod(models.PaymentMethodCard)
	assert.False(t, orc.CODVerified())

	// Switching back still requires re-verification
	orc.SelectPaymentMethod(models.PaymentMethodCOD)
	assert.False(t, orc.CODVerified())
}

func TestVerifyPhone_TooShortRejectedWithoutNetworkCall(t *testing.T) {
	api := &mockAPI{verifyResult: true}
	orc, _ := testOrchestrator(someLines(), api, &mockCharger{})
	orc.SelectPaymentMethod(models.PaymentMethodCOD)

	err := orc.VerifyPhone(context.Background(), "0171")

	var fieldErr *checkout.FieldError
	require.ErrorAs(t, err, &fieldErr)
	assert.Equal(t, "phone", fieldErr.Field)

	verify, _, _ := api.calls()
	assert.Equal(t, 0, verify)
	assert.False(t, orc.CODVerified())
}

func TestVerifyPhone_BackendRejectionNeverSilentlySucceeds(t *testing.T) {
	api := &mockAPI{verifyResult: false}
	orc, _ := testOrchestrator(someLines(), api, &mockCharger{})
	orc.SelectPaymentMethod(models.PaymentMethodCOD)

	err := orc.VerifyPhone(context.Background(), "01712345678")

	require.Error(t, err)
	assert.False(t, orc.CODVerified())
}

func TestVerifyPhone_NotifierMayReadOrchestratorState(t *testing.T) {
	api := &mockAPI{verifyResult: false}
	notifier := &reentrantNotifier{}
	orc := checkout.NewOrchestrator(&mockCart{lines: someLines()}, api, &mockCharger{}, pricing.NewEngine(), notifier, zap.NewNop())
	notifier.orc = orc
	orc.SelectPaymentMethod(models.PaymentMethodCOD)

	done := make(chan error, 1)
	go func() { done <- orc.VerifyPhone(context.Background(), "01712345678") }()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, checkout.ErrCODNotVerified)
	case <-time.After(2 * time.Second):
		t.Fatal("VerifyPhone blocked while notifying")
	}
	assert.False(t, orc.CODVerified())
}

func TestSubmit_CODWithoutVerificationMakesNoNetworkCall(t *testing.T) {
	api := &mockAPI{order: &models.Order{ID: "ord-1"}}
	orc, mc := testOrchestrator(someLines(), api, &mockCharger{})
	orc.SelectPaymentMethod(models.PaymentMethodCOD)

	_, err := orc.Submit(context.Background(), validForm())

	assert.ErrorIs(t, err, checkout.ErrCODNotVerified)
	_, intent, order := api.calls()
	assert.Equal(t, 0, intent)
	assert.Equal(t, 0, order)
	assert.False(t, mc.wasCleared())
}

func TestSubmit_CODSuccessClearsCart(t *testing.T) {
	api := &mockAPI{verifyResult: true, order: &models.Order{ID: "ord-42"}}
	orc, mc := testOrchestrator(someLines(), api, &mockCharger{})
	orc.SelectPaymentMethod(models.PaymentMethodCOD)
	require.NoError(t, orc.VerifyPhone(context.Background(), "01712345678"))

	orderID, err := orc.Submit(context.Background(), validForm())

	require.NoError(t, err)
	assert.Equal(t, "ord-42", orderID)
	assert.True(t, mc.wasCleared())
	assert.False(t, orc.Processing())
}

func TestSubmit_MissingFieldAbortsBeforeNetwork(t *testing.T) {
	api := &mockAPI{verifyResult: true, order: &models.Order{ID: "ord-1"}}
	orc, _ := testOrchestrator(someLines(), api, &mockCharger{})
	orc.SelectPaymentMethod(models.PaymentMethodCOD)
	require.NoError(t, orc.VerifyPhone(context.Background(), "01712345678"))

	form := validForm()
	form.Shipping.PostalCode = ""

	_, err := orc.Submit(context.Background(), form)

	var fieldErr *checkout.FieldError
	require.ErrorAs(t, err, &fieldErr)
	assert.Equal(t, "shipping.postal_code", fieldErr.Field)
	_, _, order := api.calls()
	assert.Equal(t, 0, order)
}

func TestSubmit_SeparateBillingValidatedIndependently(t *testing.T) {
	api := &mockAPI{intent: &models.PaymentIntent{OrderID: "ord-9", ClientSecret: "pi_1_secret_2"}}
	orc, _ := testOrchestrator(someLines(), api, &mockCharger{})
	orc.SelectPaymentMethod(models.PaymentMethodCard)

	form := validForm()
	form.SeparateBilling = true
	form.Billing = form.Shipping
	form.Billing.Street = ""

	_, err := orc.Submit(context.Background(), form)

	var fieldErr *checkout.FieldError
	require.ErrorAs(t, err, &fieldErr)
	assert.Equal(t, "billing.street", fieldErr.Field)
}

func TestSubmit_CardAcquiresHandshakeBeforeCharge(t *testing.T) {
	api := &mockAPI{intent: &models.PaymentIntent{OrderID: "ord-7", ClientSecret: "pi_7_secret_x"}}
	charger := &mockCharger{}
	orc, mc := testOrchestrator(someLines(), api, charger)
	orc.SelectPaymentMethod(models.PaymentMethodCard)

	orderID, err := orc.Submit(context.Background(), validForm())

	require.NoError(t, err)
	assert.Equal(t, "ord-7", orderID)
	assert.Equal(t, []string{"pi_7_secret_x"}, charger.secrets)
	assert.True(t, mc.wasCleared())
}

func TestSubmit_CardChargeFailureRetainsHandshakeForRetry(t *testing.T) {
	api := &mockAPI{intent: &models.PaymentIntent{OrderID: "ord-7", ClientSecret: "pi_7_secret_x"}}
	charger := &mockCharger{err: errors.New("card declined")}
	orc, mc := testOrchestrator(someLines(), api, charger)
	orc.SelectPaymentMethod(models.PaymentMethodCard)

	_, err := orc.Submit(context.Background(), validForm())
	require.Error(t, err)
	assert.False(t, mc.wasCleared())

	// Retry succeeds without re-creating the order intent
	charger.mu.Lock()
	charger.err = nil
	charger.mu.Unlock()

	orderID, err := orc.Submit(context.Background(), validForm())
	require.NoError(t, err)
	assert.Equal(t, "ord-7", orderID)

	_, intentCalls, _ := api.calls()
	assert.Equal(t, 1, intentCalls)
	assert.Equal(t, []string{"pi_7_secret_x", "pi_7_secret_x"}, charger.secrets)
}

func TestSubmit_SwitchingMethodDiscardsHandshake(t *testing.T) {
	api := &mockAPI{intent: &models.PaymentIntent{OrderID: "ord-7", ClientSecret: "pi_7_secret_x"}}
	charger := &mockCharger{err: errors.New("card declined")}
	orc, _ := testOrchestrator(someLines(), api, charger)
	orc.SelectPaymentMethod(models.PaymentMethodCard)

	_, err := orc.Submit(context.Background(), validForm())
	require.Error(t, err)

	// Switching away and back discards the retained token
	orc.SelectPaymentMethod(models.PaymentMethodCOD)
	orc.SelectPaymentMethod(models.PaymentMethodCard)

	charger.mu.Lock()
	charger.err = nil
	charger.mu.Unlock()

	_, err = orc.Submit(context.Background(), validForm())
	require.NoError(t, err)

	_, intentCalls, _ := api.calls()
	assert.Equal(t, 2, intentCalls)
}

func TestSubmit_ReentrantCallRejectedWhileProcessing(t *testing.T) {
	release := make(chan struct{})
	api := &mockAPI{verifyResult: true, order: &models.Order{ID: "ord-1"}, release: release}
	orc, _ := testOrchestrator(someLines(), api, &mockCharger{})
	orc.SelectPaymentMethod(models.PaymentMethodCOD)
	require.NoError(t, orc.VerifyPhone(context.Background(), "01712345678"))

	done := make(chan error, 1)
	go func() {
		_, err := orc.Submit(context.Background(), validForm())
		done <- err
	}()

	// Wait for the first submission to reach the blocked order call
	require.Eventually(t, orc.Processing, 2*time.Second, 5*time.Millisecond)

	_, err := orc.Submit(context.Background(), validForm())
	assert.ErrorIs(t, err, checkout.ErrAlreadyProcessing)

	close(release)
	require.NoError(t, <-done)
}

func TestSubmit_EmptyCartRejected(t *testing.T) {
	api := &mockAPI{verifyResult: true}
	orc, _ := testOrchestrator(nil, api, &mockCharger{})
	orc.SelectPaymentMethod(models.PaymentMethodCOD)
	require.NoError(t, orc.VerifyPhone(context.Background(), "01712345678"))

	_, err := orc.Submit(context.Background(), validForm())
	assert.ErrorIs(t, err, checkout.ErrCartEmpty)
}

func TestSubmit_NoMethodSelected(t *testing.T) {
	orc, _ := testOrchestrator(someLines(), &mockAPI{}, &mockCharger{})

	_, err := orc.Submit(context.Background(), validForm())
	assert.ErrorIs(t, err, checkout.ErrNoPaymentMethod)
}

func TestClose_DiscardsLateResult(t *testing.T) {
	release := make(chan struct{})
	api := &mockAPI{verifyResult: true, order: &models.Order{ID: "ord-1"}, release: release}
	orc, mc := testOrchestrator(someLines(), api, &mockCharger{})
	orc.SelectPaymentMethod(models.PaymentMethodCOD)
	require.NoError(t, orc.VerifyPhone(context.Background(), "01712345678"))

	done := make(chan error, 1)
	go func() {
		_, err := orc.Submit(context.Background(), validForm())
		done <- err
	}()
	require.Eventually(t, orc.Processing, 2*time.Second, 5*time.Millisecond)

	orc.Close()
	close(release)

	err := <-done
	assert.ErrorIs(t, err, checkout.ErrClosed)
	// The view is gone; its state must not change underneath it
	assert.False(t, mc.wasCleared())
}

func TestQuote_UsesCartAndDestination(t *testing.T) {
	orc, _ := testOrchestrator(someLines(), &mockAPI{}, &mockCharger{})

	quote := orc.Quote("Dhaka")
	assert.Equal(t, 1000.0, quote.Subtotal)
	assert.Equal(t, float64(pricing.DefaultCapitalShipping), quote.ShippingCost)

	quote = orc.Quote("Sylhet")
	assert.Equal(t, float64(pricing.DefaultRegionShipping), quote.ShippingCost)
}
