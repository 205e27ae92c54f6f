package payment

import (
	"context"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v80"
	"github.com/stripe/stripe-go/v80/paymentintent"

	"github.com/Hasan-Al-Banna-Nahid/pi-commerce-sub000/models"
)

// StripeCharger confirms payment intents through the Stripe SDK.
type StripeCharger struct{}

// NewStripeCharger installs the API key globally, as the SDK expects.
func NewStripeCharger(secretKey string) *StripeCharger {
	stripe.Key = secretKey
	return &StripeCharger{}
}

// Charge confirms the payment intent behind the client secret with the
// tokenized card. The intent was already scoped to the order amount by the
// backend, so no amount is passed here.
func (s *StripeCharger) Charge(ctx context.Context, clientSecret, cardToken string, billing models.Address) error {
	intentID, err := intentIDFromSecret(clientSecret)
	if err != nil {
		return err
	}

	params := &stripe.PaymentIntentConfirmParams{
		PaymentMethod: stripe.String(cardToken),
	}
	params.Context = ctx

	pi, err := paymentintent.Confirm(intentID, params)
	if err != nil {
		return fmt.Errorf("stripe confirm failed: %w", err)
	}

	switch pi.Status {
	case stripe.PaymentIntentStatusSucceeded,
		stripe.PaymentIntentStatusProcessing,
		stripe.PaymentIntentStatusRequiresCapture:
		return nil
	default:
		return fmt.Errorf("payment not completed: intent status %s", pi.Status)
	}
}

// intentIDFromSecret extracts the intent id from a "pi_..._secret_..."
// client secret.
func intentIDFromSecret(clientSecret string) (string, error) {
	id, _, found := strings.Cut(clientSecret, "_secret_")
	if !found || id == "" {
		return "", fmt.Errorf("malformed client secret")
	}
	return id, nil
}
