package payment

import (
	"context"

	"github.com/Hasan-Al-Banna-Nahid/pi-commerce-sub000/models"
)

// CardCharger executes a card charge against a payment handshake token
// (client secret). The checkout orchestrator never talks to the processor
// directly; it hands the token and billing details to this collaborator.
type CardCharger interface {
	Charge(ctx context.Context, clientSecret, cardToken string, billing models.Address) error
}
