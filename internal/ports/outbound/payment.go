package outbound

//go:generate mockgen -source=payment.go -destination=../../mocks/mock_payment.go -package=mocks

import (
	"context"

	"big4-auction-service/internal/domain/payment"
)

// PaymentProvider is the external card-payment gateway
type PaymentProvider interface {
	// CreateCustomer registers a customer and returns its provider handle
	CreateCustomer(ctx context.Context, email, name string) (string, error)

	// CreateSetupIntent prepares a card setup for customerID
	CreateSetupIntent(ctx context.Context, customerID string) (*payment.SetupIntent, error)

	// ParseWebhook verifies signature over payload and decodes the event.
	// Returns shared.ErrInvalidSignature or shared.ErrMalformedPayload.
	ParseWebhook(payload []byte, signature string) (*payment.WebhookEvent, error)

	PublishableKey() string
}

// EventDeduplicator remembers processed webhook event IDs. A claim is
// short-lived until Complete makes it last for the full retention period,
// so an event whose processing never finished becomes claimable again.
type EventDeduplicator interface {
	// Claim returns true when eventID has not been claimed before
	Claim(ctx context.Context, eventID string) (bool, error)

	// Complete keeps the claim on eventID for the full retention period
	Complete(ctx context.Context, eventID string) error

	// Release forgets eventID so a redelivery is processed again
	Release(ctx context.Context, eventID string) error
}
