package payment

import (
	"time"

	"github.com/google/uuid"
)

// EventType is the provider's webhook event tag
type EventType string

const (
	EventSetupIntentCreated     EventType = "setup_intent.created"
	EventSetupIntentSucceeded   EventType = "setup_intent.succeeded"
	EventPaymentMethodAttached  EventType = "payment_method.attached"
	EventSetupIntentSetupFailed EventType = "setup_intent.setup_failed"
)

// Known reports whether t is one of the events the service acts on
func (t EventType) Known() bool {
	switch t {
	case EventSetupIntentCreated, EventSetupIntentSucceeded, EventPaymentMethodAttached, EventSetupIntentSetupFailed:
		return true
	}
	return false
}

// WebhookEvent is a verified provider event reduced to the fields we use
type WebhookEvent struct {
	ID              string    `json:"id"`
	Type            EventType `json:"type"`
	CustomerID      string    `json:"customer_id,omitempty"`
	PaymentMethodID string    `json:"payment_method_id,omitempty"`
	SetupIntentID   string    `json:"setup_intent_id,omitempty"`
	FailureMessage  string    `json:"failure_message,omitempty"`
}

// SetupIntent is what the browser needs to confirm a card setup
type SetupIntent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
	CustomerID   string `json:"customer"`
}

// CardLink associates a provider payment method with a user
type CardLink struct {
	ID                      uuid.UUID `json:"id"`
	UserID                  uuid.UUID `json:"user_id"`
	ProviderPaymentMethodID string    `json:"provider_payment_method_id"`
	CreatedAt               time.Time `json:"created_at"`
}
