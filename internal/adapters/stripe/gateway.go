package stripe

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"big4-auction-service/internal/domain/payment"
	"big4-auction-service/internal/domain/shared"

	"github.com/rs/zerolog"
	stripego "github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"
	"github.com/stripe/stripe-go/v79/webhook"
)

// Config is everything the gateway needs. No package-level key is set, so
// several gateways with different accounts can coexist.
type Config struct {
	SecretKey      string
	PublishableKey string
	WebhookSecret  string
	// Tolerance bounds the signature timestamp age, default webhook.DefaultTolerance
	Tolerance time.Duration
}

// Gateway implements outbound.PaymentProvider on top of stripe-go
type Gateway struct {
	api    *client.API
	config Config
	logger zerolog.Logger
}

type GatewayParams struct {
	Config Config
	// Backends overrides the HTTP backends, used by tests
	Backends *stripego.Backends
	Logger   zerolog.Logger
}

func NewGateway(params GatewayParams) *Gateway {
	cfg := params.Config
	if cfg.Tolerance == 0 {
		cfg.Tolerance = webhook.DefaultTolerance
	}
	return &Gateway{
		api:    client.New(cfg.SecretKey, params.Backends),
		config: cfg,
		logger: params.Logger.With().Str("component", "stripe_gateway").Logger(),
	}
}

func (g *Gateway) PublishableKey() string {
	return g.config.PublishableKey
}

// CreateCustomer registers a customer and returns its ID
func (g *Gateway) CreateCustomer(ctx context.Context, email, name string) (string, error) {
	params := &stripego.CustomerParams{
		Email: stripego.String(email),
	}
	if name != "" {
		params.Name = stripego.String(name)
	}
	params.Context = ctx

	customer, err := g.api.Customers.New(params)
	if err != nil {
		g.logger.Error().Err(err).Msg("Customer creation failed")
		return "", fmt.Errorf("%w: create customer: %v", shared.ErrPaymentProvider, err)
	}
	return customer.ID, nil
}

// CreateSetupIntent prepares a card setup for customerID
func (g *Gateway) CreateSetupIntent(ctx context.Context, customerID string) (*payment.SetupIntent, error) {
	params := &stripego.SetupIntentParams{
		Customer:           stripego.String(customerID),
		PaymentMethodTypes: stripego.StringSlice([]string{"card"}),
	}
	params.Context = ctx

	intent, err := g.api.SetupIntents.New(params)
	if err != nil {
		g.logger.Error().Err(err).Str("customer_id", customerID).Msg("Setup intent creation failed")
		return nil, fmt.Errorf("%w: create setup intent: %v", shared.ErrPaymentProvider, err)
	}
	return &payment.SetupIntent{
		ID:           intent.ID,
		ClientSecret: intent.ClientSecret,
		CustomerID:   customerID,
	}, nil
}

// ParseWebhook checks the signature header first, then decodes the event
func (g *Gateway) ParseWebhook(payload []byte, signature string) (*payment.WebhookEvent, error) {
	if err := webhook.ValidatePayloadWithTolerance(payload, signature, g.config.WebhookSecret, g.config.Tolerance); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidSignature, err)
	}

	var event stripego.Event
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrMalformedPayload, err)
	}
	if event.ID == "" || event.Type == "" {
		return nil, fmt.Errorf("%w: event id and type are required", shared.ErrMalformedPayload)
	}

	out := &payment.WebhookEvent{
		ID:   event.ID,
		Type: payment.EventType(event.Type),
	}
	if event.Data == nil || len(event.Data.Raw) == 0 {
		return out, nil
	}

	switch out.Type {
	case payment.EventSetupIntentCreated, payment.EventSetupIntentSucceeded, payment.EventSetupIntentSetupFailed:
		var intent stripego.SetupIntent
		if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
			return nil, fmt.Errorf("%w: setup intent: %v", shared.ErrMalformedPayload, err)
		}
		out.SetupIntentID = intent.ID
		if intent.Customer != nil {
			out.CustomerID = intent.Customer.ID
		}
		if intent.PaymentMethod != nil {
			out.PaymentMethodID = intent.PaymentMethod.ID
		}
		if intent.LastSetupError != nil {
			out.FailureMessage = intent.LastSetupError.Msg
		}
	case payment.EventPaymentMethodAttached:
		var method stripego.PaymentMethod
		if err := json.Unmarshal(event.Data.Raw, &method); err != nil {
			return nil, fmt.Errorf("%w: payment method: %v", shared.ErrMalformedPayload, err)
		}
		out.PaymentMethodID = method.ID
		if method.Customer != nil {
			out.CustomerID = method.Customer.ID
		}
	}

	return out, nil
}
