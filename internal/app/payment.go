package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"big4-auction-service/internal/domain/account"
	"big4-auction-service/internal/domain/payment"
	"big4-auction-service/internal/domain/shared"
	"big4-auction-service/internal/ports/outbound"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// PaymentService implements card setup and provider webhook handling
type PaymentService struct {
	provider     outbound.PaymentProvider
	dedupe       outbound.EventDeduplicator
	userRepo     outbound.UserRepository
	cardLinkRepo outbound.CardLinkRepository
	notifier     notifier
	clock        func() time.Time
	logger       zerolog.Logger
}

type PaymentServiceParams struct {
	// Provider may be nil when no provider is configured
	Provider         outbound.PaymentProvider
	Dedupe           outbound.EventDeduplicator
	UserRepo         outbound.UserRepository
	CardLinkRepo     outbound.CardLinkRepository
	NotificationRepo outbound.NotificationRepository
	Clock            func() time.Time
	Logger           zerolog.Logger
}

// NewPaymentService creates a new payment service
func NewPaymentService(params PaymentServiceParams) *PaymentService {
	logger := params.Logger.With().Str("component", "payment_service").Logger()
	clock := clockOrNow(params.Clock)
	return &PaymentService{
		provider:     params.Provider,
		dedupe:       params.Dedupe,
		userRepo:     params.UserRepo,
		cardLinkRepo: params.CardLinkRepo,
		notifier:     notifier{repo: params.NotificationRepo, clock: clock, logger: logger},
		clock:        clock,
		logger:       logger,
	}
}

// PublishableKey returns the browser-side provider key
func (s *PaymentService) PublishableKey() string {
	if s.provider == nil {
		return ""
	}
	return s.provider.PublishableKey()
}

// CreateSetupIntent starts a card setup for userID, creating the provider
// customer first when the user has none.
func (s *PaymentService) CreateSetupIntent(ctx context.Context, userID uuid.UUID) (*payment.SetupIntent, error) {
	if s.provider == nil {
		return nil, shared.ErrPaymentNotEnabled
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	customerID, err := s.ensureCustomer(ctx, user)
	if err != nil {
		return nil, err
	}

	intent, err := s.provider.CreateSetupIntent(ctx, customerID)
	if err != nil {
		s.logger.Error().Err(err).Str("customer_id", customerID).Msg("Failed to create setup intent")
		return nil, err
	}

	s.logger.Info().
		Str("user_id", user.ID.String()).
		Str("customer_id", customerID).
		Str("setup_intent_id", intent.ID).
		Msg("Setup intent created")
	return intent, nil
}

func (s *PaymentService) ensureCustomer(ctx context.Context, user *account.User) (string, error) {
	if user.HasPaymentCustomer() {
		return *user.PaymentCustomerID, nil
	}

	customerID, err := s.provider.CreateCustomer(ctx, user.Email, user.FullName)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", user.ID.String()).Msg("Failed to create payment customer")
		return "", err
	}

	user.PaymentCustomerID = &customerID
	if err := s.userRepo.Update(ctx, user); err != nil {
		s.logger.Error().Err(err).
			Str("user_id", user.ID.String()).
			Str("customer_id", customerID).
			Msg("Failed to persist payment customer")
		return "", err
	}
	s.logger.Info().Str("user_id", user.ID.String()).Str("customer_id", customerID).Msg("Payment customer created")
	return customerID, nil
}

// HandleWebhook verifies, deduplicates and dispatches a provider event.
// Redelivered events are acknowledged without being processed again.
func (s *PaymentService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	if s.provider == nil {
		return shared.ErrPaymentNotEnabled
	}

	event, err := s.provider.ParseWebhook(payload, signature)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Rejected webhook")
		return err
	}

	logger := s.logger.With().Str("event_id", event.ID).Str("event_type", string(event.Type)).Logger()

	if !event.Type.Known() {
		logger.Info().Msg("Ignoring unhandled webhook event type")
		return nil
	}

	if s.dedupe != nil {
		claimed, err := s.dedupe.Claim(ctx, event.ID)
		if err != nil {
			logger.Error().Err(err).Msg("Failed to claim webhook event")
			return fmt.Errorf("%w: %v", shared.ErrDedupeStore, err)
		}
		if !claimed {
			logger.Info().Msg("Duplicate webhook event acknowledged")
			return nil
		}
	}

	if err := s.dispatch(ctx, event, logger); err != nil {
		if s.dedupe != nil {
			if relErr := s.dedupe.Release(ctx, event.ID); relErr != nil {
				logger.Error().Err(relErr).Msg("Failed to release webhook claim")
			}
		}
		logger.Error().Err(err).Msg("Failed to process webhook event")
		return err
	}

	if s.dedupe != nil {
		// The effect is applied; a lingering short claim only means a
		// redelivery gets processed again, which the handlers tolerate.
		if err := s.dedupe.Complete(ctx, event.ID); err != nil {
			logger.Warn().Err(err).Msg("Failed to extend webhook claim")
		}
	}

	logger.Info().Msg("Webhook event processed")
	return nil
}

func (s *PaymentService) dispatch(ctx context.Context, event *payment.WebhookEvent, logger zerolog.Logger) error {
	switch event.Type {
	case payment.EventSetupIntentCreated:
		logger.Info().Str("setup_intent_id", event.SetupIntentID).Msg("Setup intent created")
		return nil

	case payment.EventSetupIntentSucceeded, payment.EventPaymentMethodAttached:
		user, err := s.customerOwner(ctx, event.CustomerID, logger)
		if err != nil || user == nil {
			return err
		}
		if event.PaymentMethodID == "" {
			logger.Warn().Msg("Event carries no payment method")
			return nil
		}
		created, err := s.cardLinkRepo.LinkPaymentMethod(ctx, &payment.CardLink{
			ID:                      uuid.New(),
			UserID:                  user.ID,
			ProviderPaymentMethodID: event.PaymentMethodID,
			CreatedAt:               s.clock(),
		})
		if err != nil {
			return err
		}
		logger.Info().
			Str("user_id", user.ID.String()).
			Str("payment_method_id", event.PaymentMethodID).
			Bool("created", created).
			Msg("Payment method linked")
		return nil

	case payment.EventSetupIntentSetupFailed:
		user, err := s.customerOwner(ctx, event.CustomerID, logger)
		if err != nil || user == nil {
			return err
		}
		reason := event.FailureMessage
		if reason == "" {
			reason = "the card could not be set up"
		}
		s.notifier.send(ctx, user.ID, "Card setup failed: %s", reason)
		logger.Info().Str("user_id", user.ID.String()).Msg("Card setup failure recorded")
		return nil
	}
	return nil
}

// customerOwner returns nil without error when no user owns customerID;
// there is nothing to retry for such events.
func (s *PaymentService) customerOwner(ctx context.Context, customerID string, logger zerolog.Logger) (*account.User, error) {
	if customerID == "" {
		logger.Warn().Msg("Event carries no customer")
		return nil, nil
	}
	user, err := s.userRepo.GetByPaymentCustomerID(ctx, customerID)
	if errors.Is(err, shared.ErrUserNotFound) {
		logger.Warn().Str("customer_id", customerID).Msg("No user owns payment customer")
		return nil, nil
	}
	return user, err
}
