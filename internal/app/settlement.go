package app

import (
	"context"
	"errors"
	"time"

	"big4-auction-service/internal/domain/bid"
	"big4-auction-service/internal/domain/listing"
	"big4-auction-service/internal/domain/settlement"
	"big4-auction-service/internal/domain/shared"
	"big4-auction-service/internal/ports/outbound"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// SettlementService closes items and records their sale. It also serves as
// the scheduler's close hook.
type SettlementService struct {
	itemRepo          outbound.ItemRepository
	bidRepo           outbound.BidRepository
	settlementRepo    outbound.SettlementRepository
	paymentMethodRepo outbound.PaymentMethodRepository
	broadcaster       outbound.Broadcaster
	notifier          notifier
	paymentMethod     string
	maxRetries        int
	clock             func() time.Time
	logger            zerolog.Logger
}

type SettlementServiceParams struct {
	ItemRepo          outbound.ItemRepository
	BidRepo           outbound.BidRepository
	SettlementRepo    outbound.SettlementRepository
	PaymentMethodRepo outbound.PaymentMethodRepository
	NotificationRepo  outbound.NotificationRepository
	Broadcaster       outbound.Broadcaster
	// PaymentMethod is the label recorded on every transaction
	PaymentMethod string
	MaxRetries    int
	Clock         func() time.Time
	Logger        zerolog.Logger
}

// NewSettlementService creates a new settlement service
func NewSettlementService(params SettlementServiceParams) *SettlementService {
	logger := params.Logger.With().Str("component", "settlement_service").Logger()
	clock := clockOrNow(params.Clock)
	maxRetries := params.MaxRetries
	if maxRetries < 1 {
		maxRetries = defaultBidMaxRetries
	}
	paymentMethod := params.PaymentMethod
	if paymentMethod == "" {
		paymentMethod = "card"
	}
	return &SettlementService{
		itemRepo:          params.ItemRepo,
		bidRepo:           params.BidRepo,
		settlementRepo:    params.SettlementRepo,
		paymentMethodRepo: params.PaymentMethodRepo,
		broadcaster:       params.Broadcaster,
		notifier:          notifier{repo: params.NotificationRepo, clock: clock, logger: logger},
		paymentMethod:     paymentMethod,
		maxRetries:        maxRetries,
		clock:             clock,
		logger:            logger,
	}
}

// CloseItem ends bidding on an item and settles it. Closing an item that
// is already closed reports its existing outcome.
func (s *SettlementService) CloseItem(ctx context.Context, itemID uuid.UUID, at time.Time) (*shared.ClosedOutcome, error) {
	if at.IsZero() {
		at = s.clock()
	}
	s.logger.Info().Str("item_id", itemID.String()).Time("at", at).Msg("Closing item")

	// A bid committing between our read and the close bumps the version,
	// so the loop re-reads and re-picks the winner.
	for attempt := 1; attempt <= s.maxRetries+1; attempt++ {
		item, err := s.itemRepo.GetByID(ctx, itemID)
		if err != nil {
			s.logger.Error().Err(err).Str("item_id", itemID.String()).Msg("Failed to load item for closing")
			return nil, err
		}

		if !item.IsActive() {
			s.logger.Info().
				Str("item_id", itemID.String()).
				Str("status", string(item.Status)).
				Msg("Item already closed")
			return s.existingOutcome(ctx, item)
		}

		if !item.CanCloseAt(at) {
			s.logger.Warn().
				Str("item_id", itemID.String()).
				Time("end_time", item.EndTime).
				Time("at", at).
				Msg("Item bidding window has not ended")
			return nil, shared.ErrItemStillOpen
		}

		bids, err := s.bidRepo.GetByItemID(ctx, itemID)
		if err != nil {
			s.logger.Error().Err(err).Str("item_id", itemID.String()).Msg("Failed to load bids for closing")
			return nil, err
		}
		winner := bid.Winner(bids)

		status := listing.StatusExpired
		var tx *settlement.Transaction
		if winner != nil && item.MeetsReserve(winner.Amount) {
			tx, err = s.newTransaction(ctx, item, winner)
			if err != nil {
				return nil, err
			}
			status = listing.StatusSold
		}

		err = s.settlementRepo.CloseItemWithOCC(ctx, itemID, item.Version, status, tx)
		if errors.Is(err, shared.ErrConcurrentUpdate) {
			s.logger.Debug().
				Str("item_id", itemID.String()).
				Int("attempt", attempt).
				Msg("Item changed during close, retrying")
			continue
		}
		if err != nil {
			s.logger.Error().Err(err).Str("item_id", itemID.String()).Msg("Failed to close item")
			return nil, err
		}

		outcome := &shared.ClosedOutcome{ItemID: itemID, Status: string(status)}
		if tx != nil {
			outcome.WinnerID = &tx.BuyerID
			outcome.FinalPrice = &tx.Amount
			outcome.TransactionID = &tx.ID
		}
		s.afterClose(ctx, item, outcome)
		return outcome, nil
	}

	s.logger.Warn().Str("item_id", itemID.String()).Msg("Close retries exhausted")
	return nil, shared.ErrConcurrentUpdate
}

func (s *SettlementService) newTransaction(ctx context.Context, item *listing.Item, winner *bid.Bid) (*settlement.Transaction, error) {
	method, err := s.paymentMethodRepo.EnsureByLabel(ctx, s.paymentMethod)
	if err != nil {
		s.logger.Error().Err(err).Str("label", s.paymentMethod).Msg("Failed to resolve settlement payment method")
		return nil, err
	}
	tx := &settlement.Transaction{
		ID:              uuid.New(),
		ItemID:          item.ID,
		BuyerID:         winner.BidderID,
		SellerID:        item.SellerID,
		PaymentMethodID: method.ID,
		Amount:          winner.Amount,
		CreatedAt:       s.clock(),
	}
	if err := tx.Validate(); err != nil {
		return nil, err
	}
	return tx, nil
}

// existingOutcome rebuilds the outcome of a terminal item
func (s *SettlementService) existingOutcome(ctx context.Context, item *listing.Item) (*shared.ClosedOutcome, error) {
	outcome := &shared.ClosedOutcome{
		ItemID:        item.ID,
		Status:        string(item.Status),
		AlreadyClosed: true,
	}
	if item.Status != listing.StatusSold {
		return outcome, nil
	}
	tx, err := s.settlementRepo.GetTransactionByItemID(ctx, item.ID)
	if err != nil {
		s.logger.Error().Err(err).Str("item_id", item.ID.String()).Msg("Sold item has no readable transaction")
		return nil, err
	}
	outcome.WinnerID = &tx.BuyerID
	outcome.FinalPrice = &tx.Amount
	outcome.TransactionID = &tx.ID
	return outcome, nil
}

func (s *SettlementService) afterClose(ctx context.Context, item *listing.Item, outcome *shared.ClosedOutcome) {
	if outcome.Sold() {
		price := outcome.FinalPrice.StringFixed(2)
		s.notifier.send(ctx, *outcome.WinnerID, "You won %s for %s", item.Title, price)
		s.notifier.send(ctx, item.SellerID, "Your item %s sold for %s", item.Title, price)
	} else {
		s.notifier.send(ctx, item.SellerID, "Your item %s closed without a sale", item.Title)
	}

	if s.broadcaster != nil {
		data := map[string]interface{}{
			"status": outcome.Status,
		}
		if outcome.Sold() {
			data["winner_id"] = *outcome.WinnerID
			data["final_price"] = outcome.FinalPrice.String()
			data["transaction_id"] = *outcome.TransactionID
		}
		event := outbound.Event{
			Type:      outbound.EventTypeItemClosed,
			ItemID:    item.ID,
			Data:      data,
			Timestamp: s.clock().Unix(),
		}
		if err := s.broadcaster.Publish(ctx, item.ID, event); err != nil {
			s.logger.Error().Err(err).Str("item_id", item.ID.String()).Msg("Failed to broadcast close event")
		}
	}

	s.logger.Info().
		Str("item_id", item.ID.String()).
		Str("status", outcome.Status).
		Bool("sold", outcome.Sold()).
		Msg("Item closed")
}

// CloseDueItem implements scheduler.ItemCloser
func (s *SettlementService) CloseDueItem(ctx context.Context, itemID uuid.UUID) (*shared.ClosedOutcome, error) {
	return s.CloseItem(ctx, itemID, s.clock())
}

// GetTransaction retrieves the transaction of a sold item
func (s *SettlementService) GetTransaction(ctx context.Context, itemID uuid.UUID) (*settlement.Transaction, error) {
	return s.settlementRepo.GetTransactionByItemID(ctx, itemID)
}

// ListTransactions retrieves the purchases and sales of a user
func (s *SettlementService) ListTransactions(ctx context.Context, userID uuid.UUID) ([]*settlement.Transaction, error) {
	return s.settlementRepo.ListTransactionsByUser(ctx, userID)
}
