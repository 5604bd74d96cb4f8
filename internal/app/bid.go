package app

import (
	"context"
	"errors"
	"time"

	"big4-auction-service/internal/domain/bid"
	"big4-auction-service/internal/domain/shared"
	"big4-auction-service/internal/ports/inbound"
	"big4-auction-service/internal/ports/outbound"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const defaultBidMaxRetries = 3

// BidService implements the bid use cases
type BidService struct {
	bidRepo     outbound.BidRepository
	itemRepo    outbound.ItemRepository
	userRepo    outbound.UserRepository
	broadcaster outbound.Broadcaster
	notifier    notifier
	maxRetries  int
	clock       func() time.Time
	logger      zerolog.Logger
}

type BidServiceParams struct {
	BidRepo          outbound.BidRepository
	ItemRepo         outbound.ItemRepository
	UserRepo         outbound.UserRepository
	NotificationRepo outbound.NotificationRepository
	Broadcaster      outbound.Broadcaster
	MaxRetries       int
	Clock            func() time.Time
	Logger           zerolog.Logger
}

// NewBidService creates a new bid service
func NewBidService(params BidServiceParams) *BidService {
	logger := params.Logger.With().Str("component", "bid_service").Logger()
	clock := clockOrNow(params.Clock)
	maxRetries := params.MaxRetries
	if maxRetries < 1 {
		maxRetries = defaultBidMaxRetries
	}
	return &BidService{
		bidRepo:     params.BidRepo,
		itemRepo:    params.ItemRepo,
		userRepo:    params.UserRepo,
		broadcaster: params.Broadcaster,
		notifier:    notifier{repo: params.NotificationRepo, clock: clock, logger: logger},
		maxRetries:  maxRetries,
		clock:       clock,
		logger:      logger,
	}
}

// PlaceBid places a new bid on an item
func (s *BidService) PlaceBid(ctx context.Context, req inbound.PlaceBidRequest) (*bid.Bid, error) {
	s.logger.Info().
		Str("item_id", req.ItemID.String()).
		Str("bidder_id", req.BidderID.String()).
		Str("amount", req.Amount.String()).
		Msg("Attempting to place bid")

	if !req.Amount.IsPositive() {
		s.logger.Warn().Str("amount", req.Amount.String()).Msg("Invalid bid amount (must be > 0)")
		return nil, shared.ErrBidAmountInvalid
	}
	if err := shared.CheckMoney(req.Amount); err != nil {
		s.logger.Warn().Str("amount", req.Amount.String()).Msg("Bid amount does not fit a money column")
		return nil, err
	}

	bidder, err := s.userRepo.GetByID(ctx, req.BidderID)
	if err != nil {
		s.logger.Error().Err(err).Str("bidder_id", req.BidderID.String()).Msg("Bidder not found")
		return nil, err
	}

	placedAt := req.At
	if placedAt.IsZero() {
		placedAt = s.clock()
	}

	for attempt := 1; attempt <= s.maxRetries; attempt++ {
		item, err := s.itemRepo.GetByID(ctx, req.ItemID)
		if err != nil {
			s.logger.Error().Err(err).Str("item_id", req.ItemID.String()).Msg("Failed to load item")
			return nil, err
		}

		if !item.AcceptsBidsAt(placedAt) {
			s.logger.Warn().
				Str("item_id", item.ID.String()).
				Str("status", string(item.Status)).
				Time("placed_at", placedAt).
				Msg("Item not accepting bids")
			return nil, shared.ErrItemNotActive
		}

		if item.SellerID == bidder.ID {
			s.logger.Warn().Str("item_id", item.ID.String()).Msg("Seller attempted to bid on own item")
			return nil, shared.ErrSelfBid
		}

		if !item.IsAboveMinimum(req.Amount) {
			s.logger.Warn().
				Str("item_id", item.ID.String()).
				Str("current_bid", item.CurrentBid.String()).
				Str("amount", req.Amount.String()).
				Msg("Bid amount too low")
			return nil, shared.ErrBidTooLow
		}

		newBid := &bid.Bid{
			ID:       uuid.New(),
			ItemID:   item.ID,
			BidderID: bidder.ID,
			Amount:   req.Amount,
			PlacedAt: placedAt,
		}

		err = s.bidRepo.PlaceBidWithOCC(ctx, newBid, item.Version)
		if errors.Is(err, shared.ErrConcurrentUpdate) {
			s.logger.Debug().
				Str("item_id", item.ID.String()).
				Int("attempt", attempt).
				Msg("Item changed during bid placement, retrying")
			continue
		}
		if err != nil {
			s.logger.Error().Err(err).Str("bid_id", newBid.ID.String()).Msg("Failed to place bid with OCC")
			return nil, err
		}

		s.afterBid(ctx, item.Title, item.SellerID, item.HighBidderID, newBid)
		return newBid, nil
	}

	s.logger.Warn().
		Str("item_id", req.ItemID.String()).
		Int("max_retries", s.maxRetries).
		Msg("Bid retries exhausted")
	return nil, shared.ErrConcurrentUpdate
}

// afterBid fans out notifications and the live event for an accepted bid
func (s *BidService) afterBid(ctx context.Context, title string, sellerID uuid.UUID, previous *uuid.UUID, newBid *bid.Bid) {
	if previous != nil && *previous != newBid.BidderID {
		s.notifier.send(ctx, *previous, "You have been outbid on %s: the highest bid is now %s", title, newBid.Amount.StringFixed(2))
	}
	s.notifier.send(ctx, sellerID, "New bid of %s on your item %s", newBid.Amount.StringFixed(2), title)

	if s.broadcaster != nil {
		event := outbound.Event{
			Type:   outbound.EventTypeBidPlaced,
			ItemID: newBid.ItemID,
			Data: map[string]interface{}{
				"bid_id":    newBid.ID,
				"bidder_id": newBid.BidderID,
				"amount":    newBid.Amount.String(),
				"placed_at": newBid.PlacedAt.Unix(),
			},
			Timestamp: newBid.PlacedAt.Unix(),
		}
		if err := s.broadcaster.Publish(ctx, newBid.ItemID, event); err != nil {
			s.logger.Error().Err(err).Str("bid_id", newBid.ID.String()).Msg("Failed to broadcast bid event")
		}
	}

	s.logger.Info().
		Str("bid_id", newBid.ID.String()).
		Str("item_id", newBid.ItemID.String()).
		Str("bidder_id", newBid.BidderID.String()).
		Str("amount", newBid.Amount.String()).
		Msg("Bid placed successfully")
}

// GetBids retrieves bids for an item
func (s *BidService) GetBids(ctx context.Context, itemID uuid.UUID) ([]*bid.Bid, error) {
	if _, err := s.itemRepo.GetByID(ctx, itemID); err != nil {
		return nil, err
	}
	return s.bidRepo.GetByItemID(ctx, itemID)
}

// GetHighestBid retrieves the highest bid for an item
func (s *BidService) GetHighestBid(ctx context.Context, itemID uuid.UUID) (*bid.Bid, error) {
	return s.bidRepo.GetHighestBid(ctx, itemID)
}
