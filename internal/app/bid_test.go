package app

import (
	"errors"
	"sync"
	"testing"
	"time"

	"big4-auction-service/internal/domain/shared"
	"big4-auction-service/internal/ports/inbound"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestPlaceBidRules(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		setup   func(t *testing.T, f *fixture, itemID, bidder uuid.UUID)
		bidder  func(seller, bidder uuid.UUID) uuid.UUID
		amount  int64
		at      time.Duration
		wantErr error
	}{
		{
			name:   "first bid may equal the starting bid",
			amount: 10,
		},
		{
			name:    "first bid below the starting bid",
			amount:  5,
			wantErr: shared.ErrBidTooLow,
		},
		{
			name: "later bid must exceed the current bid",
			setup: func(t *testing.T, f *fixture, itemID, _ uuid.UUID) {
				other := f.user(t, "carol")
				require.NoError(t, f.bid(itemID, other.ID, 12, epoch))
			},
			amount:  12,
			wantErr: shared.ErrBidTooLow,
		},
		{
			name:    "seller cannot bid",
			bidder:  func(seller, _ uuid.UUID) uuid.UUID { return seller },
			amount:  15,
			wantErr: shared.ErrSelfBid,
		},
		{
			name:    "zero amount",
			amount:  0,
			wantErr: shared.ErrBidAmountInvalid,
		},
		{
			name:    "unknown bidder",
			bidder:  func(_, _ uuid.UUID) uuid.UUID { return uuid.New() },
			amount:  15,
			wantErr: shared.ErrUserNotFound,
		},
		{
			name:    "after the end time",
			amount:  15,
			at:      2 * time.Hour,
			wantErr: shared.ErrItemNotActive,
		},
		{
			name:    "before the start time",
			amount:  15,
			at:      -time.Hour,
			wantErr: shared.ErrItemNotActive,
		},
	}

	for _, tt := range tests {

		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := newFixture(t)
			seller := f.user(t, "alice")
			bidder := f.user(t, "bob")
			item := f.item(t, seller.ID, 10, 20)

			if tt.setup != nil {
				tt.setup(t, f, item.ID, bidder.ID)
			}
			who := bidder.ID
			if tt.bidder != nil {
				who = tt.bidder(seller.ID, bidder.ID)
			}

			err := f.bid(item.ID, who, tt.amount, epoch.Add(tt.at))
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)

			stored, err := f.listing.GetItem(f.ctx, item.ID)
			require.NoError(t, err)
			require.True(t, stored.CurrentBid.Equal(decimal.NewFromInt(tt.amount)))
			require.Equal(t, who, *stored.HighBidderID)
		})
	}
}

func TestPlaceBidRejectsAmountsOutsideMoneyColumn(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		amount string
	}{
		{name: "sub-cent increment", amount: "12.004"},
		{name: "sub-cent rounding up", amount: "12.006"},
		{name: "too many digits", amount: "123456789012.5"},
	}

	for _, tt := range tests {

		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := newFixture(t)
			seller := f.user(t, "alice")
			bidder := f.user(t, "bob")
			item := f.item(t, seller.ID, 10, 20)
			require.NoError(t, f.bid(item.ID, f.user(t, "carol").ID, 12, epoch))

			_, err := f.bids.PlaceBid(f.ctx, inbound.PlaceBidRequest{
				ItemID:   item.ID,
				BidderID: bidder.ID,
				Amount:   decimal.RequireFromString(tt.amount),
				At:       epoch,
			})
			require.ErrorIs(t, err, shared.ErrAmountPrecision)
			require.ErrorIs(t, err, shared.ErrValidation)

			stored, err := f.listing.GetItem(f.ctx, item.ID)
			require.NoError(t, err)
			require.True(t, stored.CurrentBid.Equal(decimal.NewFromInt(12)))
			require.Equal(t, int64(1), stored.Version)
		})
	}
}

func TestPlaceBidUnknownItem(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	bidder := f.user(t, "bob")

	err := f.bid(uuid.New(), bidder.ID, 10, epoch)
	require.ErrorIs(t, err, shared.ErrItemNotFound)
}

func TestPlaceBidDefaultsToClock(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	seller := f.user(t, "alice")
	bidder := f.user(t, "bob")
	item := f.item(t, seller.ID, 10, 20)

	f.clock.Set(epoch.Add(5 * time.Minute))
	placed, err := f.bids.PlaceBid(f.ctx, inbound.PlaceBidRequest{
		ItemID:   item.ID,
		BidderID: bidder.ID,
		Amount:   decimal.NewFromInt(10),
	})
	require.NoError(t, err)
	require.Equal(t, epoch.Add(5*time.Minute), placed.PlacedAt)

	f.clock.Set(epoch.Add(2 * time.Hour))
	_, err = f.bids.PlaceBid(f.ctx, inbound.PlaceBidRequest{
		ItemID:   item.ID,
		BidderID: bidder.ID,
		Amount:   decimal.NewFromInt(50),
	})
	require.ErrorIs(t, err, shared.ErrItemNotActive)
}

func TestPlaceBidConcurrentBidders(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	seller := f.user(t, "alice")
	item := f.item(t, seller.ID, 10, 20)

	const bidders = 12
	users := make([]uuid.UUID, bidders)
	for i := range users {
		users[i] = f.user(t, "bidder"+string(rune('a'+i))).ID
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		accepted []int64
	)
	for i, id := range users {
		wg.Add(1)
		go func(amount int64, bidder uuid.UUID) {
			defer wg.Done()
			err := f.bid(item.ID, bidder, amount, epoch)
			if err == nil {
				mu.Lock()
				accepted = append(accepted, amount)
				mu.Unlock()
				return
			}
			if !errors.Is(err, shared.ErrBidTooLow) && !errors.Is(err, shared.ErrConcurrentUpdate) {
				t.Errorf("unexpected bid error: %v", err)
			}
		}(int64(10+i), id)
	}
	wg.Wait()

	require.NotEmpty(t, accepted)
	var highest int64
	for _, a := range accepted {
		if a > highest {
			highest = a
		}
	}

	stored, err := f.listing.GetItem(f.ctx, item.ID)
	require.NoError(t, err)
	require.True(t, stored.CurrentBid.Equal(decimal.NewFromInt(highest)))
	require.Equal(t, int64(len(accepted)), stored.Version)

	bids, err := f.bids.GetBids(f.ctx, item.ID)
	require.NoError(t, err)
	require.Len(t, bids, len(accepted))
	require.True(t, bids[0].Amount.Equal(decimal.NewFromInt(highest)))

	winning, err := f.bids.GetHighestBid(f.ctx, item.ID)
	require.NoError(t, err)
	require.Equal(t, bids[0].ID, winning.ID)
}

func TestPlaceBidNotifiesOutbidUser(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	seller := f.user(t, "alice")
	first := f.user(t, "bob")
	second := f.user(t, "carol")
	item := f.item(t, seller.ID, 10, 20)

	require.NoError(t, f.bid(item.ID, first.ID, 12, epoch))
	require.NoError(t, f.bid(item.ID, first.ID, 14, epoch.Add(time.Second)))

	notes, err := f.repos.Notifications.ListByUser(f.ctx, first.ID, false)
	require.NoError(t, err)
	require.Empty(t, notes, "raising your own bid is not an outbid")

	require.NoError(t, f.bid(item.ID, second.ID, 18, epoch.Add(2*time.Second)))

	notes, err = f.repos.Notifications.ListByUser(f.ctx, first.ID, false)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	require.Contains(t, notes[0].Message, "outbid")
	require.Contains(t, notes[0].Message, "18.00")

	sellerNotes, err := f.repos.Notifications.ListByUser(f.ctx, seller.ID, false)
	require.NoError(t, err)
	require.Len(t, sellerNotes, 3)
}

func TestGetHighestBidWithoutBids(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	seller := f.user(t, "alice")
	item := f.item(t, seller.ID, 10, 20)

	_, err := f.bids.GetHighestBid(f.ctx, item.ID)
	require.ErrorIs(t, err, shared.ErrNoBidsFound)

	bids, err := f.bids.GetBids(f.ctx, item.ID)
	require.NoError(t, err)
	require.Empty(t, bids)
}
