package app

import (
	"testing"
	"time"

	"big4-auction-service/internal/domain/listing"
	"big4-auction-service/internal/domain/shared"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestCloseItemOutcomes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		bids       []int64
		wantStatus listing.Status
		wantPrice  int64
	}{
		{name: "no bids expires", bids: nil, wantStatus: listing.StatusExpired},
		{name: "below reserve expires", bids: []int64{12, 18}, wantStatus: listing.StatusExpired},
		{name: "reserve met sells", bids: []int64{12, 18, 25}, wantStatus: listing.StatusSold, wantPrice: 25},
		{name: "exactly the reserve sells", bids: []int64{20}, wantStatus: listing.StatusSold, wantPrice: 20},
	}

	for _, tt := range tests {

		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := newFixture(t)
			seller := f.user(t, "alice")
			bidders := []uuid.UUID{f.user(t, "bob").ID, f.user(t, "carol").ID}
			item := f.item(t, seller.ID, 10, 20)

			var last uuid.UUID
			for i, amount := range tt.bids {
				last = bidders[i%len(bidders)]
				require.NoError(t, f.bid(item.ID, last, amount, epoch.Add(time.Duration(i)*time.Second)))
			}

			outcome, err := f.settlement.CloseItem(f.ctx, item.ID, item.EndTime)
			require.NoError(t, err)
			require.Equal(t, string(tt.wantStatus), outcome.Status)
			require.False(t, outcome.AlreadyClosed)

			stored, err := f.listing.GetItem(f.ctx, item.ID)
			require.NoError(t, err)
			require.Equal(t, tt.wantStatus, stored.Status)

			if tt.wantStatus != listing.StatusSold {
				require.False(t, outcome.Sold())
				_, err := f.settlement.GetTransaction(f.ctx, item.ID)
				require.ErrorIs(t, err, shared.ErrTransactionNotFound)
				return
			}

			require.True(t, outcome.Sold())
			require.Equal(t, last, *outcome.WinnerID)
			require.True(t, outcome.FinalPrice.Equal(decimal.NewFromInt(tt.wantPrice)))

			tx, err := f.settlement.GetTransaction(f.ctx, item.ID)
			require.NoError(t, err)
			require.Equal(t, *outcome.TransactionID, tx.ID)
			require.Equal(t, seller.ID, tx.SellerID)
			require.Equal(t, last, tx.BuyerID)

			mine, err := f.settlement.ListTransactions(f.ctx, seller.ID)
			require.NoError(t, err)
			require.Len(t, mine, 1)
		})
	}
}

func TestCloseItemIsIdempotent(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	seller := f.user(t, "alice")
	bidder := f.user(t, "bob")
	item := f.item(t, seller.ID, 10, 20)
	require.NoError(t, f.bid(item.ID, bidder.ID, 30, epoch))

	first, err := f.settlement.CloseItem(f.ctx, item.ID, item.EndTime)
	require.NoError(t, err)

	second, err := f.settlement.CloseItem(f.ctx, item.ID, item.EndTime.Add(time.Minute))
	require.NoError(t, err)
	require.True(t, second.AlreadyClosed)
	require.Equal(t, first.Status, second.Status)
	require.Equal(t, *first.TransactionID, *second.TransactionID)
	require.True(t, first.FinalPrice.Equal(*second.FinalPrice))

	txs, err := f.settlement.ListTransactions(f.ctx, bidder.ID)
	require.NoError(t, err)
	require.Len(t, txs, 1)
}

func TestCloseItemBeforeEnd(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	seller := f.user(t, "alice")
	item := f.item(t, seller.ID, 10, 20)

	_, err := f.settlement.CloseItem(f.ctx, item.ID, item.EndTime.Add(-time.Second))
	require.ErrorIs(t, err, shared.ErrItemStillOpen)

	stored, err := f.listing.GetItem(f.ctx, item.ID)
	require.NoError(t, err)
	require.True(t, stored.IsActive())
}

func TestCloseItemUnknown(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	_, err := f.settlement.CloseItem(f.ctx, uuid.New(), epoch)
	require.ErrorIs(t, err, shared.ErrItemNotFound)
}

func TestBidAfterCloseIsRejected(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	seller := f.user(t, "alice")
	bidder := f.user(t, "bob")
	item := f.item(t, seller.ID, 10, 20)
	require.NoError(t, f.bid(item.ID, bidder.ID, 15, epoch))

	_, err := f.settlement.CloseItem(f.ctx, item.ID, item.EndTime)
	require.NoError(t, err)

	// Even a timestamp inside the window is refused once the item is closed
	err = f.bid(item.ID, bidder.ID, 40, epoch.Add(time.Minute))
	require.ErrorIs(t, err, shared.ErrItemNotActive)
}

func TestCloseDueItemUsesClock(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	seller := f.user(t, "alice")
	item := f.item(t, seller.ID, 10, 20)

	_, err := f.settlement.CloseDueItem(f.ctx, item.ID)
	require.ErrorIs(t, err, shared.ErrItemStillOpen)

	f.clock.Set(item.EndTime)
	outcome, err := f.settlement.CloseDueItem(f.ctx, item.ID)
	require.NoError(t, err)
	require.Equal(t, string(listing.StatusExpired), outcome.Status)
}

func TestCloseItemNotifiesParties(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	seller := f.user(t, "alice")
	bidder := f.user(t, "bob")
	item := f.item(t, seller.ID, 10, 20)
	require.NoError(t, f.bid(item.ID, bidder.ID, 25, epoch))

	_, err := f.settlement.CloseItem(f.ctx, item.ID, item.EndTime)
	require.NoError(t, err)

	notes, err := f.repos.Notifications.ListByUser(f.ctx, bidder.ID, true)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	require.Contains(t, notes[0].Message, "You won")
	require.Contains(t, notes[0].Message, "25.00")
}
