package bid

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func newBid(amount int64, at time.Time) *Bid {
	return &Bid{
		ID:       uuid.New(),
		ItemID:   uuid.New(),
		BidderID: uuid.New(),
		Amount:   decimal.NewFromInt(amount),
		PlacedAt: at,
	}
}

func TestWinner(t *testing.T) {
	t.Parallel()

	t0 := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	early := newBid(25, t0)
	late := newBid(25, t0.Add(time.Second))
	low := newBid(12, t0.Add(-time.Minute))

	tests := []struct {
		name string
		bids []*Bid
		want *Bid
	}{
		{name: "no bids", bids: nil, want: nil},
		{name: "single bid", bids: []*Bid{low}, want: low},
		{name: "highest amount wins", bids: []*Bid{low, late}, want: late},
		{name: "tie goes to earliest", bids: []*Bid{late, early, low}, want: early},
		{name: "order independent", bids: []*Bid{early, late}, want: early},
	}

	for _, tt := range tests {

		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Same(t, tt.want, Winner(tt.bids))
		})
	}
}

func TestBidIsValid(t *testing.T) {
	t.Parallel()

	require.True(t, newBid(1, time.Now()).IsValid())
	require.False(t, newBid(0, time.Now()).IsValid())
	require.False(t, newBid(-5, time.Now()).IsValid())
}
