package bid

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Bid represents an accepted bid on an item
type Bid struct {
	ID       uuid.UUID       `json:"id"`
	ItemID   uuid.UUID       `json:"item_id"`
	BidderID uuid.UUID       `json:"bidder_id"`
	Amount   decimal.Decimal `json:"amount"`
	PlacedAt time.Time       `json:"placed_at"`
}

// IsValid returns true if the bid amount is greater than 0
func (b *Bid) IsValid() bool {
	return b.Amount.IsPositive()
}

// Outranks reports whether b beats other when picking a winner:
// higher amount first, earlier placement on ties.
func (b *Bid) Outranks(other *Bid) bool {
	if other == nil {
		return true
	}
	if !b.Amount.Equal(other.Amount) {
		return b.Amount.GreaterThan(other.Amount)
	}
	return b.PlacedAt.Before(other.PlacedAt)
}

// Winner returns the winning bid of bids, or nil when there is none
func Winner(bids []*Bid) *Bid {
	var best *Bid
	for _, b := range bids {
		if b.Outranks(best) {
			best = b
		}
	}
	return best
}
