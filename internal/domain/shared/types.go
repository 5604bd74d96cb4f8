package shared

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ClosedOutcome represents the result of closing an item's bidding window
type ClosedOutcome struct {
	ItemID        uuid.UUID        `json:"item_id"`
	Status        string           `json:"status"`
	WinnerID      *uuid.UUID       `json:"winner_id,omitempty"`
	FinalPrice    *decimal.Decimal `json:"final_price,omitempty"`
	TransactionID *uuid.UUID       `json:"transaction_id,omitempty"`
	AlreadyClosed bool             `json:"already_closed"`
}

// Sold reports whether the close produced a transaction
func (o *ClosedOutcome) Sold() bool {
	return o.TransactionID != nil
}
