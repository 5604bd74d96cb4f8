package settlement

import (
	"fmt"
	"time"

	"big4-auction-service/internal/domain/shared"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Transaction records the sale of an item to its winning bidder
type Transaction struct {
	ID              uuid.UUID       `json:"id"`
	ItemID          uuid.UUID       `json:"item_id"`
	BuyerID         uuid.UUID       `json:"buyer_id"`
	SellerID        uuid.UUID       `json:"seller_id"`
	PaymentMethodID uuid.UUID       `json:"payment_method_id"`
	Amount          decimal.Decimal `json:"amount"`
	CreatedAt       time.Time       `json:"created_at"`
}

// Validate checks the invariants of a transaction row
func (t *Transaction) Validate() error {
	if t.BuyerID == t.SellerID {
		return shared.ErrBuyerIsSeller
	}
	if !t.Amount.IsPositive() {
		return shared.ErrBidAmountInvalid
	}
	return nil
}

// Describe renders the human-readable summary used in notifications
func (t *Transaction) Describe(buyer, title, seller string) string {
	return fmt.Sprintf("Transaction #%s - %s bought %s from %s", t.ID, buyer, title, seller)
}
