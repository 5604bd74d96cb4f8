package listing

import (
	"net/url"
	"strings"
	"time"
	"unicode"

	"big4-auction-service/internal/domain/shared"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status represents the lifecycle state of an item
type Status string

const (
	StatusActive  Status = "active"
	StatusExpired Status = "expired"
	StatusSold    Status = "sold"
)

// Valid reports whether s is one of the known statuses
func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusExpired, StatusSold:
		return true
	}
	return false
}

// Item is an auction lot with a bidding window
type Item struct {
	ID           uuid.UUID       `json:"id"`
	SellerID     uuid.UUID       `json:"seller_id"`
	CategoryID   uuid.UUID       `json:"category_id"`
	Title        string          `json:"title"`
	Slug         string          `json:"slug"`
	Description  string          `json:"description"`
	StartTime    time.Time       `json:"start_time"`
	EndTime      time.Time       `json:"end_time"`
	StartingBid  decimal.Decimal `json:"starting_bid"`
	ReservePrice decimal.Decimal `json:"reserve_price"`
	CurrentBid   decimal.Decimal `json:"current_bid"`
	HighBidderID *uuid.UUID      `json:"high_bidder_id,omitempty"`
	Status       Status          `json:"status"`
	Version      int64           `json:"version"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

func (i *Item) String() string {
	return i.Title
}

// Validate checks the invariants a listing must satisfy when stored
func (i *Item) Validate() error {
	if strings.TrimSpace(i.Title) == "" {
		return shared.ErrTitleRequired
	}
	if !i.StartTime.Before(i.EndTime) {
		return shared.ErrInvalidTimeWindow
	}
	if !i.StartingBid.IsPositive() {
		return shared.ErrInvalidStartingBid
	}
	if err := shared.CheckMoney(i.StartingBid); err != nil {
		return err
	}
	if err := shared.CheckMoney(i.ReservePrice); err != nil {
		return err
	}
	if i.ReservePrice.LessThan(i.StartingBid) {
		return shared.ErrReserveBelowStarting
	}
	return nil
}

// IsActive returns true while the item has not been closed
func (i *Item) IsActive() bool {
	return i.Status == StatusActive
}

// HasBids returns true once at least one bid was accepted
func (i *Item) HasBids() bool {
	return i.HighBidderID != nil
}

// AcceptsBidsAt returns true if a bid placed at t falls inside [start, end)
func (i *Item) AcceptsBidsAt(t time.Time) bool {
	return i.IsActive() && !t.Before(i.StartTime) && t.Before(i.EndTime)
}

// CanCloseAt returns true when the bidding window is over at t
func (i *Item) CanCloseAt(t time.Time) bool {
	return !t.Before(i.EndTime)
}

// IsAboveMinimum checks amount against the current bid: the first bid may
// match the starting bid, every later bid must exceed the current bid.
func (i *Item) IsAboveMinimum(amount decimal.Decimal) bool {
	if !i.HasBids() {
		return amount.GreaterThanOrEqual(i.StartingBid)
	}
	return amount.GreaterThan(i.CurrentBid)
}

// MeetsReserve reports whether a winning amount is enough to sell
func (i *Item) MeetsReserve(amount decimal.Decimal) bool {
	return amount.GreaterThanOrEqual(i.ReservePrice)
}

// CanTransition reports whether the status may move to next
func (i *Item) CanTransition(next Status) bool {
	return i.Status == StatusActive && (next == StatusExpired || next == StatusSold)
}

// ApplyBid records an accepted bid on the in-memory copy
func (i *Item) ApplyBid(bidderID uuid.UUID, amount decimal.Decimal, at time.Time) {
	i.CurrentBid = amount
	i.HighBidderID = &bidderID
	i.Version++
	i.UpdatedAt = at
}

// Image is a picture of an item; it is deleted together with the item
type Image struct {
	ID       uuid.UUID `json:"id"`
	ItemID   uuid.UUID `json:"item_id"`
	ImageURL string    `json:"image_url"`
}

// Validate checks that the image points at an absolute http(s) URL
func (img *Image) Validate() error {
	u, err := url.Parse(img.ImageURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return shared.ErrInvalidImageURL
	}
	return nil
}

// Slugify builds a URL slug from a title
func Slugify(title string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(title) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			dash = false
		case b.Len() > 0 && !dash:
			b.WriteByte('-')
			dash = true
		}
	}
	slug := strings.TrimSuffix(b.String(), "-")
	if len(slug) > 250 {
		slug = strings.TrimSuffix(slug[:250], "-")
	}
	return slug
}
