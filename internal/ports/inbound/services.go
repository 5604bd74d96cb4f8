package inbound

//go:generate mockgen -source=services.go -destination=../../mocks/mock_services.go -package=mocks

import (
	"context"
	"time"

	"big4-auction-service/internal/domain/account"
	"big4-auction-service/internal/domain/bid"
	"big4-auction-service/internal/domain/catalog"
	"big4-auction-service/internal/domain/feedback"
	"big4-auction-service/internal/domain/listing"
	"big4-auction-service/internal/domain/notification"
	"big4-auction-service/internal/domain/payment"
	"big4-auction-service/internal/domain/settlement"
	"big4-auction-service/internal/domain/shared"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BidService defines the interface for bid operations
type BidService interface {
	// PlaceBid places a new bid on an item
	PlaceBid(ctx context.Context, req PlaceBidRequest) (*bid.Bid, error)

	// GetBids retrieves bids for an item
	GetBids(ctx context.Context, itemID uuid.UUID) ([]*bid.Bid, error)

	// GetHighestBid retrieves the highest bid for an item
	GetHighestBid(ctx context.Context, itemID uuid.UUID) (*bid.Bid, error)
}

// SettlementService closes items and exposes their transactions
type SettlementService interface {
	// CloseItem ends bidding on an item; calling it again returns the same outcome
	CloseItem(ctx context.Context, itemID uuid.UUID, at time.Time) (*shared.ClosedOutcome, error)

	GetTransaction(ctx context.Context, itemID uuid.UUID) (*settlement.Transaction, error)
	ListTransactions(ctx context.Context, userID uuid.UUID) ([]*settlement.Transaction, error)
}

// ListingService defines item and catalog operations
type ListingService interface {
	CreateItem(ctx context.Context, req CreateItemRequest) (*listing.Item, error)
	GetItem(ctx context.Context, itemID uuid.UUID) (*listing.Item, error)
	ListItems(ctx context.Context, req ListItemsRequest) ([]*listing.Item, error)
	UpdateItem(ctx context.Context, req UpdateItemRequest) (*listing.Item, error)
	DeleteItem(ctx context.Context, itemID, callerID uuid.UUID) error
	AddImage(ctx context.Context, itemID, callerID uuid.UUID, imageURL string) (*listing.Image, error)
	ListImages(ctx context.Context, itemID uuid.UUID) ([]*listing.Image, error)

	CreateCategory(ctx context.Context, name string) (*catalog.Category, error)
	ListCategories(ctx context.Context) ([]*catalog.Category, error)
	DeleteCategory(ctx context.Context, categoryID uuid.UUID) error

	CreatePaymentMethod(ctx context.Context, label string) (*catalog.PaymentMethod, error)
	ListPaymentMethods(ctx context.Context) ([]*catalog.PaymentMethod, error)
}

// AccountService defines user account operations
type AccountService interface {
	Register(ctx context.Context, req RegisterRequest) (*account.User, error)
	Authenticate(ctx context.Context, email, password string) (*account.User, error)
	GetUser(ctx context.Context, userID uuid.UUID) (*account.User, error)
	GetUserByCustomer(ctx context.Context, customerID string) (*account.User, error)
	CompleteRegistration(ctx context.Context, req CompleteRegistrationRequest) (*account.User, error)
	DeleteUser(ctx context.Context, userID uuid.UUID) error
}

// NotificationService defines notification operations
type NotificationService interface {
	List(ctx context.Context, userID uuid.UUID, unreadOnly bool) ([]*notification.Notification, error)
	MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error
}

// FeedbackService defines feedback and report operations
type FeedbackService interface {
	SubmitFeedback(ctx context.Context, req SubmitFeedbackRequest) (*feedback.Feedback, error)
	ListFeedback(ctx context.Context, userID uuid.UUID) ([]*feedback.Feedback, error)
	FileReport(ctx context.Context, req FileReportRequest) (*feedback.Report, error)
	ListReports(ctx context.Context, userID uuid.UUID) ([]*feedback.Report, error)
}

// PaymentService defines the card setup and webhook operations
type PaymentService interface {
	PublishableKey() string
	CreateSetupIntent(ctx context.Context, userID uuid.UUID) (*payment.SetupIntent, error)
	HandleWebhook(ctx context.Context, payload []byte, signature string) error
}

// request to place a bid
type PlaceBidRequest struct {
	ItemID   uuid.UUID       `json:"item_id"`
	BidderID uuid.UUID       `json:"bidder_id"`
	Amount   decimal.Decimal `json:"amount"`
	// At defaults to the service clock when zero
	At time.Time `json:"at,omitempty"`
}

// request to create an item
type CreateItemRequest struct {
	SellerID     uuid.UUID       `json:"seller_id"`
	CategoryID   uuid.UUID       `json:"category_id"`
	Title        string          `json:"title"`
	Slug         string          `json:"slug,omitempty"`
	Description  string          `json:"description"`
	StartTime    time.Time       `json:"start_time"`
	EndTime      time.Time       `json:"end_time"`
	StartingBid  decimal.Decimal `json:"starting_bid"`
	ReservePrice decimal.Decimal `json:"reserve_price"`
}

// request to list items
type ListItemsRequest struct {
	Status     *listing.Status `json:"status,omitempty"`
	CategoryID *uuid.UUID      `json:"category_id,omitempty"`
	SellerID   *uuid.UUID      `json:"seller_id,omitempty"`
	Page       int             `json:"page"`
	PageSize   int             `json:"page_size"`
}

// request to edit an item before it receives bids; nil fields stay unchanged
type UpdateItemRequest struct {
	ItemID       uuid.UUID        `json:"-"`
	CallerID     uuid.UUID        `json:"-"`
	Title        *string          `json:"title,omitempty"`
	Description  *string          `json:"description,omitempty"`
	CategoryID   *uuid.UUID       `json:"category_id,omitempty"`
	StartTime    *time.Time       `json:"start_time,omitempty"`
	EndTime      *time.Time       `json:"end_time,omitempty"`
	StartingBid  *decimal.Decimal `json:"starting_bid,omitempty"`
	ReservePrice *decimal.Decimal `json:"reserve_price,omitempty"`
}

// request to register an account
type RegisterRequest struct {
	Username    string  `json:"username"`
	Email       string  `json:"email"`
	Password    string  `json:"password"`
	FullName    string  `json:"full_name"`
	Address     *string `json:"address,omitempty"`
	PhoneNumber string  `json:"phone_number"`
}

// request to finish a registration started from the card page
type CompleteRegistrationRequest struct {
	CustomerID  string  `json:"-"`
	FullName    string  `json:"full_name"`
	Address     *string `json:"address,omitempty"`
	PhoneNumber string  `json:"phone_number"`
}

// request to rate a user
type SubmitFeedbackRequest struct {
	UserID  uuid.UUID `json:"-"`
	Rating  int       `json:"rating"`
	Comment string    `json:"comment"`
}

// request to report a user
type FileReportRequest struct {
	ReporterID     uuid.UUID  `json:"-"`
	ReportedUserID uuid.UUID  `json:"reported_user_id"`
	ItemID         *uuid.UUID `json:"item_id,omitempty"`
	Description    string     `json:"description"`
}
