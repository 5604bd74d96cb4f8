package outbound

//go:generate mockgen -source=repositories.go -destination=../../mocks/mock_repositories.go -package=mocks

import (
	"context"

	"big4-auction-service/internal/domain/account"
	"big4-auction-service/internal/domain/bid"
	"big4-auction-service/internal/domain/catalog"
	"big4-auction-service/internal/domain/feedback"
	"big4-auction-service/internal/domain/listing"
	"big4-auction-service/internal/domain/notification"
	"big4-auction-service/internal/domain/payment"
	"big4-auction-service/internal/domain/settlement"

	"github.com/google/uuid"
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	// Create creates a new user; uniqueness violations return shared.ErrDuplicateUser
	Create(ctx context.Context, user *account.User) error

	// GetByID retrieves a user by ID
	GetByID(ctx context.Context, id uuid.UUID) (*account.User, error)

	// GetByEmail retrieves a user by normalized email
	GetByEmail(ctx context.Context, email string) (*account.User, error)

	// GetByPaymentCustomerID retrieves the user owning a provider customer handle
	GetByPaymentCustomerID(ctx context.Context, customerID string) (*account.User, error)

	// Update updates the mutable profile fields of a user
	Update(ctx context.Context, user *account.User) error

	// Delete deletes a user and everything that references it
	Delete(ctx context.Context, id uuid.UUID) error
}

// CategoryRepository defines the interface for category data operations
type CategoryRepository interface {
	Create(ctx context.Context, category *catalog.Category) error
	GetByID(ctx context.Context, id uuid.UUID) (*catalog.Category, error)
	List(ctx context.Context) ([]*catalog.Category, error)

	// Delete deletes a category and its items
	Delete(ctx context.Context, id uuid.UUID) error
}

// PaymentMethodRepository defines the interface for payment method reference data
type PaymentMethodRepository interface {
	Create(ctx context.Context, method *catalog.PaymentMethod) error
	GetByID(ctx context.Context, id uuid.UUID) (*catalog.PaymentMethod, error)
	List(ctx context.Context) ([]*catalog.PaymentMethod, error)

	// EnsureByLabel returns the method with label, creating it when missing
	EnsureByLabel(ctx context.Context, label string) (*catalog.PaymentMethod, error)
}

// ItemFilter narrows item listings; nil fields match everything
type ItemFilter struct {
	Status     *listing.Status
	CategoryID *uuid.UUID
	SellerID   *uuid.UUID
	Page       int
	PageSize   int
}

// ItemRepository defines the interface for item data operations
type ItemRepository interface {
	// Create creates a new item
	Create(ctx context.Context, item *listing.Item) error

	// GetByID retrieves an item by ID
	GetByID(ctx context.Context, id uuid.UUID) (*listing.Item, error)

	// List retrieves items matching filter, newest first
	List(ctx context.Context, filter ItemFilter) ([]*listing.Item, error)

	// Update updates the editable fields of an active item guarded by its
	// version. On success item.Version holds the new version.
	Update(ctx context.Context, item *listing.Item) error

	// Delete deletes an item with its images, bids and transaction
	Delete(ctx context.Context, id uuid.UUID) error

	// AddImage attaches an image to an item
	AddImage(ctx context.Context, image *listing.Image) error

	// ListImages retrieves the images of an item
	ListImages(ctx context.Context, itemID uuid.UUID) ([]*listing.Image, error)
}

// BidRepository defines the interface for bid data operations
type BidRepository interface {
	// GetByItemID retrieves all bids for an item, highest first
	GetByItemID(ctx context.Context, itemID uuid.UUID) ([]*bid.Bid, error)

	// GetHighestBid retrieves the winning bid for an item
	GetHighestBid(ctx context.Context, itemID uuid.UUID) (*bid.Bid, error)

	// PlaceBidWithOCC stores the bid and moves the item's current bid in one
	// step, provided the item is still active at expectedVersion.
	// Otherwise it returns shared.ErrConcurrentUpdate and stores nothing.
	PlaceBidWithOCC(ctx context.Context, bid *bid.Bid, expectedVersion int64) error
}

// SettlementRepository defines the interface for closing items and their transactions
type SettlementRepository interface {
	// CloseItemWithOCC moves an active item at expectedVersion to status and,
	// when tx is non-nil, records the transaction in the same step.
	CloseItemWithOCC(ctx context.Context, itemID uuid.UUID, expectedVersion int64, status listing.Status, tx *settlement.Transaction) error

	// GetTransactionByItemID retrieves the transaction of a sold item
	GetTransactionByItemID(ctx context.Context, itemID uuid.UUID) (*settlement.Transaction, error)

	// ListTransactionsByUser retrieves transactions where the user bought or sold
	ListTransactionsByUser(ctx context.Context, userID uuid.UUID) ([]*settlement.Transaction, error)
}

// NotificationRepository defines the interface for notification data operations
type NotificationRepository interface {
	Create(ctx context.Context, n *notification.Notification) error
	GetByID(ctx context.Context, id uuid.UUID) (*notification.Notification, error)
	ListByUser(ctx context.Context, userID uuid.UUID, unreadOnly bool) ([]*notification.Notification, error)
	MarkRead(ctx context.Context, id uuid.UUID) error
}

// FeedbackRepository defines the interface for feedback data operations
type FeedbackRepository interface {
	Create(ctx context.Context, f *feedback.Feedback) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*feedback.Feedback, error)
}

// ReportRepository defines the interface for report data operations
type ReportRepository interface {
	// Create stores a report; an existing reporter/reported pair returns shared.ErrDuplicateReport
	Create(ctx context.Context, r *feedback.Report) error
	ListByReportedUser(ctx context.Context, userID uuid.UUID) ([]*feedback.Report, error)
}

// CardLinkRepository stores provider payment methods linked to users
type CardLinkRepository interface {
	// LinkPaymentMethod upserts the link and reports whether it was new
	LinkPaymentMethod(ctx context.Context, link *payment.CardLink) (bool, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*payment.CardLink, error)
}

// Repositories bundles every repository the services need
type Repositories struct {
	Users          UserRepository
	Categories     CategoryRepository
	PaymentMethods PaymentMethodRepository
	Items          ItemRepository
	Bids           BidRepository
	Settlements    SettlementRepository
	Notifications  NotificationRepository
	Feedback       FeedbackRepository
	Reports        ReportRepository
	CardLinks      CardLinkRepository
}
