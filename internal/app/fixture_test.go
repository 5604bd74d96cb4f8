package app

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"big4-auction-service/internal/adapters/memory"
	"big4-auction-service/internal/domain/account"
	"big4-auction-service/internal/domain/listing"
	"big4-auction-service/internal/ports/inbound"
	"big4-auction-service/internal/ports/outbound"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

type fixture struct {
	ctx        context.Context
	clock      *testClock
	repos      outbound.Repositories
	listing    *ListingService
	bids       *BidService
	settlement *SettlementService
	category   uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	clock := &testClock{now: epoch}
	repos := memory.NewStore().Repositories()
	logger := zerolog.Nop()

	f := &fixture{
		ctx:   context.Background(),
		clock: clock,
		repos: repos,
		listing: NewListingService(ListingServiceParams{
			ItemRepo:          repos.Items,
			UserRepo:          repos.Users,
			CategoryRepo:      repos.Categories,
			PaymentMethodRepo: repos.PaymentMethods,
			Clock:             clock.Now,
			Logger:            logger,
		}),
		bids: NewBidService(BidServiceParams{
			BidRepo:          repos.Bids,
			ItemRepo:         repos.Items,
			UserRepo:         repos.Users,
			NotificationRepo: repos.Notifications,
			MaxRetries:       5,
			Clock:            clock.Now,
			Logger:           logger,
		}),
		settlement: NewSettlementService(SettlementServiceParams{
			ItemRepo:          repos.Items,
			BidRepo:           repos.Bids,
			SettlementRepo:    repos.Settlements,
			PaymentMethodRepo: repos.PaymentMethods,
			NotificationRepo:  repos.Notifications,
			Clock:             clock.Now,
			Logger:            logger,
		}),
	}

	category, err := f.listing.CreateCategory(f.ctx, "Cameras")
	require.NoError(t, err)
	f.category = category.ID
	return f
}

func (f *fixture) user(t *testing.T, name string) *account.User {
	t.Helper()

	u := &account.User{
		ID:               uuid.New(),
		Username:         name,
		Email:            fmt.Sprintf("%s@example.com", name),
		FullName:         name,
		PhoneNumber:      fmt.Sprintf("+1-555-%s", name),
		RegistrationDate: epoch,
	}
	require.NoError(t, f.repos.Users.Create(f.ctx, u))
	return u
}

// item lists an hour-long auction that opened a minute before epoch
func (f *fixture) item(t *testing.T, seller uuid.UUID, starting, reserve int64) *listing.Item {
	t.Helper()

	item, err := f.listing.CreateItem(f.ctx, inbound.CreateItemRequest{
		SellerID:     seller,
		CategoryID:   f.category,
		Title:        "Leica M6",
		StartTime:    epoch.Add(-time.Minute),
		EndTime:      epoch.Add(time.Hour),
		StartingBid:  decimal.NewFromInt(starting),
		ReservePrice: decimal.NewFromInt(reserve),
	})
	require.NoError(t, err)
	return item
}

func (f *fixture) bid(itemID, bidder uuid.UUID, amount int64, at time.Time) error {
	_, err := f.bids.PlaceBid(f.ctx, inbound.PlaceBidRequest{
		ItemID:   itemID,
		BidderID: bidder,
		Amount:   decimal.NewFromInt(amount),
		At:       at,
	})
	return err
}
