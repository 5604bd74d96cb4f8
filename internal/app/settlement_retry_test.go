package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"big4-auction-service/internal/domain/account"
	"big4-auction-service/internal/domain/bid"
	"big4-auction-service/internal/domain/catalog"
	"big4-auction-service/internal/domain/listing"
	"big4-auction-service/internal/domain/settlement"
	"big4-auction-service/internal/domain/shared"
	"big4-auction-service/internal/mocks"
	"big4-auction-service/internal/ports/inbound"
	"big4-auction-service/internal/ports/outbound"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type settlementMocks struct {
	items          *mocks.MockItemRepository
	bids           *mocks.MockBidRepository
	settlements    *mocks.MockSettlementRepository
	paymentMethods *mocks.MockPaymentMethodRepository
	notifications  *mocks.MockNotificationRepository
	broadcaster    *mocks.MockBroadcaster
}

func newMockedSettlement(t *testing.T, maxRetries int) (*SettlementService, settlementMocks) {
	ctrl := gomock.NewController(t)
	m := settlementMocks{
		items:          mocks.NewMockItemRepository(ctrl),
		bids:           mocks.NewMockBidRepository(ctrl),
		settlements:    mocks.NewMockSettlementRepository(ctrl),
		paymentMethods: mocks.NewMockPaymentMethodRepository(ctrl),
		notifications:  mocks.NewMockNotificationRepository(ctrl),
		broadcaster:    mocks.NewMockBroadcaster(ctrl),
	}
	svc := NewSettlementService(SettlementServiceParams{
		ItemRepo:          m.items,
		BidRepo:           m.bids,
		SettlementRepo:    m.settlements,
		PaymentMethodRepo: m.paymentMethods,
		NotificationRepo:  m.notifications,
		Broadcaster:       m.broadcaster,
		MaxRetries:        maxRetries,
		Clock:             func() time.Time { return epoch },
		Logger:            zerolog.Nop(),
	})
	return svc, m
}

func closableItem(seller uuid.UUID, version int64, leader *uuid.UUID, current int64) *listing.Item {
	return &listing.Item{
		ID:           uuid.MustParse("7b0f5a52-2d43-4d8a-9d0e-8f3f2c1f4a10"),
		SellerID:     seller,
		Title:        "Leica M6",
		StartTime:    epoch.Add(-2 * time.Hour),
		EndTime:      epoch.Add(-time.Minute),
		StartingBid:  decimal.NewFromInt(10),
		ReservePrice: decimal.NewFromInt(20),
		CurrentBid:   decimal.NewFromInt(current),
		HighBidderID: leader,
		Status:       listing.StatusActive,
		Version:      version,
	}
}

func TestCloseItemRetriesWhenABidLandsMidClose(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, m := newMockedSettlement(t, 3)
	seller, bob, carol := uuid.New(), uuid.New(), uuid.New()
	itemID := closableItem(seller, 0, nil, 10).ID
	method := &catalog.PaymentMethod{ID: uuid.New(), Label: "card"}

	bobBid := &bid.Bid{ID: uuid.New(), ItemID: itemID, BidderID: bob, Amount: decimal.NewFromInt(25), PlacedAt: epoch.Add(-30 * time.Minute)}
	carolBid := &bid.Bid{ID: uuid.New(), ItemID: itemID, BidderID: carol, Amount: decimal.NewFromInt(30), PlacedAt: epoch.Add(-2 * time.Minute)}

	gomock.InOrder(
		m.items.EXPECT().GetByID(gomock.Any(), itemID).Return(closableItem(seller, 1, &bob, 25), nil),
		m.bids.EXPECT().GetByItemID(gomock.Any(), itemID).Return([]*bid.Bid{bobBid}, nil),
		m.paymentMethods.EXPECT().EnsureByLabel(gomock.Any(), "card").Return(method, nil),
		m.settlements.EXPECT().CloseItemWithOCC(gomock.Any(), itemID, int64(1), listing.StatusSold, gomock.Any()).
			Return(shared.ErrConcurrentUpdate),

		m.items.EXPECT().GetByID(gomock.Any(), itemID).Return(closableItem(seller, 2, &carol, 30), nil),
		m.bids.EXPECT().GetByItemID(gomock.Any(), itemID).Return([]*bid.Bid{bobBid, carolBid}, nil),
		m.paymentMethods.EXPECT().EnsureByLabel(gomock.Any(), "card").Return(method, nil),
		m.settlements.EXPECT().CloseItemWithOCC(gomock.Any(), itemID, int64(2), listing.StatusSold, gomock.Any()).
			DoAndReturn(func(_ context.Context, _ uuid.UUID, _ int64, _ listing.Status, tx *settlement.Transaction) error {
				require.Equal(t, carol, tx.BuyerID)
				require.Equal(t, seller, tx.SellerID)
				require.Equal(t, method.ID, tx.PaymentMethodID)
				require.True(t, tx.Amount.Equal(decimal.NewFromInt(30)))
				return nil
			}),
	)
	m.notifications.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil).Times(2)
	m.broadcaster.EXPECT().Publish(gomock.Any(), itemID, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ uuid.UUID, event outbound.Event) error {
			require.Equal(t, outbound.EventTypeItemClosed, event.Type)
			require.Equal(t, string(listing.StatusSold), event.Data["status"])
			return nil
		})

	outcome, err := svc.CloseItem(ctx, itemID, epoch)
	require.NoError(t, err)
	require.True(t, outcome.Sold())
	require.Equal(t, carol, *outcome.WinnerID)
	require.True(t, outcome.FinalPrice.Equal(decimal.NewFromInt(30)))
}

func TestCloseItemGivesUpAfterRetries(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, m := newMockedSettlement(t, 2)
	item := closableItem(uuid.New(), 4, nil, 10)

	// One initial attempt plus two retries
	m.items.EXPECT().GetByID(gomock.Any(), item.ID).
		DoAndReturn(func(context.Context, uuid.UUID) (*listing.Item, error) {
			return closableItem(item.SellerID, 4, nil, 10), nil
		}).Times(3)
	m.bids.EXPECT().GetByItemID(gomock.Any(), item.ID).Return(nil, nil).Times(3)
	m.settlements.EXPECT().CloseItemWithOCC(gomock.Any(), item.ID, int64(4), listing.StatusExpired, nil).
		Return(shared.ErrConcurrentUpdate).Times(3)

	_, err := svc.CloseItem(ctx, item.ID, epoch)
	require.ErrorIs(t, err, shared.ErrConcurrentUpdate)
}

func TestListingSchedulesAndCancelsCloses(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	scheduler := mocks.NewMockCloseScheduler(gomock.NewController(t))
	f.listing.SetScheduler(scheduler)
	seller := f.user(t, "alice")

	end := epoch.Add(time.Hour)
	scheduler.EXPECT().Schedule(gomock.Any(), gomock.Any(), end).Return(nil)
	item, err := f.listing.CreateItem(f.ctx, inbound.CreateItemRequest{
		SellerID:     seller.ID,
		CategoryID:   f.category,
		Title:        "Hasselblad 500C",
		StartTime:    epoch,
		EndTime:      end,
		StartingBid:  decimal.NewFromInt(100),
		ReservePrice: decimal.NewFromInt(100),
	})
	require.NoError(t, err)

	scheduler.EXPECT().Cancel(gomock.Any(), item.ID).Return(nil)
	require.NoError(t, f.listing.DeleteItem(f.ctx, item.ID, seller.ID))
}

func TestStoreFailuresPropagate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	ctrl := gomock.NewController(t)
	errStore := errors.New("store unavailable")

	users := mocks.NewMockUserRepository(ctrl)
	feedbackRepo := mocks.NewMockFeedbackRepository(ctrl)
	reports := mocks.NewMockReportRepository(ctrl)
	categories := mocks.NewMockCategoryRepository(ctrl)

	feedbackSvc := NewFeedbackService(FeedbackServiceParams{
		FeedbackRepo: feedbackRepo,
		ReportRepo:   reports,
		UserRepo:     users,
		Clock:        func() time.Time { return epoch },
		Logger:       zerolog.Nop(),
	})
	listingSvc := NewListingService(ListingServiceParams{CategoryRepo: categories, Logger: zerolog.Nop()})

	alice, bob := uuid.New(), uuid.New()
	users.EXPECT().GetByID(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, id uuid.UUID) (*account.User, error) {
			return &account.User{ID: id}, nil
		}).AnyTimes()

	feedbackRepo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(errStore)
	_, err := feedbackSvc.SubmitFeedback(ctx, inbound.SubmitFeedbackRequest{UserID: alice, Rating: 5, Comment: "great"})
	require.ErrorIs(t, err, errStore)

	reports.EXPECT().Create(gomock.Any(), gomock.Any()).Return(shared.ErrDuplicateReport)
	_, err = feedbackSvc.FileReport(ctx, inbound.FileReportRequest{ReporterID: alice, ReportedUserID: bob, Description: "no-show"})
	require.ErrorIs(t, err, shared.ErrDuplicateReport)

	reports.EXPECT().ListByReportedUser(gomock.Any(), bob).Return(nil, errStore)
	_, err = feedbackSvc.ListReports(ctx, bob)
	require.ErrorIs(t, err, errStore)

	categories.EXPECT().Create(gomock.Any(), gomock.Any()).Return(errStore)
	_, err = listingSvc.CreateCategory(ctx, "Lenses")
	require.ErrorIs(t, err, errStore)
}
