package app

import (
	"testing"
	"time"

	"big4-auction-service/internal/domain/listing"
	"big4-auction-service/internal/domain/shared"
	"big4-auction-service/internal/ports/inbound"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestCreateItem(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	seller := f.user(t, "alice")

	valid := inbound.CreateItemRequest{
		SellerID:     seller.ID,
		CategoryID:   f.category,
		Title:        "  Rolleiflex 2.8F ",
		StartTime:    epoch,
		EndTime:      epoch.Add(time.Hour),
		StartingBid:  decimal.NewFromInt(100),
		ReservePrice: decimal.NewFromInt(150),
	}

	item, err := f.listing.CreateItem(f.ctx, valid)
	require.NoError(t, err)
	require.Equal(t, "Rolleiflex 2.8F", item.Title)
	require.Equal(t, "rolleiflex-2-8f", item.Slug)
	require.Equal(t, listing.StatusActive, item.Status)
	require.True(t, item.CurrentBid.Equal(item.StartingBid))
	require.False(t, item.HasBids())

	tests := []struct {
		name    string
		mutate  func(r *inbound.CreateItemRequest)
		wantErr error
	}{
		{name: "unknown seller", mutate: func(r *inbound.CreateItemRequest) { r.SellerID = uuid.New() }, wantErr: shared.ErrUserNotFound},
		{name: "unknown category", mutate: func(r *inbound.CreateItemRequest) { r.CategoryID = uuid.New() }, wantErr: shared.ErrCategoryNotFound},
		{name: "reserve below start", mutate: func(r *inbound.CreateItemRequest) { r.ReservePrice = decimal.NewFromInt(50) }, wantErr: shared.ErrReserveBelowStarting},
		{name: "inverted window", mutate: func(r *inbound.CreateItemRequest) { r.EndTime = epoch.Add(-time.Hour) }, wantErr: shared.ErrInvalidTimeWindow},
		{name: "sub-cent starting bid", mutate: func(r *inbound.CreateItemRequest) { r.StartingBid = decimal.RequireFromString("100.001") }, wantErr: shared.ErrAmountPrecision},
		{name: "missing title", mutate: func(r *inbound.CreateItemRequest) { r.Title = "" }, wantErr: shared.ErrTitleRequired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid
			tt.mutate(&req)
			_, err := f.listing.CreateItem(f.ctx, req)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestUpdateItem(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	seller := f.user(t, "alice")
	bidder := f.user(t, "bob")
	item := f.item(t, seller.ID, 10, 20)

	title := "Leica M6 TTL"
	start := decimal.NewFromInt(12)

	_, err := f.listing.UpdateItem(f.ctx, inbound.UpdateItemRequest{
		ItemID:   item.ID,
		CallerID: bidder.ID,
		Title:    &title,
	})
	require.ErrorIs(t, err, shared.ErrNotItemSeller)
	require.ErrorIs(t, err, shared.ErrForbidden)

	updated, err := f.listing.UpdateItem(f.ctx, inbound.UpdateItemRequest{
		ItemID:      item.ID,
		CallerID:    seller.ID,
		Title:       &title,
		StartingBid: &start,
	})
	require.NoError(t, err)
	require.Equal(t, title, updated.Title)

	stored, err := f.listing.GetItem(f.ctx, item.ID)
	require.NoError(t, err)
	require.Equal(t, title, stored.Title)
	require.True(t, stored.CurrentBid.Equal(start))

	require.NoError(t, f.bid(item.ID, bidder.ID, 12, epoch))

	_, err = f.listing.UpdateItem(f.ctx, inbound.UpdateItemRequest{
		ItemID:   item.ID,
		CallerID: seller.ID,
		Title:    &title,
	})
	require.ErrorIs(t, err, shared.ErrItemHasBids)
}

func TestDeleteItem(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	seller := f.user(t, "alice")
	other := f.user(t, "bob")
	item := f.item(t, seller.ID, 10, 20)

	_, err := f.listing.AddImage(f.ctx, item.ID, seller.ID, "https://cdn.example.com/m6.jpg")
	require.NoError(t, err)

	require.ErrorIs(t, f.listing.DeleteItem(f.ctx, item.ID, other.ID), shared.ErrNotItemSeller)
	require.NoError(t, f.listing.DeleteItem(f.ctx, item.ID, seller.ID))

	_, err = f.listing.GetItem(f.ctx, item.ID)
	require.ErrorIs(t, err, shared.ErrItemNotFound)
	_, err = f.listing.ListImages(f.ctx, item.ID)
	require.ErrorIs(t, err, shared.ErrItemNotFound)
}

func TestAddImage(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	seller := f.user(t, "alice")
	item := f.item(t, seller.ID, 10, 20)

	_, err := f.listing.AddImage(f.ctx, item.ID, seller.ID, "not a url")
	require.ErrorIs(t, err, shared.ErrInvalidImageURL)

	img, err := f.listing.AddImage(f.ctx, item.ID, seller.ID, " https://cdn.example.com/m6.jpg ")
	require.NoError(t, err)
	require.Equal(t, "https://cdn.example.com/m6.jpg", img.ImageURL)

	images, err := f.listing.ListImages(f.ctx, item.ID)
	require.NoError(t, err)
	require.Len(t, images, 1)
}

func TestListItems(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	seller := f.user(t, "alice")
	other := f.user(t, "bob")
	for i := 0; i < 3; i++ {
		f.clock.Set(epoch.Add(time.Duration(i) * time.Second))
		f.item(t, seller.ID, 10, 20)
	}
	f.item(t, other.ID, 10, 20)

	all, err := f.listing.ListItems(f.ctx, inbound.ListItemsRequest{})
	require.NoError(t, err)
	require.Len(t, all, 4)

	mine, err := f.listing.ListItems(f.ctx, inbound.ListItemsRequest{SellerID: &seller.ID})
	require.NoError(t, err)
	require.Len(t, mine, 3)

	page, err := f.listing.ListItems(f.ctx, inbound.ListItemsRequest{SellerID: &seller.ID, Page: 2, PageSize: 2})
	require.NoError(t, err)
	require.Len(t, page, 1)

	sold := listing.StatusSold
	none, err := f.listing.ListItems(f.ctx, inbound.ListItemsRequest{Status: &sold})
	require.NoError(t, err)
	require.Empty(t, none)

	bogus := listing.Status("closed")
	_, err = f.listing.ListItems(f.ctx, inbound.ListItemsRequest{Status: &bogus})
	require.ErrorIs(t, err, shared.ErrInvalidStatus)
}

func TestCategoriesAndPaymentMethods(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	seller := f.user(t, "alice")
	item := f.item(t, seller.ID, 10, 20)

	_, err := f.listing.CreateCategory(f.ctx, "   ")
	require.ErrorIs(t, err, shared.ErrCategoryNameRequired)

	cats, err := f.listing.ListCategories(f.ctx)
	require.NoError(t, err)
	require.Len(t, cats, 1)

	require.NoError(t, f.listing.DeleteCategory(f.ctx, f.category))
	_, err = f.listing.GetItem(f.ctx, item.ID)
	require.ErrorIs(t, err, shared.ErrItemNotFound, "deleting a category removes its items")

	card, err := f.listing.CreatePaymentMethod(f.ctx, "card")
	require.NoError(t, err)
	again, err := f.listing.CreatePaymentMethod(f.ctx, " card ")
	require.NoError(t, err)
	require.Equal(t, card.ID, again.ID)

	_, err = f.listing.CreatePaymentMethod(f.ctx, "")
	require.ErrorIs(t, err, shared.ErrPaymentLabelRequired)

	methods, err := f.listing.ListPaymentMethods(f.ctx)
	require.NoError(t, err)
	require.Len(t, methods, 1)
}
