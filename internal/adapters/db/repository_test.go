package db

import (
	"context"
	"testing"
	"time"

	"big4-auction-service/internal/domain/bid"
	"big4-auction-service/internal/domain/listing"
	"big4-auction-service/internal/domain/settlement"
	"big4-auction-service/internal/domain/shared"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func newMockConnection(t *testing.T) (*Connection, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return &Connection{db: db}, mock
}

func TestPlaceBidWithOCC(t *testing.T) {
	t.Parallel()

	newBid := &bid.Bid{
		ID:       uuid.New(),
		ItemID:   uuid.New(),
		BidderID: uuid.New(),
		Amount:   decimal.RequireFromString("25.50"),
		PlacedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}

	tests := []struct {
		name    string
		expect  func(mock sqlmock.Sqlmock)
		wantErr error
	}{
		{
			name: "version matches",
			expect: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(`UPDATE items`).
					WithArgs(newBid.ItemID, newBid.Amount, newBid.BidderID, newBid.PlacedAt, int64(3)).
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectExec(`INSERT INTO bids`).
					WithArgs(newBid.ID, newBid.ItemID, newBid.BidderID, newBid.Amount, newBid.PlacedAt).
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectCommit()
			},
		},
		{
			name: "another writer moved the version",
			expect: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(`UPDATE items`).
					WithArgs(newBid.ItemID, newBid.Amount, newBid.BidderID, newBid.PlacedAt, int64(3)).
					WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectRollback()
			},
			wantErr: shared.ErrConcurrentUpdate,
		},
	}

	for _, tt := range tests {

		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			conn, mock := newMockConnection(t)
			tt.expect(mock)

			err := NewBidRepository(conn).PlaceBidWithOCC(context.Background(), newBid, 3)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestCloseItemWithOCC(t *testing.T) {
	t.Parallel()

	itemID := uuid.New()
	sale := &settlement.Transaction{
		ID:              uuid.New(),
		ItemID:          itemID,
		BuyerID:         uuid.New(),
		SellerID:        uuid.New(),
		PaymentMethodID: uuid.New(),
		Amount:          decimal.NewFromInt(30),
		CreatedAt:       time.Date(2024, 5, 1, 13, 0, 0, 0, time.UTC),
	}

	tests := []struct {
		name    string
		status  listing.Status
		sale    *settlement.Transaction
		expect  func(mock sqlmock.Sqlmock)
		wantErr error
	}{
		{
			name:   "expires without a sale",
			status: listing.StatusExpired,
			expect: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(`UPDATE items`).
					WithArgs(itemID, listing.StatusExpired, int64(2)).
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectCommit()
			},
		},
		{
			name:   "sells and records the transaction",
			status: listing.StatusSold,
			sale:   sale,
			expect: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(`UPDATE items`).
					WithArgs(itemID, listing.StatusSold, int64(2)).
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectExec(`INSERT INTO transactions`).
					WithArgs(sale.ID, sale.ItemID, sale.BuyerID, sale.SellerID, sale.PaymentMethodID, sale.Amount, sale.CreatedAt).
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectCommit()
			},
		},
		{
			name:   "stale version",
			status: listing.StatusSold,
			sale:   sale,
			expect: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(`UPDATE items`).
					WithArgs(itemID, listing.StatusSold, int64(2)).
					WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectRollback()
			},
			wantErr: shared.ErrConcurrentUpdate,
		},
		{
			name:   "item already has a transaction",
			status: listing.StatusSold,
			sale:   sale,
			expect: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec(`UPDATE items`).
					WithArgs(itemID, listing.StatusSold, int64(2)).
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectExec(`INSERT INTO transactions`).
					WillReturnError(&pq.Error{Code: "23505"})
				mock.ExpectRollback()
			},
			wantErr: shared.ErrDuplicateSettlement,
		},
		{
			name:    "sold without a transaction",
			status:  listing.StatusSold,
			expect:  func(mock sqlmock.Sqlmock) {},
			wantErr: shared.ErrInvalidStatusChange,
		},
		{
			name:    "back to active",
			status:  listing.StatusActive,
			expect:  func(mock sqlmock.Sqlmock) {},
			wantErr: shared.ErrInvalidStatusChange,
		},
	}

	for _, tt := range tests {

		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			conn, mock := newMockConnection(t)
			tt.expect(mock)

			err := NewSettlementRepository(conn).CloseItemWithOCC(context.Background(), itemID, 2, tt.status, tt.sale)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestDeleteUserReassignsHighBids(t *testing.T) {
	t.Parallel()

	userID := uuid.New()

	t.Run("deletes and reassigns in one transaction", func(t *testing.T) {
		conn, mock := newMockConnection(t)
		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM users`).WithArgs(userID).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`UPDATE items SET`).WithArgs(userID).WillReturnResult(sqlmock.NewResult(0, 2))
		mock.ExpectCommit()

		require.NoError(t, NewUserRepository(conn).Delete(context.Background(), userID))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown user", func(t *testing.T) {
		conn, mock := newMockConnection(t)
		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM users`).WithArgs(userID).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		require.ErrorIs(t, NewUserRepository(conn).Delete(context.Background(), userID), shared.ErrUserNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}
