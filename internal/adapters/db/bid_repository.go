package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"big4-auction-service/internal/domain/bid"
	"big4-auction-service/internal/domain/shared"

	"github.com/google/uuid"
)

// BidRepository implements the bid repository interface
type BidRepository struct {
	conn *Connection
}

// NewBidRepository creates a new bid repository
func NewBidRepository(conn *Connection) *BidRepository {
	return &BidRepository{conn: conn}
}

// GetByItemID retrieves all bids for an item, highest first
func (r *BidRepository) GetByItemID(ctx context.Context, itemID uuid.UUID) ([]*bid.Bid, error) {
	query := `
		SELECT id, item_id, bidder_id, amount, placed_at
		FROM bids
		WHERE item_id = $1
		ORDER BY amount DESC, placed_at ASC
	`

	rows, err := r.conn.GetDB().QueryContext(ctx, query, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to get bids: %w", err)
	}
	defer rows.Close()

	bids := []*bid.Bid{}
	for rows.Next() {
		var b bid.Bid
		if err := rows.Scan(&b.ID, &b.ItemID, &b.BidderID, &b.Amount, &b.PlacedAt); err != nil {
			return nil, fmt.Errorf("failed to scan bid: %w", err)
		}
		bids = append(bids, &b)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating bids: %w", err)
	}

	return bids, nil
}

// GetHighestBid retrieves the highest bid for an item
func (r *BidRepository) GetHighestBid(ctx context.Context, itemID uuid.UUID) (*bid.Bid, error) {
	query := `
		SELECT id, item_id, bidder_id, amount, placed_at
		FROM bids
		WHERE item_id = $1
		ORDER BY amount DESC, placed_at ASC
		LIMIT 1
	`

	var b bid.Bid
	err := r.conn.GetDB().QueryRowContext(ctx, query, itemID).Scan(&b.ID, &b.ItemID, &b.BidderID, &b.Amount, &b.PlacedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, shared.ErrNoBidsFound
		}
		return nil, fmt.Errorf("failed to get highest bid: %w", err)
	}

	return &b, nil
}

/*
PlaceBidWithOCC places a bid using optimistic concurrency control.
 1. Insert the bid inside a transaction
 2. Move the item's current bid only if its version is still expectedVersion
    and it is still active
 3. Roll back with ErrConcurrentUpdate when another writer got there first
*/
func (r *BidRepository) PlaceBidWithOCC(ctx context.Context, newBid *bid.Bid, expectedVersion int64) error {
	return r.conn.ExecuteTransaction(ctx, func(tx *sql.Tx) error {
		updateQuery := `
			UPDATE items
			SET current_bid = $2, high_bidder_id = $3, updated_at = $4, version = version + 1
			WHERE id = $1 AND version = $5 AND status = 'active'
		`

		result, err := tx.ExecContext(ctx, updateQuery,
			newBid.ItemID,
			newBid.Amount,
			newBid.BidderID,
			newBid.PlacedAt,
			expectedVersion,
		)
		if err != nil {
			return fmt.Errorf("failed to update item bid: %w", err)
		}
		if err := checkAffected(result, shared.ErrConcurrentUpdate); err != nil {
			return err
		}

		bidQuery := `
			INSERT INTO bids (id, item_id, bidder_id, amount, placed_at)
			VALUES ($1, $2, $3, $4, $5)
		`

		_, err = tx.ExecContext(ctx, bidQuery,
			newBid.ID,
			newBid.ItemID,
			newBid.BidderID,
			newBid.Amount,
			newBid.PlacedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert bid: %w", err)
		}

		return nil
	})
}
