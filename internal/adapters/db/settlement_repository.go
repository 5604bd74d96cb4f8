package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"big4-auction-service/internal/domain/listing"
	"big4-auction-service/internal/domain/settlement"
	"big4-auction-service/internal/domain/shared"

	"github.com/google/uuid"
)

const transactionColumns = `id, item_id, buyer_id, seller_id, payment_method_id, amount, created_at`

// SettlementRepository implements the settlement repository interface
type SettlementRepository struct {
	conn *Connection
}

// NewSettlementRepository creates a new settlement repository
func NewSettlementRepository(conn *Connection) *SettlementRepository {
	return &SettlementRepository{conn: conn}
}

// CloseItemWithOCC flips the item to its terminal status and records the
// sale in one transaction. The unique item_id on transactions backs the
// version guard.
func (r *SettlementRepository) CloseItemWithOCC(ctx context.Context, itemID uuid.UUID, expectedVersion int64, status listing.Status, saleTx *settlement.Transaction) error {
	if status != listing.StatusExpired && status != listing.StatusSold {
		return shared.ErrInvalidStatusChange
	}
	if (status == listing.StatusSold) != (saleTx != nil) {
		return shared.ErrInvalidStatusChange
	}

	return r.conn.ExecuteTransaction(ctx, func(tx *sql.Tx) error {
		updateQuery := `
			UPDATE items
			SET status = $2, version = version + 1, updated_at = NOW()
			WHERE id = $1 AND version = $3 AND status = 'active'
		`

		result, err := tx.ExecContext(ctx, updateQuery, itemID, status, expectedVersion)
		if err != nil {
			return fmt.Errorf("failed to close item: %w", err)
		}
		if err := checkAffected(result, shared.ErrConcurrentUpdate); err != nil {
			return err
		}

		if saleTx == nil {
			return nil
		}

		insertQuery := `
			INSERT INTO transactions (` + transactionColumns + `)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`
		_, err = tx.ExecContext(ctx, insertQuery,
			saleTx.ID,
			saleTx.ItemID,
			saleTx.BuyerID,
			saleTx.SellerID,
			saleTx.PaymentMethodID,
			saleTx.Amount,
			saleTx.CreatedAt,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return shared.ErrDuplicateSettlement
			}
			return fmt.Errorf("failed to insert transaction: %w", err)
		}
		return nil
	})
}

func scanTransaction(row interface{ Scan(...interface{}) error }) (*settlement.Transaction, error) {
	var t settlement.Transaction
	err := row.Scan(&t.ID, &t.ItemID, &t.BuyerID, &t.SellerID, &t.PaymentMethodID, &t.Amount, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *SettlementRepository) GetTransactionByItemID(ctx context.Context, itemID uuid.UUID) (*settlement.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE item_id = $1`
	t, err := scanTransaction(r.conn.GetDB().QueryRowContext(ctx, query, itemID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, shared.ErrTransactionNotFound
		}
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return t, nil
}

func (r *SettlementRepository) ListTransactionsByUser(ctx context.Context, userID uuid.UUID) ([]*settlement.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE buyer_id = $1 OR seller_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.conn.GetDB().QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	txs := []*settlement.Transaction{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txs = append(txs, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions: %w", err)
	}
	return txs, nil
}
