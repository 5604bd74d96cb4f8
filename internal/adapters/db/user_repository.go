package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"big4-auction-service/internal/domain/account"
	"big4-auction-service/internal/domain/shared"

	"github.com/google/uuid"
)

const userColumns = `id, username, email, password_hash, full_name, address, phone_number, payment_customer_id, registration_date`

// UserRepository implements the user repository interface
type UserRepository struct {
	conn *Connection
}

// NewUserRepository creates a new user repository
func NewUserRepository(conn *Connection) *UserRepository {
	return &UserRepository{conn: conn}
}

func scanUser(row interface{ Scan(...interface{}) error }) (*account.User, error) {
	var u account.User
	err := row.Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.PasswordHash,
		&u.FullName,
		&u.Address,
		&u.PhoneNumber,
		&u.PaymentCustomerID,
		&u.RegistrationDate,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) Create(ctx context.Context, user *account.User) error {
	query := `
		INSERT INTO users (` + userColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.conn.GetDB().ExecContext(ctx, query,
		user.ID,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.FullName,
		user.Address,
		user.PhoneNumber,
		user.PaymentCustomerID,
		user.RegistrationDate,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return shared.ErrDuplicateUser
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

func (r *UserRepository) getOne(ctx context.Context, where string, arg interface{}) (*account.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE ` + where
	user, err := scanUser(r.conn.GetDB().QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, shared.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*account.User, error) {
	return r.getOne(ctx, "id = $1", id)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*account.User, error) {
	return r.getOne(ctx, "email = $1", email)
}

func (r *UserRepository) GetByPaymentCustomerID(ctx context.Context, customerID string) (*account.User, error) {
	return r.getOne(ctx, "payment_customer_id = $1", customerID)
}

func (r *UserRepository) Update(ctx context.Context, user *account.User) error {
	query := `
		UPDATE users
		SET username = $2, email = $3, password_hash = $4, full_name = $5,
		    address = $6, phone_number = $7, payment_customer_id = $8
		WHERE id = $1
	`

	result, err := r.conn.GetDB().ExecContext(ctx, query,
		user.ID,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.FullName,
		user.Address,
		user.PhoneNumber,
		user.PaymentCustomerID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return shared.ErrDuplicateUser
		}
		return fmt.Errorf("failed to update user: %w", err)
	}

	return checkAffected(result, shared.ErrUserNotFound)
}

// Delete removes the user; foreign keys cascade to everything it owns
// reassignHighBid moves active items led by a deleted bidder back to the
// best remaining bid, or to the starting bid when none is left
const reassignHighBid = `
	UPDATE items SET
		current_bid = COALESCE((SELECT amount FROM bids WHERE item_id = items.id ORDER BY amount DESC, placed_at ASC LIMIT 1), starting_bid),
		high_bidder_id = (SELECT bidder_id FROM bids WHERE item_id = items.id ORDER BY amount DESC, placed_at ASC LIMIT 1),
		version = version + 1,
		updated_at = NOW()
	WHERE high_bidder_id = $1 AND status = 'active'`

// Delete removes the user; the schema cascades to everything referencing it
func (r *UserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.conn.ExecuteTransaction(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("failed to delete user: %w", err)
		}
		if err := checkAffected(result, shared.ErrUserNotFound); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, reassignHighBid, id); err != nil {
			return fmt.Errorf("failed to reassign high bids: %w", err)
		}
		return nil
	})
}
