package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"big4-auction-service/internal/domain/catalog"
	"big4-auction-service/internal/domain/shared"

	"github.com/google/uuid"
)

// CategoryRepository implements the category repository interface
type CategoryRepository struct {
	conn *Connection
}

// NewCategoryRepository creates a new category repository
func NewCategoryRepository(conn *Connection) *CategoryRepository {
	return &CategoryRepository{conn: conn}
}

func (r *CategoryRepository) Create(ctx context.Context, category *catalog.Category) error {
	_, err := r.conn.GetDB().ExecContext(ctx,
		`INSERT INTO categories (id, name) VALUES ($1, $2)`,
		category.ID, category.Name)
	if err != nil {
		return fmt.Errorf("failed to create category: %w", err)
	}
	return nil
}

func (r *CategoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*catalog.Category, error) {
	var c catalog.Category
	err := r.conn.GetDB().QueryRowContext(ctx,
		`SELECT id, name FROM categories WHERE id = $1`, id).Scan(&c.ID, &c.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, shared.ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return &c, nil
}

func (r *CategoryRepository) List(ctx context.Context) ([]*catalog.Category, error) {
	rows, err := r.conn.GetDB().QueryContext(ctx, `SELECT id, name FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	categories := []*catalog.Category{}
	for rows.Next() {
		var c catalog.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}
	return categories, nil
}

// Delete removes the category; its items go with it
func (r *CategoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.conn.GetDB().ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	return checkAffected(result, shared.ErrCategoryNotFound)
}

// PaymentMethodRepository implements the payment method repository interface
type PaymentMethodRepository struct {
	conn *Connection
}

// NewPaymentMethodRepository creates a new payment method repository
func NewPaymentMethodRepository(conn *Connection) *PaymentMethodRepository {
	return &PaymentMethodRepository{conn: conn}
}

func (r *PaymentMethodRepository) Create(ctx context.Context, method *catalog.PaymentMethod) error {
	_, err := r.conn.GetDB().ExecContext(ctx,
		`INSERT INTO payment_methods (id, label) VALUES ($1, $2)`,
		method.ID, method.Label)
	if err != nil {
		return fmt.Errorf("failed to create payment method: %w", err)
	}
	return nil
}

func (r *PaymentMethodRepository) GetByID(ctx context.Context, id uuid.UUID) (*catalog.PaymentMethod, error) {
	var m catalog.PaymentMethod
	err := r.conn.GetDB().QueryRowContext(ctx,
		`SELECT id, label FROM payment_methods WHERE id = $1`, id).Scan(&m.ID, &m.Label)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, shared.ErrPaymentMethodNotFound
		}
		return nil, fmt.Errorf("failed to get payment method: %w", err)
	}
	return &m, nil
}

func (r *PaymentMethodRepository) List(ctx context.Context) ([]*catalog.PaymentMethod, error) {
	rows, err := r.conn.GetDB().QueryContext(ctx, `SELECT id, label FROM payment_methods ORDER BY label`)
	if err != nil {
		return nil, fmt.Errorf("failed to list payment methods: %w", err)
	}
	defer rows.Close()

	methods := []*catalog.PaymentMethod{}
	for rows.Next() {
		var m catalog.PaymentMethod
		if err := rows.Scan(&m.ID, &m.Label); err != nil {
			return nil, fmt.Errorf("failed to scan payment method: %w", err)
		}
		methods = append(methods, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating payment methods: %w", err)
	}
	return methods, nil
}

// EnsureByLabel inserts the label if missing and returns the stored row
func (r *PaymentMethodRepository) EnsureByLabel(ctx context.Context, label string) (*catalog.PaymentMethod, error) {
	query := `
		INSERT INTO payment_methods (id, label) VALUES ($1, $2)
		ON CONFLICT (label) DO UPDATE SET label = EXCLUDED.label
		RETURNING id, label
	`

	var m catalog.PaymentMethod
	if err := r.conn.GetDB().QueryRowContext(ctx, query, uuid.New(), label).Scan(&m.ID, &m.Label); err != nil {
		return nil, fmt.Errorf("failed to ensure payment method: %w", err)
	}
	return &m, nil
}
