package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"big4-auction-service/internal/domain/listing"
	"big4-auction-service/internal/domain/shared"
	"big4-auction-service/internal/ports/outbound"

	"github.com/google/uuid"
)

const itemColumns = `id, seller_id, category_id, title, slug, description, start_time, end_time,
	starting_bid, reserve_price, current_bid, high_bidder_id, status, version, created_at, updated_at`

// ItemRepository implements the item repository interface
type ItemRepository struct {
	conn *Connection
}

// NewItemRepository creates a new item repository
func NewItemRepository(conn *Connection) *ItemRepository {
	return &ItemRepository{conn: conn}
}

func scanItem(row interface{ Scan(...interface{}) error }) (*listing.Item, error) {
	var item listing.Item
	err := row.Scan(
		&item.ID,
		&item.SellerID,
		&item.CategoryID,
		&item.Title,
		&item.Slug,
		&item.Description,
		&item.StartTime,
		&item.EndTime,
		&item.StartingBid,
		&item.ReservePrice,
		&item.CurrentBid,
		&item.HighBidderID,
		&item.Status,
		&item.Version,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *ItemRepository) Create(ctx context.Context, item *listing.Item) error {
	query := `
		INSERT INTO items (` + itemColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`

	_, err := r.conn.GetDB().ExecContext(ctx, query,
		item.ID,
		item.SellerID,
		item.CategoryID,
		item.Title,
		item.Slug,
		item.Description,
		item.StartTime,
		item.EndTime,
		item.StartingBid,
		item.ReservePrice,
		item.CurrentBid,
		item.HighBidderID,
		item.Status,
		item.Version,
		item.CreatedAt,
		item.UpdatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: seller or category does not exist", shared.ErrNotFound)
		}
		return fmt.Errorf("failed to create item: %w", err)
	}

	return nil
}

func (r *ItemRepository) GetByID(ctx context.Context, id uuid.UUID) (*listing.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE id = $1`

	item, err := scanItem(r.conn.GetDB().QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, shared.ErrItemNotFound
		}
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	return item, nil
}

// List retrieves items matching filter, newest first
func (r *ItemRepository) List(ctx context.Context, filter outbound.ItemFilter) ([]*listing.Item, error) {
	var (
		conds []string
		args  []interface{}
	)
	if filter.Status != nil {
		args = append(args, *filter.Status)
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.CategoryID != nil {
		args = append(args, *filter.CategoryID)
		conds = append(conds, fmt.Sprintf("category_id = $%d", len(args)))
	}
	if filter.SellerID != nil {
		args = append(args, *filter.SellerID)
		conds = append(conds, fmt.Sprintf("seller_id = $%d", len(args)))
	}

	query := `SELECT ` + itemColumns + ` FROM items`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY created_at DESC`
	if filter.PageSize > 0 {
		page := filter.Page
		if page < 1 {
			page = 1
		}
		args = append(args, filter.PageSize, (page-1)*filter.PageSize)
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	}

	rows, err := r.conn.GetDB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	defer rows.Close()

	items := []*listing.Item{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating items: %w", err)
	}
	return items, nil
}

// Update writes the editable columns. Bid columns are only touched while no
// bid exists, and the write is guarded by version like bid placement.
func (r *ItemRepository) Update(ctx context.Context, item *listing.Item) error {
	query := `
		UPDATE items
		SET title = $2, slug = $3, description = $4, category_id = $5,
		    start_time = $6, end_time = $7, starting_bid = $8, reserve_price = $9,
		    current_bid = CASE WHEN high_bidder_id IS NULL THEN $8 ELSE current_bid END,
		    updated_at = $10, version = version + 1
		WHERE id = $1 AND version = $11 AND status = 'active'
	`

	result, err := r.conn.GetDB().ExecContext(ctx, query,
		item.ID,
		item.Title,
		item.Slug,
		item.Description,
		item.CategoryID,
		item.StartTime,
		item.EndTime,
		item.StartingBid,
		item.ReservePrice,
		item.UpdatedAt,
		item.Version,
	)
	if err != nil {
		return fmt.Errorf("failed to update item: %w", err)
	}
	if err := checkAffected(result, shared.ErrConcurrentUpdate); err != nil {
		return err
	}
	item.Version++
	return nil
}

// Delete removes the item; images, bids and its transaction cascade
func (r *ItemRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.conn.GetDB().ExecContext(ctx, `DELETE FROM items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}
	return checkAffected(result, shared.ErrItemNotFound)
}

func (r *ItemRepository) AddImage(ctx context.Context, image *listing.Image) error {
	_, err := r.conn.GetDB().ExecContext(ctx,
		`INSERT INTO item_images (id, item_id, image_url) VALUES ($1, $2, $3)`,
		image.ID, image.ItemID, image.ImageURL)
	if err != nil {
		if isForeignKeyViolation(err) {
			return shared.ErrItemNotFound
		}
		return fmt.Errorf("failed to add image: %w", err)
	}
	return nil
}

func (r *ItemRepository) ListImages(ctx context.Context, itemID uuid.UUID) ([]*listing.Image, error) {
	rows, err := r.conn.GetDB().QueryContext(ctx,
		`SELECT id, item_id, image_url FROM item_images WHERE item_id = $1`, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to list images: %w", err)
	}
	defer rows.Close()

	images := []*listing.Image{}
	for rows.Next() {
		var img listing.Image
		if err := rows.Scan(&img.ID, &img.ItemID, &img.ImageURL); err != nil {
			return nil, fmt.Errorf("failed to scan image: %w", err)
		}
		images = append(images, &img)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating images: %w", err)
	}
	return images, nil
}
