package memory

import (
	"context"
	"fmt"
	"sort"

	"big4-auction-service/internal/domain/bid"
	"big4-auction-service/internal/domain/listing"
	"big4-auction-service/internal/domain/settlement"
	"big4-auction-service/internal/domain/shared"
	"big4-auction-service/internal/ports/outbound"

	"github.com/google/uuid"
)

// ItemRepository is the in-memory item and image table
type ItemRepository struct {
	store *Store
}

func (r *ItemRepository) Create(ctx context.Context, item *listing.Item) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.users[item.SellerID]; !ok {
		return shared.ErrUserNotFound
	}
	if _, ok := r.store.categories[item.CategoryID]; !ok {
		return shared.ErrCategoryNotFound
	}
	r.store.items[item.ID] = copyItem(item)
	return nil
}

func (r *ItemRepository) GetByID(ctx context.Context, id uuid.UUID) (*listing.Item, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	item, ok := r.store.items[id]
	if !ok {
		return nil, fmt.Errorf("get item %s: %w", id, shared.ErrItemNotFound)
	}
	return copyItem(item), nil
}

func (r *ItemRepository) List(ctx context.Context, filter outbound.ItemFilter) ([]*listing.Item, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var out []*listing.Item
	for _, item := range r.store.items {
		if filter.Status != nil && item.Status != *filter.Status {
			continue
		}
		if filter.CategoryID != nil && item.CategoryID != *filter.CategoryID {
			continue
		}
		if filter.SellerID != nil && item.SellerID != *filter.SellerID {
			continue
		}
		out = append(out, copyItem(item))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })

	if filter.PageSize <= 0 {
		return out, nil
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	start := (page - 1) * filter.PageSize
	if start >= len(out) {
		return []*listing.Item{}, nil
	}
	end := start + filter.PageSize
	if end > len(out) {
		end = len(out)
	}
	return out[start:end], nil
}

func (r *ItemRepository) Update(ctx context.Context, item *listing.Item) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	stored, ok := r.store.items[item.ID]
	if !ok {
		return shared.ErrItemNotFound
	}
	if stored.Version != item.Version || !stored.IsActive() {
		return shared.ErrConcurrentUpdate
	}
	item.Version++
	updated := copyItem(item)
	// Bid and status columns are owned by the bidding and settlement paths
	updated.CurrentBid = stored.CurrentBid
	updated.HighBidderID = stored.HighBidderID
	updated.Status = stored.Status
	if !updated.HasBids() {
		updated.CurrentBid = item.StartingBid
	}
	r.store.items[item.ID] = updated
	return nil
}

func (r *ItemRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.items[id]; !ok {
		return shared.ErrItemNotFound
	}
	r.store.deleteItemLocked(id)
	return nil
}

func (r *ItemRepository) AddImage(ctx context.Context, image *listing.Image) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.items[image.ItemID]; !ok {
		return shared.ErrItemNotFound
	}
	img := *image
	r.store.images[image.ItemID] = append(r.store.images[image.ItemID], &img)
	return nil
}

func (r *ItemRepository) ListImages(ctx context.Context, itemID uuid.UUID) ([]*listing.Image, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]*listing.Image, 0, len(r.store.images[itemID]))
	for _, img := range r.store.images[itemID] {
		cp := *img
		out = append(out, &cp)
	}
	return out, nil
}

// BidRepository is the in-memory bid table
type BidRepository struct {
	store *Store
}

// GetByItemID returns bids highest first, earliest first on ties
func (r *BidRepository) GetByItemID(ctx context.Context, itemID uuid.UUID) ([]*bid.Bid, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]*bid.Bid, 0, len(r.store.bids[itemID]))
	for _, b := range r.store.bids[itemID] {
		cp := *b
		out = append(out, &cp)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Outranks(out[j]) })
	return out, nil
}

func (r *BidRepository) GetHighestBid(ctx context.Context, itemID uuid.UUID) (*bid.Bid, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	winner := bid.Winner(r.store.bids[itemID])
	if winner == nil {
		return nil, shared.ErrNoBidsFound
	}
	cp := *winner
	return &cp, nil
}

// PlaceBidWithOCC appends the bid and advances the item only when the item
// is still active at expectedVersion.
func (r *BidRepository) PlaceBidWithOCC(ctx context.Context, b *bid.Bid, expectedVersion int64) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	item, ok := r.store.items[b.ItemID]
	if !ok {
		return shared.ErrItemNotFound
	}
	if item.Version != expectedVersion || !item.IsActive() {
		return shared.ErrConcurrentUpdate
	}

	item.ApplyBid(b.BidderID, b.Amount, b.PlacedAt)
	cp := *b
	r.store.bids[b.ItemID] = append(r.store.bids[b.ItemID], &cp)
	return nil
}

// SettlementRepository is the in-memory transaction table
type SettlementRepository struct {
	store *Store
}

func (r *SettlementRepository) CloseItemWithOCC(ctx context.Context, itemID uuid.UUID, expectedVersion int64, status listing.Status, tx *settlement.Transaction) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	item, ok := r.store.items[itemID]
	if !ok {
		return shared.ErrItemNotFound
	}
	if item.Version != expectedVersion || !item.IsActive() {
		return shared.ErrConcurrentUpdate
	}
	if !item.CanTransition(status) || (status == listing.StatusSold) != (tx != nil) {
		return shared.ErrInvalidStatusChange
	}
	if tx != nil {
		for _, existing := range r.store.transactions {
			if existing.ItemID == itemID {
				return shared.ErrDuplicateSettlement
			}
		}
		cp := *tx
		r.store.transactions[tx.ID] = &cp
	}

	item.Status = status
	item.Version++
	return nil
}

func (r *SettlementRepository) GetTransactionByItemID(ctx context.Context, itemID uuid.UUID) (*settlement.Transaction, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, tx := range r.store.transactions {
		if tx.ItemID == itemID {
			cp := *tx
			return &cp, nil
		}
	}
	return nil, shared.ErrTransactionNotFound
}

func (r *SettlementRepository) ListTransactionsByUser(ctx context.Context, userID uuid.UUID) ([]*settlement.Transaction, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := []*settlement.Transaction{}
	for _, tx := range r.store.transactions {
		if tx.BuyerID == userID || tx.SellerID == userID {
			cp := *tx
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}
