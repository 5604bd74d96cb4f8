package memory

import (
	"context"
	"sort"

	"big4-auction-service/internal/domain/catalog"
	"big4-auction-service/internal/domain/shared"

	"github.com/google/uuid"
)

// CategoryRepository is the in-memory category table
type CategoryRepository struct {
	store *Store
}

func (r *CategoryRepository) Create(ctx context.Context, category *catalog.Category) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	c := *category
	r.store.categories[c.ID] = &c
	return nil
}

func (r *CategoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*catalog.Category, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	c, ok := r.store.categories[id]
	if !ok {
		return nil, shared.ErrCategoryNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *CategoryRepository) List(ctx context.Context) ([]*catalog.Category, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]*catalog.Category, 0, len(r.store.categories))
	for _, c := range r.store.categories {
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Delete removes the category and cascades to its items
func (r *CategoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.categories[id]; !ok {
		return shared.ErrCategoryNotFound
	}
	for itemID, item := range r.store.items {
		if item.CategoryID == id {
			r.store.deleteItemLocked(itemID)
		}
	}
	delete(r.store.categories, id)
	return nil
}

// PaymentMethodRepository is the in-memory payment method table
type PaymentMethodRepository struct {
	store *Store
}

func (r *PaymentMethodRepository) Create(ctx context.Context, method *catalog.PaymentMethod) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	m := *method
	r.store.paymentMethods[m.ID] = &m
	return nil
}

func (r *PaymentMethodRepository) GetByID(ctx context.Context, id uuid.UUID) (*catalog.PaymentMethod, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	m, ok := r.store.paymentMethods[id]
	if !ok {
		return nil, shared.ErrPaymentMethodNotFound
	}
	cp := *m
	return &cp, nil
}

func (r *PaymentMethodRepository) List(ctx context.Context) ([]*catalog.PaymentMethod, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]*catalog.PaymentMethod, 0, len(r.store.paymentMethods))
	for _, m := range r.store.paymentMethods {
		cp := *m
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out, nil
}

func (r *PaymentMethodRepository) EnsureByLabel(ctx context.Context, label string) (*catalog.PaymentMethod, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, m := range r.store.paymentMethods {
		if m.Label == label {
			cp := *m
			return &cp, nil
		}
	}
	m := &catalog.PaymentMethod{ID: uuid.New(), Label: label}
	r.store.paymentMethods[m.ID] = m
	cp := *m
	return &cp, nil
}
