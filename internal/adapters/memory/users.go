package memory

import (
	"context"
	"fmt"

	"big4-auction-service/internal/domain/account"
	"big4-auction-service/internal/domain/shared"

	"github.com/google/uuid"
)

// UserRepository is the in-memory user table
type UserRepository struct {
	store *Store
}

// conflictsLocked reports whether another user already holds a unique field of u
func (r *UserRepository) conflictsLocked(u *account.User) bool {
	for _, other := range r.store.users {
		if other.ID == u.ID {
			continue
		}
		if other.Username == u.Username || other.Email == u.Email || other.PhoneNumber == u.PhoneNumber {
			return true
		}
		if u.HasPaymentCustomer() && other.HasPaymentCustomer() && *other.PaymentCustomerID == *u.PaymentCustomerID {
			return true
		}
	}
	return false
}

func (r *UserRepository) Create(ctx context.Context, user *account.User) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if r.conflictsLocked(user) {
		return shared.ErrDuplicateUser
	}
	r.store.users[user.ID] = copyUser(user)
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*account.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	u, ok := r.store.users[id]
	if !ok {
		return nil, fmt.Errorf("get user %s: %w", id, shared.ErrUserNotFound)
	}
	return copyUser(u), nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*account.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, u := range r.store.users {
		if u.Email == email {
			return copyUser(u), nil
		}
	}
	return nil, shared.ErrUserNotFound
}

func (r *UserRepository) GetByPaymentCustomerID(ctx context.Context, customerID string) (*account.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, u := range r.store.users {
		if u.HasPaymentCustomer() && *u.PaymentCustomerID == customerID {
			return copyUser(u), nil
		}
	}
	return nil, shared.ErrUserNotFound
}

func (r *UserRepository) Update(ctx context.Context, user *account.User) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.users[user.ID]; !ok {
		return shared.ErrUserNotFound
	}
	if r.conflictsLocked(user) {
		return shared.ErrDuplicateUser
	}
	r.store.users[user.ID] = copyUser(user)
	return nil
}

func (r *UserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.users[id]; !ok {
		return shared.ErrUserNotFound
	}
	r.store.deleteUserLocked(id)
	return nil
}
