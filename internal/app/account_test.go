package app

import (
	"context"
	"testing"
	"time"

	"big4-auction-service/internal/adapters/memory"
	"big4-auction-service/internal/domain/shared"
	"big4-auction-service/internal/ports/inbound"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newAccountService() (*AccountService, *memory.Store) {
	store := memory.NewStore()
	svc := NewAccountService(AccountServiceParams{
		UserRepo:   store.Repositories().Users,
		BcryptCost: bcrypt.MinCost,
		Clock:      func() time.Time { return epoch },
		Logger:     zerolog.Nop(),
	})
	return svc, store
}

func registration(name string) inbound.RegisterRequest {
	return inbound.RegisterRequest{
		Username:    name,
		Email:       name + "@Example.com",
		Password:    "correct horse",
		FullName:    "Test " + name,
		PhoneNumber: "+1-555-" + name,
	}
}

func TestRegisterAndAuthenticate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, _ := newAccountService()

	user, err := svc.Register(ctx, registration("alice"))
	require.NoError(t, err)
	require.Equal(t, "alice@example.com", user.Email)
	require.NotEqual(t, "correct horse", user.PasswordHash)
	require.Equal(t, epoch, user.RegistrationDate)

	got, err := svc.Authenticate(ctx, " ALICE@example.com ", "correct horse")
	require.NoError(t, err)
	require.Equal(t, user.ID, got.ID)

	_, err = svc.Authenticate(ctx, "alice@example.com", "wrong password")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)

	_, err = svc.Authenticate(ctx, "nobody@example.com", "correct horse")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestRegisterRejects(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(r *inbound.RegisterRequest)
		wantErr error
	}{
		{name: "short password", mutate: func(r *inbound.RegisterRequest) { r.Password = "short" }, wantErr: shared.ErrPasswordTooShort},
		{name: "bad email", mutate: func(r *inbound.RegisterRequest) { r.Email = "not-an-email" }, wantErr: shared.ErrInvalidEmail},
		{name: "missing username", mutate: func(r *inbound.RegisterRequest) { r.Username = " " }, wantErr: shared.ErrUsernameRequired},
		{name: "missing phone", mutate: func(r *inbound.RegisterRequest) { r.PhoneNumber = "" }, wantErr: shared.ErrPhoneNumberRequired},
		{name: "duplicate email", mutate: func(r *inbound.RegisterRequest) { r.Email = "taken@example.com" }, wantErr: shared.ErrDuplicateUser},
	}

	for _, tt := range tests {

		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctx := context.Background()
			svc, _ := newAccountService()
			existing := registration("taken")
			existing.Email = "taken@example.com"
			_, err := svc.Register(ctx, existing)
			require.NoError(t, err)

			req := registration("newcomer")
			tt.mutate(&req)
			_, err = svc.Register(ctx, req)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestCompleteRegistration(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc, store := newAccountService()
	users := store.Repositories().Users

	user, err := svc.Register(ctx, registration("alice"))
	require.NoError(t, err)

	_, err = svc.CompleteRegistration(ctx, inbound.CompleteRegistrationRequest{CustomerID: "cus_123"})
	require.ErrorIs(t, err, shared.ErrCustomerNotLinked)

	customer := "cus_123"
	user.PaymentCustomerID = &customer
	require.NoError(t, users.Update(ctx, user))

	address := " 1 Main St "
	done, err := svc.CompleteRegistration(ctx, inbound.CompleteRegistrationRequest{
		CustomerID: customer,
		FullName:   "Alice Liddell",
		Address:    &address,
	})
	require.NoError(t, err)
	require.Equal(t, "Alice Liddell", done.FullName)
	require.Equal(t, "1 Main St", *done.Address)
	require.Equal(t, user.PhoneNumber, done.PhoneNumber)

	byCustomer, err := svc.GetUserByCustomer(ctx, customer)
	require.NoError(t, err)
	require.Equal(t, "Alice Liddell", byCustomer.FullName)
}

func TestDeleteUserCascades(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	seller := f.user(t, "alice")
	bidder := f.user(t, "bob")
	item := f.item(t, seller.ID, 10, 20)
	require.NoError(t, f.bid(item.ID, bidder.ID, 15, epoch))

	svc := NewAccountService(AccountServiceParams{UserRepo: f.repos.Users, Logger: zerolog.Nop()})
	require.NoError(t, svc.DeleteUser(f.ctx, seller.ID))

	_, err := svc.GetUser(f.ctx, seller.ID)
	require.ErrorIs(t, err, shared.ErrUserNotFound)
	_, err = f.listing.GetItem(f.ctx, item.ID)
	require.ErrorIs(t, err, shared.ErrItemNotFound)

	require.ErrorIs(t, svc.DeleteUser(f.ctx, seller.ID), shared.ErrUserNotFound)
}

func TestDeleteLeadingBidderRestoresPreviousHighBid(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	seller := f.user(t, "alice")
	bob := f.user(t, "bob")
	carol := f.user(t, "carol")
	dave := f.user(t, "dave")
	item := f.item(t, seller.ID, 10, 20)
	require.NoError(t, f.bid(item.ID, bob.ID, 12, epoch))
	require.NoError(t, f.bid(item.ID, carol.ID, 30, epoch.Add(time.Second)))

	svc := NewAccountService(AccountServiceParams{UserRepo: f.repos.Users, Logger: zerolog.Nop()})
	require.NoError(t, svc.DeleteUser(f.ctx, carol.ID))

	stored, err := f.listing.GetItem(f.ctx, item.ID)
	require.NoError(t, err)
	require.True(t, stored.CurrentBid.Equal(decimal.NewFromInt(12)))
	require.Equal(t, bob.ID, *stored.HighBidderID)

	highest, err := f.bids.GetHighestBid(f.ctx, item.ID)
	require.NoError(t, err)
	require.Equal(t, bob.ID, highest.BidderID)

	// The next bid is checked against the restored high bid
	require.NoError(t, f.bid(item.ID, dave.ID, 13, epoch.Add(2*time.Second)))

	require.NoError(t, svc.DeleteUser(f.ctx, dave.ID))
	require.NoError(t, svc.DeleteUser(f.ctx, bob.ID))
	stored, err = f.listing.GetItem(f.ctx, item.ID)
	require.NoError(t, err)
	require.True(t, stored.CurrentBid.Equal(decimal.NewFromInt(10)))
	require.Nil(t, stored.HighBidderID)
	require.False(t, stored.HasBids())

	// With no bids left the first bid may match the starting bid again
	require.NoError(t, f.bid(item.ID, f.user(t, "erin").ID, 10, epoch.Add(3*time.Second)))
}
