package account

import (
	"strings"
	"time"

	"big4-auction-service/internal/domain/shared"

	"github.com/google/uuid"
)

// User is a registered account. Listings, bids, transactions and the
// side-channel records all reference it by ID.
type User struct {
	ID                uuid.UUID `json:"id"`
	Username          string    `json:"username"`
	Email             string    `json:"email"`
	PasswordHash      string    `json:"-"`
	FullName          string    `json:"full_name"`
	Address           *string   `json:"address,omitempty"`
	PhoneNumber       string    `json:"phone_number"`
	PaymentCustomerID *string   `json:"payment_customer_id,omitempty"`
	RegistrationDate  time.Time `json:"registration_date"`
}

func (u *User) String() string {
	return u.Username
}

// Validate checks the fields every stored user must carry
func (u *User) Validate() error {
	if strings.TrimSpace(u.Username) == "" {
		return shared.ErrUsernameRequired
	}
	if !ValidEmail(u.Email) {
		return shared.ErrInvalidEmail
	}
	if strings.TrimSpace(u.PhoneNumber) == "" {
		return shared.ErrPhoneNumberRequired
	}
	return nil
}

// HasPaymentCustomer returns true once a provider customer handle is attached
func (u *User) HasPaymentCustomer() bool {
	return u.PaymentCustomerID != nil && *u.PaymentCustomerID != ""
}

// ValidEmail performs the shallow local@domain check used at registration
func ValidEmail(email string) bool {
	at := strings.LastIndex(email, "@")
	if at <= 0 || at == len(email)-1 {
		return false
	}
	return !strings.ContainsAny(email, " \t\n") && strings.Contains(email[at+1:], ".")
}

// NormalizeEmail lower-cases and trims an address so uniqueness checks are stable
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
