package shared

import (
	"errors"
	"fmt"
)

// Error classes. Every specific error below wraps exactly one of them.
var (
	ErrValidation      = errors.New("validation error")
	ErrDomainConflict  = errors.New("domain conflict")
	ErrExternalService = errors.New("external service error")
	ErrNotFound        = errors.New("not found")
	ErrForbidden       = errors.New("forbidden")
)

// Domain-specific errors
var (
	// Item errors
	ErrItemNotFound          = fmt.Errorf("%w: item not found", ErrNotFound)
	ErrItemNotActive         = fmt.Errorf("%w: item is not accepting bids", ErrDomainConflict)
	ErrItemStillOpen         = fmt.Errorf("%w: item bidding window has not ended", ErrDomainConflict)
	ErrItemHasBids           = fmt.Errorf("%w: item already has bids", ErrDomainConflict)
	ErrInvalidStatusChange   = fmt.Errorf("%w: invalid item status transition", ErrDomainConflict)
	ErrInvalidStatus         = fmt.Errorf("%w: unknown item status", ErrValidation)
	ErrTitleRequired         = fmt.Errorf("%w: title is required", ErrValidation)
	ErrInvalidTimeWindow     = fmt.Errorf("%w: start time must be before end time", ErrValidation)
	ErrInvalidStartingBid    = fmt.Errorf("%w: starting bid must be greater than 0", ErrValidation)
	ErrReserveBelowStarting  = fmt.Errorf("%w: reserve price must not be below starting bid", ErrValidation)
	ErrAmountPrecision       = fmt.Errorf("%w: amounts carry at most 2 decimal places and must be below 100000000", ErrValidation)
	ErrInvalidImageURL       = fmt.Errorf("%w: image url must be an absolute http(s) url", ErrValidation)
	ErrCategoryNotFound      = fmt.Errorf("%w: category not found", ErrNotFound)
	ErrCategoryNameRequired  = fmt.Errorf("%w: category name is required", ErrValidation)
	ErrPaymentMethodNotFound = fmt.Errorf("%w: payment method not found", ErrNotFound)
	ErrPaymentLabelRequired  = fmt.Errorf("%w: payment method label is required", ErrValidation)
	ErrNotItemSeller         = fmt.Errorf("%w: only the seller may change this item", ErrForbidden)

	// Bid errors
	ErrBidTooLow        = fmt.Errorf("%w: bid amount too low", ErrDomainConflict)
	ErrBidAmountInvalid = fmt.Errorf("%w: bid amount must be greater than 0", ErrValidation)
	ErrSelfBid          = fmt.Errorf("%w: sellers cannot bid on their own items", ErrDomainConflict)
	ErrNoBidsFound      = fmt.Errorf("%w: no bids found", ErrNotFound)
	ErrConcurrentUpdate = fmt.Errorf("%w: item was modified concurrently", ErrDomainConflict)

	// Transaction errors
	ErrTransactionNotFound = fmt.Errorf("%w: transaction not found", ErrNotFound)
	ErrDuplicateSettlement = fmt.Errorf("%w: item already has a transaction", ErrDomainConflict)
	ErrBuyerIsSeller       = fmt.Errorf("%w: buyer and seller must differ", ErrValidation)

	// User errors
	ErrUserNotFound           = fmt.Errorf("%w: user not found", ErrNotFound)
	ErrDuplicateUser          = fmt.Errorf("%w: username, email or phone number already registered", ErrDomainConflict)
	ErrUsernameRequired       = fmt.Errorf("%w: username is required", ErrValidation)
	ErrInvalidEmail           = fmt.Errorf("%w: a valid email address is required", ErrValidation)
	ErrPhoneNumberRequired    = fmt.Errorf("%w: phone number is required", ErrValidation)
	ErrPasswordTooShort       = fmt.Errorf("%w: password must be at least 8 characters", ErrValidation)
	ErrInvalidCredentials     = fmt.Errorf("%w: invalid email or password", ErrValidation)
	ErrUserIDRequired         = fmt.Errorf("%w: user id is required", ErrValidation)
	ErrCustomerAlreadyClaimed = fmt.Errorf("%w: payment customer belongs to another user", ErrDomainConflict)

	// Notification errors
	ErrNotificationNotFound = fmt.Errorf("%w: notification not found", ErrNotFound)

	// Feedback / report errors
	ErrInvalidRating       = fmt.Errorf("%w: rating must be between 0 and 5", ErrValidation)
	ErrCommentRequired     = fmt.Errorf("%w: comment is required", ErrValidation)
	ErrDescriptionRequired = fmt.Errorf("%w: description is required", ErrValidation)
	ErrSelfReport          = fmt.Errorf("%w: users cannot report themselves", ErrValidation)
	ErrDuplicateReport     = fmt.Errorf("%w: user already reported", ErrDomainConflict)

	// Payment errors
	ErrInvalidSignature  = fmt.Errorf("%w: invalid webhook signature", ErrExternalService)
	ErrMalformedPayload  = fmt.Errorf("%w: malformed webhook payload", ErrExternalService)
	ErrPaymentProvider   = fmt.Errorf("%w: payment provider request failed", ErrExternalService)
	ErrPaymentNotEnabled = fmt.Errorf("%w: payment provider is not configured", ErrExternalService)
	ErrCustomerNotLinked = fmt.Errorf("%w: payment customer is not linked to a user", ErrNotFound)
	ErrDedupeStore       = fmt.Errorf("%w: webhook dedupe store unavailable", ErrExternalService)

	// WebSocket message validation errors
	ErrMessageTypeRequired = fmt.Errorf("%w: message type is required", ErrValidation)
	ErrItemIDRequired      = fmt.Errorf("%w: item_id is required", ErrValidation)
	ErrInvalidAmount       = fmt.Errorf("%w: valid amount is required", ErrValidation)
	ErrUnknownMessageType  = fmt.Errorf("%w: unknown message type", ErrValidation)

	// Broadcasting errors
	ErrClientEventChannelNotFound = errors.New("client event channel not found")
)

// KindOf names the error class of err, or "internal" when it has none.
func KindOf(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrForbidden):
		return "forbidden"
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrDomainConflict):
		return "domain_conflict"
	case errors.Is(err, ErrExternalService):
		return "external_service"
	default:
		return "internal"
	}
}
