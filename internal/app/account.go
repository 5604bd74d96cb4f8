package app

import (
	"context"
	"errors"
	"strings"
	"time"

	"big4-auction-service/internal/domain/account"
	"big4-auction-service/internal/domain/shared"
	"big4-auction-service/internal/ports/inbound"
	"big4-auction-service/internal/ports/outbound"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 8

// AccountService implements registration and login
type AccountService struct {
	userRepo   outbound.UserRepository
	bcryptCost int
	clock      func() time.Time
	logger     zerolog.Logger
}

type AccountServiceParams struct {
	UserRepo outbound.UserRepository
	// BcryptCost defaults to bcrypt.DefaultCost
	BcryptCost int
	Clock      func() time.Time
	Logger     zerolog.Logger
}

// NewAccountService creates a new account service
func NewAccountService(params AccountServiceParams) *AccountService {
	cost := params.BcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &AccountService{
		userRepo:   params.UserRepo,
		bcryptCost: cost,
		clock:      clockOrNow(params.Clock),
		logger:     params.Logger.With().Str("component", "account_service").Logger(),
	}
}

// Register creates a user account
func (s *AccountService) Register(ctx context.Context, req inbound.RegisterRequest) (*account.User, error) {
	s.logger.Info().Str("username", req.Username).Msg("Attempting to register user")

	if len(req.Password) < minPasswordLength {
		return nil, shared.ErrPasswordTooShort
	}

	user := &account.User{
		ID:               uuid.New(),
		Username:         strings.TrimSpace(req.Username),
		Email:            account.NormalizeEmail(req.Email),
		FullName:         strings.TrimSpace(req.FullName),
		Address:          req.Address,
		PhoneNumber:      strings.TrimSpace(req.PhoneNumber),
		RegistrationDate: s.clock(),
	}
	if err := user.Validate(); err != nil {
		s.logger.Warn().Err(err).Msg("User failed validation")
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to hash password")
		return nil, err
	}
	user.PasswordHash = string(hash)

	if err := s.userRepo.Create(ctx, user); err != nil {
		s.logger.Error().Err(err).Str("username", user.Username).Msg("Failed to create user")
		return nil, err
	}

	s.logger.Info().Str("user_id", user.ID.String()).Msg("User registered")
	return user, nil
}

// Authenticate checks an email/password pair
func (s *AccountService) Authenticate(ctx context.Context, email, password string) (*account.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, account.NormalizeEmail(email))
	if errors.Is(err, shared.ErrUserNotFound) {
		return nil, shared.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.logger.Warn().Str("user_id", user.ID.String()).Msg("Password mismatch")
		return nil, shared.ErrInvalidCredentials
	}
	s.logger.Info().Str("user_id", user.ID.String()).Msg("User authenticated")
	return user, nil
}

// GetUser retrieves a user by ID
func (s *AccountService) GetUser(ctx context.Context, userID uuid.UUID) (*account.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

// GetUserByCustomer retrieves the user owning a payment customer handle
func (s *AccountService) GetUserByCustomer(ctx context.Context, customerID string) (*account.User, error) {
	user, err := s.userRepo.GetByPaymentCustomerID(ctx, customerID)
	if errors.Is(err, shared.ErrUserNotFound) {
		return nil, shared.ErrCustomerNotLinked
	}
	return user, err
}

// CompleteRegistration fills in the profile of the user behind a payment customer
func (s *AccountService) CompleteRegistration(ctx context.Context, req inbound.CompleteRegistrationRequest) (*account.User, error) {
	user, err := s.GetUserByCustomer(ctx, req.CustomerID)
	if err != nil {
		s.logger.Warn().Err(err).Str("customer_id", req.CustomerID).Msg("Registration for unknown customer")
		return nil, err
	}

	if name := strings.TrimSpace(req.FullName); name != "" {
		user.FullName = name
	}
	if req.Address != nil {
		addr := strings.TrimSpace(*req.Address)
		user.Address = &addr
	}
	if phone := strings.TrimSpace(req.PhoneNumber); phone != "" {
		user.PhoneNumber = phone
	}
	if err := user.Validate(); err != nil {
		return nil, err
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		s.logger.Error().Err(err).Str("user_id", user.ID.String()).Msg("Failed to update user")
		return nil, err
	}
	s.logger.Info().Str("user_id", user.ID.String()).Msg("Registration completed")
	return user, nil
}

// DeleteUser removes a user and everything they own
func (s *AccountService) DeleteUser(ctx context.Context, userID uuid.UUID) error {
	if err := s.userRepo.Delete(ctx, userID); err != nil {
		return err
	}
	s.logger.Info().Str("user_id", userID.String()).Msg("User deleted")
	return nil
}
