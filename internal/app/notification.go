package app

import (
	"context"

	"big4-auction-service/internal/domain/notification"
	"big4-auction-service/internal/domain/shared"
	"big4-auction-service/internal/ports/outbound"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// NotificationService exposes a user's notifications
type NotificationService struct {
	repo   outbound.NotificationRepository
	logger zerolog.Logger
}

type NotificationServiceParams struct {
	NotificationRepo outbound.NotificationRepository
	Logger           zerolog.Logger
}

func NewNotificationService(params NotificationServiceParams) *NotificationService {
	return &NotificationService{
		repo:   params.NotificationRepo,
		logger: params.Logger.With().Str("component", "notification_service").Logger(),
	}
}

// List retrieves the notifications of userID, newest first
func (s *NotificationService) List(ctx context.Context, userID uuid.UUID, unreadOnly bool) ([]*notification.Notification, error) {
	return s.repo.ListByUser(ctx, userID, unreadOnly)
}

// MarkRead marks a notification read. Other users' notifications look missing.
func (s *NotificationService) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	n, err := s.repo.GetByID(ctx, notificationID)
	if err != nil {
		return err
	}
	if n.UserID != userID {
		s.logger.Warn().
			Str("user_id", userID.String()).
			Str("notification_id", notificationID.String()).
			Msg("Notification belongs to another user")
		return shared.ErrNotificationNotFound
	}
	if n.IsRead() {
		return nil
	}
	return s.repo.MarkRead(ctx, notificationID)
}
