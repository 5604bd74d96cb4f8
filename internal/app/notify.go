package app

import (
	"context"
	"fmt"
	"time"

	"big4-auction-service/internal/domain/notification"
	"big4-auction-service/internal/ports/outbound"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// notifier writes user notifications. Failures are logged and swallowed so a
// side channel never undoes the operation that triggered it.
type notifier struct {
	repo   outbound.NotificationRepository
	clock  func() time.Time
	logger zerolog.Logger
}

func (n notifier) send(ctx context.Context, userID uuid.UUID, format string, args ...interface{}) {
	if n.repo == nil {
		return
	}
	msg := notification.New(userID, fmt.Sprintf(format, args...), n.clock())
	if err := n.repo.Create(ctx, msg); err != nil {
		n.logger.Error().Err(err).
			Str("user_id", userID.String()).
			Msg("Failed to create notification")
		return
	}
	n.logger.Debug().
		Str("user_id", userID.String()).
		Str("notification_id", msg.ID.String()).
		Msg("Notification created")
}

func clockOrNow(clock func() time.Time) func() time.Time {
	if clock == nil {
		return time.Now
	}
	return clock
}
