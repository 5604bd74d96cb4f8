package notification

import (
	"time"

	"github.com/google/uuid"
)

// ReadStatus tracks whether a user has seen a notification
type ReadStatus string

const (
	StatusUnread ReadStatus = "unread"
	StatusRead   ReadStatus = "read"
)

// Notification is a message addressed to a single user
type Notification struct {
	ID         uuid.UUID  `json:"id"`
	UserID     uuid.UUID  `json:"user_id"`
	Message    string     `json:"message"`
	ReadStatus ReadStatus `json:"read_status"`
	CreatedAt  time.Time  `json:"created_at"`
}

// New builds an unread notification for userID
func New(userID uuid.UUID, message string, now time.Time) *Notification {
	return &Notification{
		ID:         uuid.New(),
		UserID:     userID,
		Message:    message,
		ReadStatus: StatusUnread,
		CreatedAt:  now,
	}
}

// IsRead returns true once the owner marked the notification read
func (n *Notification) IsRead() bool {
	return n.ReadStatus == StatusRead
}

// MarkRead marks the notification as read
func (n *Notification) MarkRead() {
	n.ReadStatus = StatusRead
}
