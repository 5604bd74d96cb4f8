package feedback

import (
	"strings"
	"time"

	"big4-auction-service/internal/domain/shared"

	"github.com/google/uuid"
)

const (
	MinRating = 0
	MaxRating = 5
)

// Feedback is a rating left about a user
type Feedback struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

func (f *Feedback) Validate() error {
	if f.UserID == uuid.Nil {
		return shared.ErrUserIDRequired
	}
	if f.Rating < MinRating || f.Rating > MaxRating {
		return shared.ErrInvalidRating
	}
	if strings.TrimSpace(f.Comment) == "" {
		return shared.ErrCommentRequired
	}
	return nil
}

// Report flags a user, optionally about one of their items.
// A reporter may report a given user only once.
type Report struct {
	ID             uuid.UUID  `json:"id"`
	ReporterID     uuid.UUID  `json:"reporter_id"`
	ReportedUserID uuid.UUID  `json:"reported_user_id"`
	ItemID         *uuid.UUID `json:"item_id,omitempty"`
	Description    string     `json:"description"`
	CreatedAt      time.Time  `json:"created_at"`
}

func (r *Report) Validate() error {
	if r.ReporterID == uuid.Nil || r.ReportedUserID == uuid.Nil {
		return shared.ErrUserIDRequired
	}
	if r.ReporterID == r.ReportedUserID {
		return shared.ErrSelfReport
	}
	if strings.TrimSpace(r.Description) == "" {
		return shared.ErrDescriptionRequired
	}
	return nil
}
