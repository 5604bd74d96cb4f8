package memory

import (
	"context"
	"sort"

	"big4-auction-service/internal/domain/feedback"
	"big4-auction-service/internal/domain/notification"
	"big4-auction-service/internal/domain/payment"
	"big4-auction-service/internal/domain/shared"

	"github.com/google/uuid"
)

// NotificationRepository is the in-memory notification table
type NotificationRepository struct {
	store *Store
}

func (r *NotificationRepository) Create(ctx context.Context, n *notification.Notification) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.users[n.UserID]; !ok {
		return shared.ErrUserNotFound
	}
	cp := *n
	r.store.notifications[n.ID] = &cp
	return nil
}

func (r *NotificationRepository) GetByID(ctx context.Context, id uuid.UUID) (*notification.Notification, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	n, ok := r.store.notifications[id]
	if !ok {
		return nil, shared.ErrNotificationNotFound
	}
	cp := *n
	return &cp, nil
}

func (r *NotificationRepository) ListByUser(ctx context.Context, userID uuid.UUID, unreadOnly bool) ([]*notification.Notification, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := []*notification.Notification{}
	for _, n := range r.store.notifications {
		if n.UserID != userID || (unreadOnly && n.IsRead()) {
			continue
		}
		cp := *n
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *NotificationRepository) MarkRead(ctx context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	n, ok := r.store.notifications[id]
	if !ok {
		return shared.ErrNotificationNotFound
	}
	n.MarkRead()
	return nil
}

// FeedbackRepository is the in-memory feedback table
type FeedbackRepository struct {
	store *Store
}

func (r *FeedbackRepository) Create(ctx context.Context, f *feedback.Feedback) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.users[f.UserID]; !ok {
		return shared.ErrUserNotFound
	}
	cp := *f
	r.store.feedback[f.ID] = &cp
	return nil
}

func (r *FeedbackRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*feedback.Feedback, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := []*feedback.Feedback{}
	for _, f := range r.store.feedback {
		if f.UserID == userID {
			cp := *f
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// ReportRepository is the in-memory report table
type ReportRepository struct {
	store *Store
}

func (r *ReportRepository) Create(ctx context.Context, report *feedback.Report) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, existing := range r.store.reports {
		if existing.ReporterID == report.ReporterID && existing.ReportedUserID == report.ReportedUserID {
			return shared.ErrDuplicateReport
		}
	}
	cp := *report
	r.store.reports[report.ID] = &cp
	return nil
}

func (r *ReportRepository) ListByReportedUser(ctx context.Context, userID uuid.UUID) ([]*feedback.Report, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := []*feedback.Report{}
	for _, rep := range r.store.reports {
		if rep.ReportedUserID == userID {
			cp := *rep
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// CardLinkRepository is the in-memory card link table
type CardLinkRepository struct {
	store *Store
}

func (r *CardLinkRepository) LinkPaymentMethod(ctx context.Context, link *payment.CardLink) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.users[link.UserID]; !ok {
		return false, shared.ErrUserNotFound
	}
	for _, existing := range r.store.cardLinks {
		if existing.UserID == link.UserID && existing.ProviderPaymentMethodID == link.ProviderPaymentMethodID {
			return false, nil
		}
	}
	cp := *link
	r.store.cardLinks[link.ID] = &cp
	return true, nil
}

func (r *CardLinkRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*payment.CardLink, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := []*payment.CardLink{}
	for _, l := range r.store.cardLinks {
		if l.UserID == userID {
			cp := *l
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}
