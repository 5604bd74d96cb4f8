package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"big4-auction-service/internal/domain/feedback"
	"big4-auction-service/internal/domain/notification"
	"big4-auction-service/internal/domain/payment"
	"big4-auction-service/internal/domain/shared"

	"github.com/google/uuid"
)

// NotificationRepository implements the notification repository interface
type NotificationRepository struct {
	conn *Connection
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(conn *Connection) *NotificationRepository {
	return &NotificationRepository{conn: conn}
}

func (r *NotificationRepository) Create(ctx context.Context, n *notification.Notification) error {
	_, err := r.conn.GetDB().ExecContext(ctx, `
		INSERT INTO notifications (id, user_id, message, read_status, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, n.ID, n.UserID, n.Message, n.ReadStatus, n.CreatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return shared.ErrUserNotFound
		}
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

func (r *NotificationRepository) GetByID(ctx context.Context, id uuid.UUID) (*notification.Notification, error) {
	var n notification.Notification
	err := r.conn.GetDB().QueryRowContext(ctx, `
		SELECT id, user_id, message, read_status, created_at
		FROM notifications WHERE id = $1
	`, id).Scan(&n.ID, &n.UserID, &n.Message, &n.ReadStatus, &n.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, shared.ErrNotificationNotFound
		}
		return nil, fmt.Errorf("failed to get notification: %w", err)
	}
	return &n, nil
}

func (r *NotificationRepository) ListByUser(ctx context.Context, userID uuid.UUID, unreadOnly bool) ([]*notification.Notification, error) {
	query := `
		SELECT id, user_id, message, read_status, created_at
		FROM notifications
		WHERE user_id = $1 AND ($2 = FALSE OR read_status = 'unread')
		ORDER BY created_at DESC
	`

	rows, err := r.conn.GetDB().QueryContext(ctx, query, userID, unreadOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	out := []*notification.Notification{}
	for rows.Next() {
		var n notification.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Message, &n.ReadStatus, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		out = append(out, &n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating notifications: %w", err)
	}
	return out, nil
}

func (r *NotificationRepository) MarkRead(ctx context.Context, id uuid.UUID) error {
	result, err := r.conn.GetDB().ExecContext(ctx,
		`UPDATE notifications SET read_status = 'read' WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	return checkAffected(result, shared.ErrNotificationNotFound)
}

// FeedbackRepository implements the feedback repository interface
type FeedbackRepository struct {
	conn *Connection
}

// NewFeedbackRepository creates a new feedback repository
func NewFeedbackRepository(conn *Connection) *FeedbackRepository {
	return &FeedbackRepository{conn: conn}
}

func (r *FeedbackRepository) Create(ctx context.Context, f *feedback.Feedback) error {
	_, err := r.conn.GetDB().ExecContext(ctx, `
		INSERT INTO feedback (id, user_id, rating, comment, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, f.ID, f.UserID, f.Rating, f.Comment, f.CreatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return shared.ErrUserNotFound
		}
		return fmt.Errorf("failed to create feedback: %w", err)
	}
	return nil
}

func (r *FeedbackRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*feedback.Feedback, error) {
	rows, err := r.conn.GetDB().QueryContext(ctx, `
		SELECT id, user_id, rating, comment, created_at
		FROM feedback WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list feedback: %w", err)
	}
	defer rows.Close()

	out := []*feedback.Feedback{}
	for rows.Next() {
		var f feedback.Feedback
		if err := rows.Scan(&f.ID, &f.UserID, &f.Rating, &f.Comment, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan feedback: %w", err)
		}
		out = append(out, &f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating feedback: %w", err)
	}
	return out, nil
}

// ReportRepository implements the report repository interface
type ReportRepository struct {
	conn *Connection
}

// NewReportRepository creates a new report repository
func NewReportRepository(conn *Connection) *ReportRepository {
	return &ReportRepository{conn: conn}
}

func (r *ReportRepository) Create(ctx context.Context, rep *feedback.Report) error {
	_, err := r.conn.GetDB().ExecContext(ctx, `
		INSERT INTO reports (id, reporter_id, reported_user_id, item_id, description, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, rep.ID, rep.ReporterID, rep.ReportedUserID, rep.ItemID, rep.Description, rep.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return shared.ErrDuplicateReport
		}
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: reported user or item does not exist", shared.ErrNotFound)
		}
		return fmt.Errorf("failed to create report: %w", err)
	}
	return nil
}

func (r *ReportRepository) ListByReportedUser(ctx context.Context, userID uuid.UUID) ([]*feedback.Report, error) {
	rows, err := r.conn.GetDB().QueryContext(ctx, `
		SELECT id, reporter_id, reported_user_id, item_id, description, created_at
		FROM reports WHERE reported_user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	defer rows.Close()

	out := []*feedback.Report{}
	for rows.Next() {
		var rep feedback.Report
		if err := rows.Scan(&rep.ID, &rep.ReporterID, &rep.ReportedUserID, &rep.ItemID, &rep.Description, &rep.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}
		out = append(out, &rep)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating reports: %w", err)
	}
	return out, nil
}

// CardLinkRepository implements the card link repository interface
type CardLinkRepository struct {
	conn *Connection
}

// NewCardLinkRepository creates a new card link repository
func NewCardLinkRepository(conn *Connection) *CardLinkRepository {
	return &CardLinkRepository{conn: conn}
}

// LinkPaymentMethod inserts the link unless the pair already exists
func (r *CardLinkRepository) LinkPaymentMethod(ctx context.Context, link *payment.CardLink) (bool, error) {
	result, err := r.conn.GetDB().ExecContext(ctx, `
		INSERT INTO card_links (id, user_id, provider_payment_method_id, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, provider_payment_method_id) DO NOTHING
	`, link.ID, link.UserID, link.ProviderPaymentMethodID, link.CreatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return false, shared.ErrUserNotFound
		}
		return false, fmt.Errorf("failed to link payment method: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected == 1, nil
}

func (r *CardLinkRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*payment.CardLink, error) {
	rows, err := r.conn.GetDB().QueryContext(ctx, `
		SELECT id, user_id, provider_payment_method_id, created_at
		FROM card_links WHERE user_id = $1
		ORDER BY created_at
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list card links: %w", err)
	}
	defer rows.Close()

	out := []*payment.CardLink{}
	for rows.Next() {
		var l payment.CardLink
		if err := rows.Scan(&l.ID, &l.UserID, &l.ProviderPaymentMethodID, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan card link: %w", err)
		}
		out = append(out, &l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating card links: %w", err)
	}
	return out, nil
}
