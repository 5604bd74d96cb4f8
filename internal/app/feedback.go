package app

import (
	"context"
	"strings"
	"time"

	"big4-auction-service/internal/domain/feedback"
	"big4-auction-service/internal/ports/inbound"
	"big4-auction-service/internal/ports/outbound"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// FeedbackService implements ratings and user reports
type FeedbackService struct {
	feedbackRepo outbound.FeedbackRepository
	reportRepo   outbound.ReportRepository
	userRepo     outbound.UserRepository
	itemRepo     outbound.ItemRepository
	clock        func() time.Time
	logger       zerolog.Logger
}

type FeedbackServiceParams struct {
	FeedbackRepo outbound.FeedbackRepository
	ReportRepo   outbound.ReportRepository
	UserRepo     outbound.UserRepository
	ItemRepo     outbound.ItemRepository
	Clock        func() time.Time
	Logger       zerolog.Logger
}

func NewFeedbackService(params FeedbackServiceParams) *FeedbackService {
	return &FeedbackService{
		feedbackRepo: params.FeedbackRepo,
		reportRepo:   params.ReportRepo,
		userRepo:     params.UserRepo,
		itemRepo:     params.ItemRepo,
		clock:        clockOrNow(params.Clock),
		logger:       params.Logger.With().Str("component", "feedback_service").Logger(),
	}
}

// SubmitFeedback stores a rating about a user
func (s *FeedbackService) SubmitFeedback(ctx context.Context, req inbound.SubmitFeedbackRequest) (*feedback.Feedback, error) {
	f := &feedback.Feedback{
		ID:        uuid.New(),
		UserID:    req.UserID,
		Rating:    req.Rating,
		Comment:   strings.TrimSpace(req.Comment),
		CreatedAt: s.clock(),
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.userRepo.GetByID(ctx, req.UserID); err != nil {
		return nil, err
	}
	if err := s.feedbackRepo.Create(ctx, f); err != nil {
		s.logger.Error().Err(err).Str("user_id", req.UserID.String()).Msg("Failed to store feedback")
		return nil, err
	}
	s.logger.Info().
		Str("feedback_id", f.ID.String()).
		Str("user_id", f.UserID.String()).
		Int("rating", f.Rating).
		Msg("Feedback submitted")
	return f, nil
}

// ListFeedback retrieves the feedback left about a user
func (s *FeedbackService) ListFeedback(ctx context.Context, userID uuid.UUID) ([]*feedback.Feedback, error) {
	return s.feedbackRepo.ListByUser(ctx, userID)
}

// FileReport stores a report; a reporter can report a given user once
func (s *FeedbackService) FileReport(ctx context.Context, req inbound.FileReportRequest) (*feedback.Report, error) {
	r := &feedback.Report{
		ID:             uuid.New(),
		ReporterID:     req.ReporterID,
		ReportedUserID: req.ReportedUserID,
		ItemID:         req.ItemID,
		Description:    strings.TrimSpace(req.Description),
		CreatedAt:      s.clock(),
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	for _, id := range []uuid.UUID{r.ReporterID, r.ReportedUserID} {
		if _, err := s.userRepo.GetByID(ctx, id); err != nil {
			return nil, err
		}
	}
	if r.ItemID != nil {
		if _, err := s.itemRepo.GetByID(ctx, *r.ItemID); err != nil {
			return nil, err
		}
	}
	if err := s.reportRepo.Create(ctx, r); err != nil {
		s.logger.Warn().Err(err).
			Str("reporter_id", r.ReporterID.String()).
			Str("reported_user_id", r.ReportedUserID.String()).
			Msg("Failed to store report")
		return nil, err
	}
	s.logger.Info().Str("report_id", r.ID.String()).Msg("Report filed")
	return r, nil
}

// ListReports retrieves the reports filed against a user
func (s *FeedbackService) ListReports(ctx context.Context, userID uuid.UUID) ([]*feedback.Report, error) {
	return s.reportRepo.ListByReportedUser(ctx, userID)
}
