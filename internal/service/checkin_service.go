package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/rs/zerolog"
	"github.com/stemsi/sei-backend/internal/metrics"
	"github.com/stemsi/sei-backend/internal/model"
	"github.com/stemsi/sei-backend/internal/repository"
)

// CheckinService handles weekly check-in ingestion.
type CheckinService struct {
	checkins      repository.CheckinRepository
	recalculation *RiskRecalculationService
	log           zerolog.Logger
}

// NewCheckinService creates a new CheckinService.
func NewCheckinService(
	checkins repository.CheckinRepository,
	recalculation *RiskRecalculationService,
	log zerolog.Logger,
) *CheckinService {
	return &CheckinService{
		checkins:      checkins,
		recalculation: recalculation,
		log:           log.With().Str("component", "checkin_service").Logger(),
	}
}

// Submit validates and stores a check-in, then recomputes the owner's risk
// index. The two writes are not atomic: when the recalculation fails the
// check-in is still returned together with the error.
func (s *CheckinService) Submit(ctx context.Context, req model.SubmitCheckinRequest) (*model.Checkin, error) {
	if err := validateCheckin(req); err != nil {
		return nil, err
	}

	c := &model.Checkin{
		StudentID:    req.StudentID,
		WeekNumber:   req.WeekNumber,
		Motivation:   *req.Motivation,
		Stress:       *req.Stress,
		Focus:        *req.Focus,
		Organization: *req.Organization,
	}
	if err := s.checkins.Append(ctx, c); err != nil {
		return nil, fmt.Errorf("append check-in: %w", err)
	}
	metrics.CheckinsIngested.Inc()

	s.log.Info().
		Str("student_id", c.StudentID).
		Int("week", c.WeekNumber).
		Msg("Check-in stored")

	if err := s.recalculation.OnCheckinIngested(ctx, c); err != nil {
		return c, fmt.Errorf("recalculate risk: %w", err)
	}
	return c, nil
}

// ListAll returns every check-in.
func (s *CheckinService) ListAll(ctx context.Context) ([]model.Checkin, error) {
	return s.checkins.ListAll(ctx)
}

// ListByStudent returns a student's check-ins, most recent week first.
func (s *CheckinService) ListByStudent(ctx context.Context, studentID string) ([]model.Checkin, error) {
	checkins, err := s.checkins.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(checkins, func(i, j int) bool {
		return checkins[i].WeekNumber > checkins[j].WeekNumber
	})
	return checkins, nil
}

func validateCheckin(req model.SubmitCheckinRequest) error {
	if req.StudentID == "" {
		return validationError("student_id is required")
	}
	if req.WeekNumber < 1 {
		return validationError("week_number must be a positive integer, got %d", req.WeekNumber)
	}

	fields := []struct {
		name string
		v    *int
	}{
		{"motivation", req.Motivation},
		{"stress", req.Stress},
		{"focus", req.Focus},
		{"organization", req.Organization},
	}
	for _, f := range fields {
		if f.v == nil {
			return validationError("%s is required", f.name)
		}
		if err := checkRange(f.name, *f.v, model.MoodScaleMin, model.MoodScaleMax); err != nil {
			return err
		}
	}
	return nil
}
