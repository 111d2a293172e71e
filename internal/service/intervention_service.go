package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/stemsi/sei-backend/internal/model"
	"github.com/stemsi/sei-backend/internal/repository"
)

// InterventionService manages interventions and their follow-ups.
type InterventionService struct {
	interventions repository.InterventionRepository
	followUps     repository.FollowUpRepository
	students      repository.StudentRepository
	log           zerolog.Logger
}

// NewInterventionService creates a new InterventionService.
func NewInterventionService(
	interventions repository.InterventionRepository,
	followUps repository.FollowUpRepository,
	students repository.StudentRepository,
	log zerolog.Logger,
) *InterventionService {
	return &InterventionService{
		interventions: interventions,
		followUps:     followUps,
		students:      students,
		log:           log.With().Str("component", "intervention_service").Logger(),
	}
}

// Create opens an intervention for an existing student.
func (s *InterventionService) Create(ctx context.Context, req model.CreateInterventionRequest) (*model.Intervention, error) {
	if strings.TrimSpace(req.Objective) == "" {
		return nil, validationError("objective is required")
	}
	if strings.TrimSpace(req.Responsible) == "" {
		return nil, validationError("responsible is required")
	}

	if _, err := s.students.GetByID(ctx, req.StudentID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound("student", req.StudentID)
		}
		return nil, fmt.Errorf("get student: %w", err)
	}

	i := &model.Intervention{
		StudentID:      req.StudentID,
		Objective:      req.Objective,
		PlannedActions: req.PlannedActions,
		StartDate:      req.StartDate,
		Responsible:    req.Responsible,
		Status:         model.InterventionOpen,
	}
	if err := s.interventions.Create(ctx, i); err != nil {
		return nil, fmt.Errorf("create intervention: %w", err)
	}

	s.log.Info().
		Str("intervention_id", i.ID).
		Str("student_id", i.StudentID).
		Msg("Intervention opened")
	return i, nil
}

// GetByID retrieves an intervention by ID.
func (s *InterventionService) GetByID(ctx context.Context, id string) (*model.Intervention, error) {
	i, err := s.interventions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound("intervention", id)
		}
		return nil, err
	}
	return i, nil
}

// List returns interventions, optionally for a single student.
func (s *InterventionService) List(ctx context.Context, studentID string) ([]model.Intervention, error) {
	return s.interventions.List(ctx, studentID)
}

// UpdateStatus applies a status transition. Reopening a completed
// intervention and unknown statuses are validation errors and leave the
// stored record unchanged; repeating the current status is a no-op.
func (s *InterventionService) UpdateStatus(ctx context.Context, id string, status model.InterventionStatus) (*model.Intervention, error) {
	i, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	changed, err := i.TransitionTo(status)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}
	if !changed {
		return i, nil
	}

	updated, err := s.interventions.UpdateStatus(ctx, id, i.Status)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound("intervention", id)
		}
		return nil, fmt.Errorf("update intervention status: %w", err)
	}

	s.log.Info().
		Str("intervention_id", id).
		Str("status", string(updated.Status)).
		Msg("Intervention status changed")
	return updated, nil
}

// Complete marks the intervention completed. Completing twice is a no-op.
func (s *InterventionService) Complete(ctx context.Context, id string) (*model.Intervention, error) {
	return s.UpdateStatus(ctx, id, model.InterventionCompleted)
}

// AddFollowUp records progress on an existing intervention.
func (s *InterventionService) AddFollowUp(ctx context.Context, req model.CreateFollowUpRequest) (*model.FollowUp, error) {
	if req.Progress == nil {
		return nil, validationError("progress is required")
	}
	if err := checkRange("progress", *req.Progress, 0, 10); err != nil {
		return nil, err
	}
	if _, err := s.GetByID(ctx, req.InterventionID); err != nil {
		return nil, err
	}

	f := &model.FollowUp{
		InterventionID: req.InterventionID,
		Observations:   req.Observations,
		Progress:       *req.Progress,
	}
	if err := s.followUps.Create(ctx, f); err != nil {
		return nil, fmt.Errorf("create follow-up: %w", err)
	}
	return f, nil
}

// ListFollowUps returns follow-ups, optionally for a single intervention.
func (s *InterventionService) ListFollowUps(ctx context.Context, interventionID string) ([]model.FollowUp, error) {
	return s.followUps.List(ctx, interventionID)
}
