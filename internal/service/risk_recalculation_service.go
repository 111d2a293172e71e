package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/sei-backend/internal/metrics"
	"github.com/stemsi/sei-backend/internal/model"
	"github.com/stemsi/sei-backend/internal/repository"
	"github.com/stemsi/sei-backend/internal/risk"
	"github.com/stemsi/sei-backend/internal/websocket"
)

// RiskPublisher receives an event every time a student's cached index changes.
type RiskPublisher interface {
	PublishRiskChange(ctx context.Context, ev websocket.RiskChangedEvent) error
}

// RescanEnqueuer hands student ids to an asynchronous recalculation queue.
type RescanEnqueuer interface {
	Enqueue(ctx context.Context, studentIDs ...string) error
}

// RescanResult summarises a batch or full recalculation.
type RescanResult struct {
	Scanned  int           `json:"scanned"`
	Changed  int           `json:"changed"`
	Skipped  int           `json:"skipped"`
	Failed   int           `json:"failed"`
	Duration time.Duration `json:"duration"`
}

// RiskRecalculationService keeps Student.RiskIndex consistent with the
// student's metrics and latest check-in. It is the only writer of RiskIndex.
type RiskRecalculationService struct {
	students  repository.StudentRepository
	checkins  repository.CheckinRepository
	publisher RiskPublisher
	now       func() time.Time
	log       zerolog.Logger
}

// NewRiskRecalculationService creates a new RiskRecalculationService.
// publisher may be nil.
func NewRiskRecalculationService(
	students repository.StudentRepository,
	checkins repository.CheckinRepository,
	publisher RiskPublisher,
	log zerolog.Logger,
) *RiskRecalculationService {
	return &RiskRecalculationService{
		students:  students,
		checkins:  checkins,
		publisher: publisher,
		now:       time.Now,
		log:       log.With().Str("component", "risk_recalculation").Logger(),
	}
}

// OnCheckinIngested recomputes the owner's index right after a check-in is
// stored. A check-in whose student does not exist is not an error.
func (s *RiskRecalculationService) OnCheckinIngested(ctx context.Context, c *model.Checkin) error {
	_, err := s.RecalculateStudent(ctx, c.StudentID)
	if errors.Is(err, ErrNotFound) {
		metrics.Recalculations.WithLabelValues(metrics.ResultSkipped).Inc()
		s.log.Debug().
			Str("student_id", c.StudentID).
			Str("checkin_id", c.ID).
			Msg("Check-in for unknown student, recalculation skipped")
		return nil
	}
	return err
}

// RecalculateStudent recomputes and stores one student's index.
func (s *RiskRecalculationService) RecalculateStudent(ctx context.Context, studentID string) (*model.Student, error) {
	student, err := s.students.GetByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound("student", studentID)
		}
		return nil, fmt.Errorf("get student: %w", err)
	}

	checkins, err := s.checkins.ListByStudent(ctx, studentID)
	if err != nil {
		metrics.Recalculations.WithLabelValues(metrics.ResultError).Inc()
		return nil, fmt.Errorf("list check-ins: %w", err)
	}

	updated, _, err := s.store(ctx, student, checkins)
	return updated, err
}

// RecalculateMany recomputes a batch of students. Unknown ids are skipped;
// the remaining students are still processed when one of them fails.
func (s *RiskRecalculationService) RecalculateMany(ctx context.Context, studentIDs []string) (RescanResult, error) {
	start := s.now()
	var (
		result RescanResult
		errs   []error
	)

	for _, id := range studentIDs {
		result.Scanned++
		before, err := s.students.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				result.Skipped++
				metrics.Recalculations.WithLabelValues(metrics.ResultSkipped).Inc()
				continue
			}
			result.Failed++
			errs = append(errs, fmt.Errorf("get student %s: %w", id, err))
			continue
		}

		checkins, err := s.checkins.ListByStudent(ctx, id)
		if err != nil {
			result.Failed++
			errs = append(errs, fmt.Errorf("list check-ins for %s: %w", id, err))
			continue
		}

		_, changed, err := s.store(ctx, before, checkins)
		switch {
		case err != nil:
			result.Failed++
			errs = append(errs, err)
		case changed:
			result.Changed++
		}
	}

	result.Duration = s.now().Sub(start)
	return result, errors.Join(errs...)
}

// RecalculateAll rescans every student. It is the recovery path for a cache
// left stale by an interrupted or raced recomputation.
func (s *RiskRecalculationService) RecalculateAll(ctx context.Context) (RescanResult, error) {
	start := s.now()

	students, err := s.students.ListAll(ctx)
	if err != nil {
		return RescanResult{}, fmt.Errorf("list students: %w", err)
	}
	all, err := s.checkins.ListAll(ctx)
	if err != nil {
		return RescanResult{}, fmt.Errorf("list check-ins: %w", err)
	}

	byStudent := make(map[string][]model.Checkin, len(students))
	for _, c := range all {
		byStudent[c.StudentID] = append(byStudent[c.StudentID], c)
	}

	var (
		result RescanResult
		errs   []error
	)
	for i := range students {
		result.Scanned++
		_, changed, err := s.store(ctx, &students[i], byStudent[students[i].ID])
		switch {
		case errors.Is(err, ErrNotFound):
			// Deleted between listing and writing.
			result.Skipped++
		case err != nil:
			result.Failed++
			errs = append(errs, err)
		case changed:
			result.Changed++
		}
	}

	result.Duration = s.now().Sub(start)
	metrics.RescanDuration.Observe(result.Duration.Seconds())

	s.log.Info().
		Int("scanned", result.Scanned).
		Int("changed", result.Changed).
		Int("failed", result.Failed).
		Dur("duration", result.Duration).
		Msg("Risk re-scan finished")

	return result, errors.Join(errs...)
}

// EnqueueAll queues every student for asynchronous recalculation and returns
// how many ids were queued.
func (s *RiskRecalculationService) EnqueueAll(ctx context.Context, q RescanEnqueuer) (int, error) {
	students, err := s.students.ListAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("list students: %w", err)
	}
	ids := make([]string, len(students))
	for i := range students {
		ids[i] = students[i].ID
	}
	if err := q.Enqueue(ctx, ids...); err != nil {
		return 0, fmt.Errorf("enqueue rescan: %w", err)
	}

	s.log.Info().Int("count", len(ids)).Msg("Risk re-scan queued")
	return len(ids), nil
}

// store scores the student and writes the index back. The bool reports
// whether the stored value differs from the previous one.
func (s *RiskRecalculationService) store(ctx context.Context, student *model.Student, checkins []model.Checkin) (*model.Student, bool, error) {
	previous := student.RiskIndex
	next := risk.Score(student, checkins)

	updated, err := s.students.ApplyPartialUpdate(ctx, student.ID, repository.StudentPatch{RiskIndex: &next})
	if err != nil {
		metrics.Recalculations.WithLabelValues(metrics.ResultError).Inc()
		if errors.Is(err, repository.ErrNotFound) {
			return nil, false, notFound("student", student.ID)
		}
		return nil, false, fmt.Errorf("store risk index for %s: %w", student.ID, err)
	}

	if previous == next {
		metrics.Recalculations.WithLabelValues(metrics.ResultUnchanged).Inc()
		return updated, false, nil
	}

	metrics.Recalculations.WithLabelValues(metrics.ResultChanged).Inc()
	s.log.Debug().
		Str("student_id", student.ID).
		Int("previous", previous).
		Int("risk_index", next).
		Msg("Risk index updated")

	s.publish(ctx, student.ID, previous, next)
	return updated, true, nil
}

// publish is best effort: the stored index is already the source of truth.
func (s *RiskRecalculationService) publish(ctx context.Context, studentID string, previous, next int) {
	if s.publisher == nil {
		return
	}
	level := risk.LevelFor(next)
	ev := websocket.RiskChangedEvent{
		Event:         websocket.EventRiskChanged,
		StudentID:     studentID,
		PreviousIndex: previous,
		RiskIndex:     next,
		Level:         string(level),
		Label:         level.Label(),
		Color:         level.Color(),
		At:            s.now().UTC(),
	}
	if err := s.publisher.PublishRiskChange(ctx, ev); err != nil {
		s.log.Warn().Err(err).Str("student_id", studentID).Msg("Failed to publish risk change")
	}
}
