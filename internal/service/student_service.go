package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/stemsi/sei-backend/internal/model"
	"github.com/stemsi/sei-backend/internal/repository"
	"github.com/stemsi/sei-backend/internal/response"
	"github.com/stemsi/sei-backend/internal/risk"
)

// StudentView is a student together with its presentation tier.
type StudentView struct {
	model.Student
	RiskLevel risk.Level `json:"risk_level"`
	RiskLabel string     `json:"risk_label"`
	RiskColor string     `json:"risk_color"`
}

// NewStudentView decorates s with the level derived from its cached index.
func NewStudentView(s model.Student) StudentView {
	level := risk.LevelFor(s.RiskIndex)
	return StudentView{
		Student:   s,
		RiskLevel: level,
		RiskLabel: level.Label(),
		RiskColor: level.Color(),
	}
}

// StudentFilter narrows a student listing. Zero values match everything.
type StudentFilter struct {
	// Query is matched case-insensitively against name, email and grade.
	Query   string
	Level   risk.Level
	Page    int
	PerPage int
}

// StudentService handles student roster and metric updates.
type StudentService struct {
	students      repository.StudentRepository
	recalculation *RiskRecalculationService
	log           zerolog.Logger
}

// NewStudentService creates a new StudentService.
func NewStudentService(
	students repository.StudentRepository,
	recalculation *RiskRecalculationService,
	log zerolog.Logger,
) *StudentService {
	return &StudentService{
		students:      students,
		recalculation: recalculation,
		log:           log.With().Str("component", "student_service").Logger(),
	}
}

// GetByID retrieves a student by ID.
func (s *StudentService) GetByID(ctx context.Context, id string) (*StudentView, error) {
	student, err := s.students.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound("student", id)
		}
		return nil, err
	}
	view := NewStudentView(*student)
	return &view, nil
}

// List retrieves students matching filter with pagination.
func (s *StudentService) List(ctx context.Context, filter StudentFilter) ([]StudentView, *response.Pagination, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PerPage < 1 {
		filter.PerPage = 20
	}
	if filter.PerPage > 100 {
		filter.PerPage = 100
	}

	students, err := s.students.ListAll(ctx)
	if err != nil {
		return nil, nil, err
	}

	query := strings.ToLower(strings.TrimSpace(filter.Query))
	matched := make([]StudentView, 0, len(students))
	for _, st := range students {
		view := NewStudentView(st)
		if filter.Level != "" && view.RiskLevel != filter.Level {
			continue
		}
		if query != "" && !matchesQuery(st, query) {
			continue
		}
		matched = append(matched, view)
	}

	total := len(matched)
	offset := min((filter.Page-1)*filter.PerPage, total)
	end := min(offset+filter.PerPage, total)

	pagination := &response.Pagination{
		Page:       filter.Page,
		PerPage:    filter.PerPage,
		TotalItems: total,
		TotalPages: (total + filter.PerPage - 1) / filter.PerPage,
	}
	return matched[offset:end], pagination, nil
}

func matchesQuery(s model.Student, query string) bool {
	return strings.Contains(strings.ToLower(s.Name), query) ||
		strings.Contains(strings.ToLower(s.Email), query) ||
		strings.Contains(strings.ToLower(s.Grade), query)
}

// Create registers a student and computes the initial risk index.
func (s *StudentService) Create(ctx context.Context, req model.CreateStudentRequest) (*StudentView, error) {
	if err := validateNewStudent(req); err != nil {
		return nil, err
	}

	student := &model.Student{
		ID:               req.ID,
		Name:             req.Name,
		Email:            req.Email,
		Grade:            req.Grade,
		AverageGrade:     *req.AverageGrade,
		Attendance:       *req.Attendance,
		AVAParticipation: *req.AVAParticipation,
		LateAssignments:  *req.LateAssignments,
	}
	if err := s.students.Create(ctx, student); err != nil {
		if errors.Is(err, repository.ErrDuplicateID) {
			return nil, fmt.Errorf("student %q: %w", student.ID, ErrDuplicateID)
		}
		return nil, fmt.Errorf("create student: %w", err)
	}

	s.log.Info().Str("student_id", student.ID).Msg("Student created")

	updated, err := s.recalculation.RecalculateStudent(ctx, student.ID)
	if err != nil {
		return nil, err
	}
	view := NewStudentView(*updated)
	return &view, nil
}

// UpdateMetrics merges the given indicators and recomputes the risk index.
func (s *StudentService) UpdateMetrics(ctx context.Context, id string, req model.UpdateMetricsRequest) (*StudentView, error) {
	patch := repository.StudentPatch{
		Name:             req.Name,
		Email:            req.Email,
		Grade:            req.Grade,
		AverageGrade:     req.AverageGrade,
		Attendance:       req.Attendance,
		AVAParticipation: req.AVAParticipation,
		LateAssignments:  req.LateAssignments,
	}
	if err := validatePatch(patch); err != nil {
		return nil, err
	}

	if _, err := s.students.ApplyPartialUpdate(ctx, id, patch); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound("student", id)
		}
		return nil, fmt.Errorf("update student: %w", err)
	}

	updated, err := s.recalculation.RecalculateStudent(ctx, id)
	if err != nil {
		return nil, err
	}
	view := NewStudentView(*updated)
	return &view, nil
}

func validateNewStudent(req model.CreateStudentRequest) error {
	if strings.TrimSpace(req.Name) == "" {
		return validationError("name is required")
	}
	if req.AverageGrade == nil || req.Attendance == nil || req.AVAParticipation == nil || req.LateAssignments == nil {
		return validationError("average_grade, attendance, ava_participation and late_assignments are required")
	}
	return validatePatch(repository.StudentPatch{
		AverageGrade:     req.AverageGrade,
		Attendance:       req.Attendance,
		AVAParticipation: req.AVAParticipation,
		LateAssignments:  req.LateAssignments,
	})
}

func validatePatch(p repository.StudentPatch) error {
	if p.RiskIndex != nil {
		return validationError("risk_index is derived and cannot be set")
	}
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return validationError("name must not be empty")
	}
	if p.AverageGrade != nil {
		if err := checkRange("average_grade", *p.AverageGrade, 0, 100); err != nil {
			return err
		}
	}
	if p.Attendance != nil {
		if err := checkRange("attendance", *p.Attendance, 0, 100); err != nil {
			return err
		}
	}
	if p.AVAParticipation != nil {
		if err := checkNonNegative("ava_participation", *p.AVAParticipation); err != nil {
			return err
		}
	}
	if p.LateAssignments != nil {
		if err := checkNonNegative("late_assignments", *p.LateAssignments); err != nil {
			return err
		}
	}
	return nil
}
