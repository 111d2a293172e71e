package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/stemsi/sei-backend/internal/model"
)

var (
	// ErrNotFound is the "absent" result of every lookup and partial update.
	ErrNotFound    = errors.New("record not found")
	ErrDuplicateID = errors.New("record with this id already exists")
)

// StudentRepository stores student records and their cached risk index.
type StudentRepository interface {
	Create(ctx context.Context, s *model.Student) error
	GetByID(ctx context.Context, id string) (*model.Student, error)
	ListAll(ctx context.Context) ([]model.Student, error)
	// ApplyPartialUpdate merges the non-nil fields of patch into the stored
	// record and returns the result. Returns ErrNotFound for unknown ids.
	// Concurrent updates are last-write-wins.
	ApplyPartialUpdate(ctx context.Context, id string, patch StudentPatch) (*model.Student, error)
}

// CheckinRepository is an append-only log of weekly check-ins.
// No uniqueness is enforced on (student, week).
type CheckinRepository interface {
	Append(ctx context.Context, c *model.Checkin) error
	ListByStudent(ctx context.Context, studentID string) ([]model.Checkin, error)
	ListAll(ctx context.Context) ([]model.Checkin, error)
}

// InterventionRepository stores interventions. An empty studentID lists all.
type InterventionRepository interface {
	Create(ctx context.Context, i *model.Intervention) error
	GetByID(ctx context.Context, id string) (*model.Intervention, error)
	List(ctx context.Context, studentID string) ([]model.Intervention, error)
	UpdateStatus(ctx context.Context, id string, status model.InterventionStatus) (*model.Intervention, error)
}

// FollowUpRepository stores follow-ups. An empty interventionID lists all.
type FollowUpRepository interface {
	Create(ctx context.Context, f *model.FollowUp) error
	List(ctx context.Context, interventionID string) ([]model.FollowUp, error)
}

// StudentPatch lists the fields of a partial student update; nil means keep.
type StudentPatch struct {
	Name             *string
	Email            *string
	Grade            *string
	AverageGrade     *int
	Attendance       *int
	AVAParticipation *int
	LateAssignments  *int
	RiskIndex        *int
}

// IsEmpty reports whether the patch changes nothing.
func (p StudentPatch) IsEmpty() bool {
	return p.Name == nil && p.Email == nil && p.Grade == nil &&
		p.AverageGrade == nil && p.Attendance == nil && p.AVAParticipation == nil &&
		p.LateAssignments == nil && p.RiskIndex == nil
}

// Apply merges the patch into s in place.
func (p StudentPatch) Apply(s *model.Student) {
	if p.Name != nil {
		s.Name = *p.Name
	}
	if p.Email != nil {
		s.Email = *p.Email
	}
	if p.Grade != nil {
		s.Grade = *p.Grade
	}
	if p.AverageGrade != nil {
		s.AverageGrade = *p.AverageGrade
	}
	if p.Attendance != nil {
		s.Attendance = *p.Attendance
	}
	if p.AVAParticipation != nil {
		s.AVAParticipation = *p.AVAParticipation
	}
	if p.LateAssignments != nil {
		s.LateAssignments = *p.LateAssignments
	}
	if p.RiskIndex != nil {
		s.RiskIndex = *p.RiskIndex
	}
}

// assignIdentity fills a missing id with a UUID and a zero timestamp with now.
// Callers that import or seed data may supply both.
func assignIdentity(id *string, createdAt *time.Time) {
	if *id == "" {
		*id = uuid.New().String()
	}
	if createdAt.IsZero() {
		*createdAt = time.Now().UTC()
	}
}
