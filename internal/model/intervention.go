package model

import (
	"errors"
	"fmt"
	"time"
)

// InterventionStatus enumerates the lifecycle states of an intervention.
type InterventionStatus string

const (
	InterventionOpen      InterventionStatus = "open"
	InterventionCompleted InterventionStatus = "completed"
)

var (
	ErrUnknownInterventionStatus = errors.New("unknown intervention status")
	ErrReopenCompleted           = errors.New("a completed intervention cannot be reopened")
)

// Valid reports whether s is one of the known states.
func (s InterventionStatus) Valid() bool {
	return s == InterventionOpen || s == InterventionCompleted
}

// Intervention is a remediation plan opened by school staff for a student.
type Intervention struct {
	ID             string             `json:"id" db:"id"`
	StudentID      string             `json:"student_id" db:"student_id"`
	Objective      string             `json:"objective" db:"objective"`
	PlannedActions string             `json:"planned_actions" db:"planned_actions"`
	StartDate      string             `json:"start_date" db:"start_date"`
	Responsible    string             `json:"responsible" db:"responsible"`
	Status         InterventionStatus `json:"status" db:"status"`
	CreatedAt      time.Time          `json:"created_at" db:"created_at"`
}

// TransitionTo moves the intervention to next. open -> completed is the only
// real transition; repeating the current state is a no-op. On error the
// intervention is left unchanged. The returned bool reports whether the
// status actually changed.
func (i *Intervention) TransitionTo(next InterventionStatus) (bool, error) {
	if !next.Valid() {
		return false, fmt.Errorf("%w: %q", ErrUnknownInterventionStatus, next)
	}
	if i.Status == next {
		return false, nil
	}
	if i.Status == InterventionCompleted && next == InterventionOpen {
		return false, ErrReopenCompleted
	}
	i.Status = next
	return true, nil
}

// Complete marks the intervention completed. Completing twice is a no-op.
func (i *Intervention) Complete() bool {
	changed, _ := i.TransitionTo(InterventionCompleted)
	return changed
}

// CreateInterventionRequest is the payload for opening an intervention.
type CreateInterventionRequest struct {
	StudentID      string `json:"student_id" binding:"required,max=64"`
	Objective      string `json:"objective" binding:"required,min=3,max=500"`
	PlannedActions string `json:"planned_actions" binding:"required,max=4000"`
	StartDate      string `json:"start_date" binding:"required,datetime=2006-01-02"`
	Responsible    string `json:"responsible" binding:"required,max=120"`
}

// UpdateInterventionStatusRequest is the payload for a status transition.
type UpdateInterventionStatusRequest struct {
	Status InterventionStatus `json:"status" binding:"required,oneof=open completed"`
}
