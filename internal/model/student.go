package model

import "time"

// Student holds the indicators tracked for one student plus the cached risk index.
type Student struct {
	ID               string    `json:"id" db:"id"`
	Name             string    `json:"name" db:"name"`
	Email            string    `json:"email" db:"email"`
	Grade            string    `json:"grade" db:"grade"`
	AverageGrade     int       `json:"average_grade" db:"average_grade"`
	Attendance       int       `json:"attendance" db:"attendance"`
	AVAParticipation int       `json:"ava_participation" db:"ava_participation"`
	LateAssignments  int       `json:"late_assignments" db:"late_assignments"`
	RiskIndex        int       `json:"risk_index" db:"risk_index"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time `json:"updated_at" db:"updated_at"`
}

// CreateStudentRequest is the payload for registering a student.
// The risk index is derived and therefore not accepted.
type CreateStudentRequest struct {
	ID               string `json:"id" binding:"omitempty,max=64"`
	Name             string `json:"name" binding:"required,min=2,max=120"`
	Email            string `json:"email" binding:"required,email,max=160"`
	Grade            string `json:"grade" binding:"required,max=40"`
	AverageGrade     *int   `json:"average_grade" binding:"required,min=0,max=100"`
	Attendance       *int   `json:"attendance" binding:"required,min=0,max=100"`
	AVAParticipation *int   `json:"ava_participation" binding:"required,min=0"`
	LateAssignments  *int   `json:"late_assignments" binding:"required,min=0"`
}

// UpdateMetricsRequest carries a partial update of a student's indicators.
// Omitted fields are left untouched.
type UpdateMetricsRequest struct {
	Name             *string `json:"name" binding:"omitempty,min=2,max=120"`
	Email            *string `json:"email" binding:"omitempty,email,max=160"`
	Grade            *string `json:"grade" binding:"omitempty,max=40"`
	AverageGrade     *int    `json:"average_grade" binding:"omitempty,min=0,max=100"`
	Attendance       *int    `json:"attendance" binding:"omitempty,min=0,max=100"`
	AVAParticipation *int    `json:"ava_participation" binding:"omitempty,min=0"`
	LateAssignments  *int    `json:"late_assignments" binding:"omitempty,min=0"`
}
