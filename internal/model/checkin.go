package model

import "time"

// Self-report scale bounds for check-in fields.
const (
	MoodScaleMin = 0
	MoodScaleMax = 10
)

// Checkin is a weekly socioemotional self-report. Several check-ins may share
// a week; consumers pick the one with the highest week number.
type Checkin struct {
	ID           string    `json:"id" db:"id"`
	StudentID    string    `json:"student_id" db:"student_id"`
	WeekNumber   int       `json:"week_number" db:"week_number"`
	Motivation   int       `json:"motivation" db:"motivation"`
	Stress       int       `json:"stress" db:"stress"`
	Focus        int       `json:"focus" db:"focus"`
	Organization int       `json:"organization" db:"organization"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// SubmitCheckinRequest is the payload for a weekly check-in.
// Pointers distinguish a submitted 0 from a missing field.
type SubmitCheckinRequest struct {
	StudentID    string `json:"student_id" binding:"required,max=64"`
	WeekNumber   int    `json:"week_number" binding:"required,min=1"`
	Motivation   *int   `json:"motivation" binding:"required,min=0,max=10"`
	Stress       *int   `json:"stress" binding:"required,min=0,max=10"`
	Focus        *int   `json:"focus" binding:"required,min=0,max=10"`
	Organization *int   `json:"organization" binding:"required,min=0,max=10"`
}
