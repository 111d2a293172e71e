package model

import "time"

// FollowUp records progress (0-10) on an intervention.
type FollowUp struct {
	ID             string    `json:"id" db:"id"`
	InterventionID string    `json:"intervention_id" db:"intervention_id"`
	Observations   string    `json:"observations" db:"observations"`
	Progress       int       `json:"progress" db:"progress"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

// CreateFollowUpRequest is the payload for recording a follow-up.
type CreateFollowUpRequest struct {
	InterventionID string `json:"intervention_id" binding:"required,max=64"`
	Observations   string `json:"observations" binding:"required,max=4000"`
	Progress       *int   `json:"progress" binding:"required,min=0,max=10"`
}
