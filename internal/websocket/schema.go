package websocket

import "time"

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionPing Action = "ping"
)

// RequestEnvelope is used to peek at the action before full parsing.
type RequestEnvelope struct {
	Action Action `json:"action"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventError       Event = "error"
	EventSubscribed  Event = "subscribed"
	EventRiskChanged Event = "risk_changed"
	EventPong        Event = "pong"
)

// RiskChangedEvent is published whenever a recalculation writes a different
// risk index. It travels over Redis Pub/Sub and is forwarded verbatim to
// WebSocket clients.
type RiskChangedEvent struct {
	Event         Event     `json:"event"`
	StudentID     string    `json:"student_id"`
	PreviousIndex int       `json:"previous_index"`
	RiskIndex     int       `json:"risk_index"`
	Level         string    `json:"level"`
	Label         string    `json:"label"`
	Color         string    `json:"color"`
	At            time.Time `json:"at"`
}

// SubscribedResponse confirms which channel a client is attached to.
type SubscribedResponse struct {
	Event     Event  `json:"event"`
	StudentID string `json:"student_id,omitempty"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
