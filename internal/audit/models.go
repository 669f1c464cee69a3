package audit

import "time"

// Event is an immutable, append-only record of one step in a call's lifecycle.
//
// Events are never updated or deleted. Recording is best-effort; callers must
// not fail a call because an event could not be written.
type Event struct {
	ID        string    `json:"id" db:"id"`
	CallLogID string    `json:"call_log_id" db:"call_log_id"`
	Type      EventType `json:"type" db:"type"`

	// Message is a short human-readable description for operators.
	Message string `json:"message,omitempty" db:"message"`

	// Metadata is optional JSON with full details.
	Metadata string `json:"metadata,omitempty" db:"metadata"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type EventType string

const (
	EventCallTriggered    EventType = "call_triggered"
	EventProviderRejected EventType = "provider_rejected"
	EventCallInProgress   EventType = "call_in_progress"
	EventCallCompleted    EventType = "call_completed"
	EventExtractionFailed EventType = "extraction_failed"
	EventWebhookDropped   EventType = "webhook_dropped"
)
