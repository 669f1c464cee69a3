package calls

import (
	"encoding/json"
	"time"
)

// CallLog is one outbound call attempt and everything learned about it.
//
// ProviderCallID is empty until the voice provider accepts the call and is
// never changed after that. FullTranscript and StructuredData are written once,
// by the completion path.
type CallLog struct {
	ID            string `json:"id" db:"id"`
	AgentConfigID string `json:"agent_config_id" db:"agent_config_id"`

	// ProviderCallID is stored as NULL while empty.
	ProviderCallID string `json:"provider_call_id,omitempty" db:"provider_call_id"`

	DriverName  string `json:"driver_name" db:"driver_name"`
	DriverPhone string `json:"driver_phone" db:"driver_phone"`
	LoadNumber  string `json:"load_number" db:"load_number"`

	Status CallStatus `json:"call_status" db:"call_status"`

	StartedAt   time.Time  `json:"started_at" db:"started_at"`
	CompletedAt *time.Time `json:"completed_at" db:"completed_at"`

	// CallDuration is in seconds.
	CallDuration   *int            `json:"call_duration" db:"call_duration"`
	FullTranscript *string         `json:"full_transcript" db:"full_transcript"`
	StructuredData json.RawMessage `json:"structured_data" db:"structured_data"`

	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

type CallStatus string

const (
	CallStatusInitiated  CallStatus = "initiated"
	CallStatusInProgress CallStatus = "in_progress"
	CallStatusCompleted  CallStatus = "completed"
	CallStatusFailed     CallStatus = "failed"
)

// Terminal reports whether no further transition is allowed from s.
func (s CallStatus) Terminal() bool {
	return s == CallStatusCompleted || s == CallStatusFailed
}

// Completion is the single write performed when a call ends.
type Completion struct {
	// ProviderCallID is recorded only if the log has none yet.
	ProviderCallID string
	CompletedAt    time.Time
	Duration       int
	Transcript     string
	StructuredData json.RawMessage
}
