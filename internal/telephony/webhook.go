package telephony

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

var ErrMalformedWebhook = errors.New("telephony: malformed webhook")

// Interaction types sent by the provider.
const (
	InteractionCallEnded  = "call_ended"
	InteractionUpdateOnly = "update_only"
)

// WebhookEvent is the inbound provider envelope.
type WebhookEvent struct {
	InteractionType string `json:"interaction_type"`
	Call            Call   `json:"call"`
	Transcript      []Turn `json:"transcript,omitempty"`
}

type Call struct {
	CallID            string        `json:"call_id"`
	CallLengthSeconds *int          `json:"call_length_seconds,omitempty"`
	Metadata          *CallMetadata `json:"metadata,omitempty"`
}

// Turn is one utterance; Role is "agent" or "user".
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ScenarioType returns the echoed scenario, or "" when the call carries no metadata.
func (e WebhookEvent) ScenarioType() string {
	if e.Call.Metadata == nil {
		return ""
	}
	return strings.TrimSpace(e.Call.Metadata.ScenarioType)
}

// ParseWebhook decodes one provider event. The body must be exactly one JSON
// object; anything else wraps ErrMalformedWebhook.
func ParseWebhook(r io.Reader) (WebhookEvent, error) {
	dec := json.NewDecoder(r)
	var raw json.RawMessage
	if err := dec.Decode(&raw); err != nil {
		return WebhookEvent{}, fmt.Errorf("%w: %v", ErrMalformedWebhook, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return WebhookEvent{}, fmt.Errorf("%w: trailing data after JSON object", ErrMalformedWebhook)
	}
	if len(raw) == 0 || raw[0] != '{' {
		return WebhookEvent{}, fmt.Errorf("%w: body is not a JSON object", ErrMalformedWebhook)
	}

	var ev WebhookEvent
	if err := json.Unmarshal(raw, &ev); err != nil {
		return WebhookEvent{}, fmt.Errorf("%w: %v", ErrMalformedWebhook, err)
	}
	return ev, nil
}

// JoinTranscript renders turns as "role: content" lines.
func JoinTranscript(turns []Turn) string {
	lines := make([]string, 0, len(turns))
	for _, t := range turns {
		lines = append(lines, t.Role+": "+t.Content)
	}
	return strings.Join(lines, "\n")
}
