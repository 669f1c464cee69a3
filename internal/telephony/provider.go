package telephony

import (
	"context"
	"errors"
	"fmt"
)

// Provider places outbound calls at a voice-call provider.
//
// Lifecycle events come back asynchronously through the webhook (see ParseWebhook).
type Provider interface {
	Name() string
	PlaceCall(ctx context.Context, req PlaceCallRequest) (PlaceCallResult, error)
}

// PlaceCallRequest is provider-agnostic; adapters map it onto their wire format.
type PlaceCallRequest struct {
	// FromNumber and ToNumber are E.164 where possible.
	FromNumber string
	ToNumber   string

	// OverrideAgentID selects the provider-side agent that runs the script.
	OverrideAgentID string

	// Script is the system prompt with placeholders already substituted.
	Script string

	Metadata CallMetadata
}

// CallMetadata is echoed back by the provider on every webhook for the call.
type CallMetadata struct {
	CallLogID    string `json:"call_log_id,omitempty"`
	DriverName   string `json:"driver_name,omitempty"`
	LoadNumber   string `json:"load_number,omitempty"`
	ScenarioType string `json:"scenario_type,omitempty"`
}

type PlaceCallResult struct {
	// CallID is the provider's identifier, the join key for inbound webhooks.
	CallID string `json:"call_id"`
}

var ErrNoCallID = errors.New("telephony: provider returned no call_id")

// APIError is a non-2xx answer from the provider.
type APIError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("telephony: %s returned %d: %s", e.Provider, e.StatusCode, e.Body)
}
