// Package dispatch orchestrates the call lifecycle: placing outbound calls and
// handling the provider's webhooks until the call is completed.
package dispatch

import (
	"context"
	"time"

	"dispatch-voice/internal/agents"
	"dispatch-voice/internal/audit"
	"dispatch-voice/internal/calls"
	"dispatch-voice/internal/llm"
	"dispatch-voice/internal/telephony"
	"dispatch-voice/pkg/logger"
	"dispatch-voice/pkg/utils"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// ConfigSource resolves agent configurations.
type ConfigSource interface {
	Get(ctx context.Context, id string) (agents.Config, error)
}

// Auditor records call lifecycle events.
type Auditor interface {
	Record(ctx context.Context, callLogID string, typ audit.EventType, message string, details map[string]any) error
}

type Deps struct {
	Configs   ConfigSource
	Calls     calls.Repository
	Provider  telephony.Provider
	Generator llm.Generator
	// Audit is optional.
	Audit Auditor

	FromNumber      string
	OverrideAgentID string
}

// Service is the call orchestrator. It holds no per-call state; every call
// is addressed through the call log store.
type Service struct {
	configs   ConfigSource
	calls     calls.Repository
	provider  telephony.Provider
	extractor *Extractor
	responder *Responder
	audit     Auditor
	validate  *validator.Validate

	fromNumber      string
	overrideAgentID string

	clock func() time.Time
	newID func() string
}

func NewService(d Deps) *Service {
	return &Service{
		configs:         d.Configs,
		calls:           d.Calls,
		provider:        d.Provider,
		extractor:       NewExtractor(d.Generator),
		responder:       NewResponder(d.Generator),
		audit:           d.Audit,
		validate:        utils.NewValidator(),
		fromNumber:      d.FromNumber,
		overrideAgentID: d.OverrideAgentID,
		clock:           time.Now,
		newID:           uuid.NewString,
	}
}

// record appends a lifecycle event; failures are logged and otherwise ignored.
func (s *Service) record(ctx context.Context, callLogID string, typ audit.EventType, message string, details map[string]any) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Record(ctx, callLogID, typ, message, details); err != nil {
		logger.From(ctx).Warn("audit append failed", "call_log_id", callLogID, "event", typ, "err", err)
	}
}
