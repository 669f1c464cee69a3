package dispatch

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"dispatch-voice/internal/agents"
	"dispatch-voice/internal/audit"
	"dispatch-voice/internal/calls"
	"dispatch-voice/internal/telephony"
	"dispatch-voice/pkg/logger"
	"dispatch-voice/pkg/utils"
)

type TriggerRequest struct {
	AgentConfigID string `json:"agent_config_id" validate:"required"`
	DriverName    string `json:"driver_name" validate:"required"`
	DriverPhone   string `json:"driver_phone" validate:"required"`
	LoadNumber    string `json:"load_number" validate:"required"`
}

type TriggerResult struct {
	CallID    string `json:"call_id"`
	CallLogID string `json:"call_log_id"`
	Message   string `json:"message"`
}

// RenderScript substitutes the driver placeholders literally. Unknown
// placeholders are left untouched.
func RenderScript(prompt, driverName, loadNumber string) string {
	prompt = strings.ReplaceAll(prompt, "{driver_name}", driverName)
	return strings.ReplaceAll(prompt, "{load_number}", loadNumber)
}

// TriggerCall creates the call log and places exactly one outbound call.
//
// The log is written before the provider is contacted so that a webhook racing
// the provider's answer can already find it through the metadata call_log_id.
// On a provider error the log stays initiated and CallLogID is still returned.
func (s *Service) TriggerCall(ctx context.Context, req TriggerRequest) (TriggerResult, error) {
	req.AgentConfigID = strings.TrimSpace(req.AgentConfigID)
	req.DriverName = strings.TrimSpace(req.DriverName)
	req.DriverPhone = strings.TrimSpace(req.DriverPhone)
	req.LoadNumber = strings.TrimSpace(req.LoadNumber)

	if err := s.validate.Struct(req); err != nil {
		triggersTotal.WithLabelValues(resultInvalid).Inc()
		return TriggerResult{}, fmt.Errorf("%w: %s", ErrValidation, utils.DescribeValidation(err))
	}

	cfg, err := s.configs.Get(ctx, req.AgentConfigID)
	if err != nil {
		if errors.Is(err, agents.ErrNotFound) {
			triggersTotal.WithLabelValues(resultNotFound).Inc()
			return TriggerResult{}, fmt.Errorf("%w: %s", ErrConfigNotFound, req.AgentConfigID)
		}
		triggersTotal.WithLabelValues(resultError).Inc()
		return TriggerResult{}, fmt.Errorf("dispatch: load agent config: %w", err)
	}

	now := s.clock().UTC()
	callLog := calls.CallLog{
		ID:            s.newID(),
		AgentConfigID: cfg.ID,
		DriverName:    req.DriverName,
		DriverPhone:   req.DriverPhone,
		LoadNumber:    req.LoadNumber,
		Status:        calls.CallStatusInitiated,
		StartedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.calls.Create(ctx, callLog); err != nil {
		triggersTotal.WithLabelValues(resultError).Inc()
		return TriggerResult{}, fmt.Errorf("dispatch: create call log: %w", err)
	}

	log := logger.From(ctx).With("call_log_id", callLog.ID, "agent_config_id", cfg.ID)
	log.Info("call log created", "scenario_type", cfg.ScenarioType)
	s.record(ctx, callLog.ID, audit.EventCallTriggered, "call triggered", map[string]any{
		"agent_config_id": cfg.ID,
		"scenario_type":   cfg.ScenarioType,
	})

	placed, err := s.provider.PlaceCall(ctx, telephony.PlaceCallRequest{
		FromNumber:      s.fromNumber,
		ToNumber:        req.DriverPhone,
		OverrideAgentID: s.overrideAgentID,
		Script:          RenderScript(cfg.SystemPrompt, req.DriverName, req.LoadNumber),
		Metadata: telephony.CallMetadata{
			CallLogID:    callLog.ID,
			DriverName:   req.DriverName,
			LoadNumber:   req.LoadNumber,
			ScenarioType: string(cfg.ScenarioType),
		},
	})
	if err != nil {
		log.Error("voice provider did not place call", "provider", s.provider.Name(), "err", err)
		details := map[string]any{"error": err.Error()}
		var apiErr *telephony.APIError
		if errors.As(err, &apiErr) {
			details["status_code"] = apiErr.StatusCode
		}
		s.record(ctx, callLog.ID, audit.EventProviderRejected, "voice provider did not place call", details)
		triggersTotal.WithLabelValues(resultRejected).Inc()
		return TriggerResult{CallLogID: callLog.ID}, fmt.Errorf("%w: %w", ErrProvider, err)
	}

	// The call is already placed; a failed bookkeeping write must not be
	// reported as a failure, or the caller would dial the driver twice.
	moved, err := s.calls.MarkInProgress(ctx, callLog.ID, placed.CallID, s.clock().UTC())
	switch {
	case err != nil:
		log.Error("failed to mark call log in progress", "provider_call_id", placed.CallID, "err", err)
	case !moved:
		log.Info("call log already advanced by webhook", "provider_call_id", placed.CallID)
	default:
		s.record(ctx, callLog.ID, audit.EventCallInProgress, "call accepted by provider", map[string]any{
			"provider_call_id": placed.CallID,
		})
	}

	triggersTotal.WithLabelValues(resultOK).Inc()
	return TriggerResult{
		CallID:    placed.CallID,
		CallLogID: callLog.ID,
		Message:   fmt.Sprintf("Call initiated to %s about Load #%s", req.DriverName, req.LoadNumber),
	}, nil
}
