package dispatch

import (
	"context"
	"errors"

	"dispatch-voice/internal/audit"
	"dispatch-voice/internal/calls"
	"dispatch-voice/internal/scenario"
	"dispatch-voice/internal/telephony"
	"dispatch-voice/pkg/logger"
)

const AckMessage = "Webhook received successfully"

var errCorrelationMismatch = errors.New("dispatch: call log belongs to another provider call")

// HandleWebhook processes one parsed provider event and returns the body to
// send back. It never fails: completion problems are logged, not surfaced,
// so the provider does not redeliver.
func (s *Service) HandleWebhook(ctx context.Context, ev telephony.WebhookEvent) Reply {
	log := logger.From(ctx).With("provider_call_id", ev.Call.CallID, "interaction_type", ev.InteractionType)
	webhooksTotal.WithLabelValues(interactionLabel(ev.InteractionType)).Inc()

	switch ev.InteractionType {
	case telephony.InteractionCallEnded:
		s.completeCall(logger.With(ctx, log), ev)
	case telephony.InteractionUpdateOnly:
		log.Debug("real-time update received")
	default:
		log.Debug("ignoring interaction type")
	}

	if ev.ScenarioType() != "" {
		return s.responder.Reply(ctx, ev)
	}
	return Reply{Response: AckMessage}
}

// completeCall is the call_ended path. It writes the completion fields once;
// a log that is already terminal is left alone.
func (s *Service) completeCall(ctx context.Context, ev telephony.WebhookEvent) {
	log := logger.From(ctx)

	callLog, err := s.findCallLog(ctx, ev)
	if err != nil {
		switch {
		case errors.Is(err, errCorrelationMismatch):
			log.Warn("call_ended metadata points at another call, dropping event", "call_log_id", callLog.ID, "expected_provider_call_id", callLog.ProviderCallID)
			s.record(ctx, callLog.ID, audit.EventWebhookDropped, "call_ended for another provider call", map[string]any{
				"provider_call_id": ev.Call.CallID,
			})
		case errors.Is(err, calls.ErrNotFound):
			log.Warn("no call log for ended call, dropping event")
		default:
			log.Error("call log lookup failed, dropping event", "err", err)
		}
		completionsTotal.WithLabelValues(resultDropped).Inc()
		return
	}

	log = log.With("call_log_id", callLog.ID)
	if callLog.Status.Terminal() {
		log.Info("call log already terminal, ignoring duplicate call_ended", "call_status", callLog.Status)
		completionsTotal.WithLabelValues(resultDuplicate).Inc()
		return
	}

	transcript := telephony.JoinTranscript(ev.Transcript)
	typ := s.scenarioFor(ctx, callLog, ev)

	data, err := s.extractor.Extract(ctx, typ, transcript)
	if err != nil {
		log.Warn("structured extraction failed, storing error marker", "scenario_type", typ, "err", err)
		extractionsTotal.WithLabelValues(string(typ), resultError).Inc()
		s.record(ctx, callLog.ID, audit.EventExtractionFailed, "structured extraction failed", map[string]any{
			"scenario_type": typ,
			"error":         err.Error(),
		})
	} else {
		extractionsTotal.WithLabelValues(string(typ), resultOK).Inc()
	}

	duration := 0
	if ev.Call.CallLengthSeconds != nil && *ev.Call.CallLengthSeconds > 0 {
		duration = *ev.Call.CallLengthSeconds
	}

	done, err := s.calls.Complete(ctx, callLog.ID, calls.Completion{
		ProviderCallID: ev.Call.CallID,
		CompletedAt:    s.clock().UTC(),
		Duration:       duration,
		Transcript:     transcript,
		StructuredData: data,
	})
	switch {
	case err != nil:
		log.Error("failed to complete call log", "err", err)
		completionsTotal.WithLabelValues(resultError).Inc()
	case !done:
		log.Info("call log completed concurrently, skipping write")
		completionsTotal.WithLabelValues(resultDuplicate).Inc()
	default:
		log.Info("call completed", "call_duration", duration)
		completionsTotal.WithLabelValues(resultOK).Inc()
		s.record(ctx, callLog.ID, audit.EventCallCompleted, "call completed", map[string]any{
			"call_duration": duration,
		})
	}
}

// findCallLog joins on provider_call_id, falling back to the call_log_id the
// trigger put in the metadata. That covers a call_ended that beats the
// trigger's in_progress write.
func (s *Service) findCallLog(ctx context.Context, ev telephony.WebhookEvent) (calls.CallLog, error) {
	if ev.Call.CallID != "" {
		callLog, err := s.calls.GetByProviderCallID(ctx, ev.Call.CallID)
		if err == nil || !errors.Is(err, calls.ErrNotFound) {
			return callLog, err
		}
	}

	md := ev.Call.Metadata
	if md == nil || md.CallLogID == "" {
		return calls.CallLog{}, calls.ErrNotFound
	}
	callLog, err := s.calls.Get(ctx, md.CallLogID)
	if err != nil {
		return calls.CallLog{}, err
	}
	if callLog.ProviderCallID != "" && callLog.ProviderCallID != ev.Call.CallID {
		return callLog, errCorrelationMismatch
	}
	return callLog, nil
}

// scenarioFor prefers the scenario of the call's configuration and falls back
// to the one echoed in the webhook metadata.
func (s *Service) scenarioFor(ctx context.Context, callLog calls.CallLog, ev telephony.WebhookEvent) scenario.Type {
	cfg, err := s.configs.Get(ctx, callLog.AgentConfigID)
	if err == nil {
		return cfg.ScenarioType
	}
	logger.From(ctx).Warn("agent config unavailable for extraction, using webhook metadata", "agent_config_id", callLog.AgentConfigID, "err", err)
	return scenario.Type(ev.ScenarioType())
}

func interactionLabel(t string) string {
	switch t {
	case telephony.InteractionCallEnded, telephony.InteractionUpdateOnly:
		return t
	default:
		return "other"
	}
}
