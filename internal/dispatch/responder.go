package dispatch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"dispatch-voice/internal/llm"
	"dispatch-voice/internal/scenario"
	"dispatch-voice/internal/telephony"
	"dispatch-voice/pkg/logger"
)

const (
	// contextTurns is how many trailing transcript turns the model sees.
	contextTurns     = 5
	replyMaxTokens   = 150
	replyTemperature = 0.7

	FallbackReply = "I'm having technical difficulties. Let me transfer you to a human dispatcher."
)

// Reply is the synchronous body returned to the voice provider.
type Reply struct {
	Response   string `json:"response"`
	ResponseID *int64 `json:"response_id,omitempty"`
}

// Responder generates the agent's next utterance while a call is live.
type Responder struct {
	gen   llm.Generator
	clock func() time.Time
}

func NewResponder(gen llm.Generator) *Responder {
	return &Responder{gen: gen, clock: time.Now}
}

// Reply never fails: any problem yields FallbackReply with a fresh response id.
func (r *Responder) Reply(ctx context.Context, ev telephony.WebhookEvent) Reply {
	log := logger.From(ctx).With("provider_call_id", ev.Call.CallID)

	var md telephony.CallMetadata
	if ev.Call.Metadata != nil {
		md = *ev.Call.Metadata
	}
	requested := scenario.Type(ev.ScenarioType())
	turns := lastTurns(ev.Transcript, contextTurns)

	sc, ok := scenario.ForReply(requested, latestUserTurn(turns))
	if !ok {
		log.Warn("unknown scenario for live reply", "scenario_type", requested)
		repliesTotal.WithLabelValues(string(requested), resultFallback).Inc()
		return r.reply(FallbackReply)
	}
	if sc.Type() != requested {
		log.Info("emergency keyword detected, switching scenario", "from", requested, "to", sc.Type())
	}

	text, err := r.gen.Generate(ctx, llm.Request{
		System:      sc.ResponseInstruction(scenario.Participants{DriverName: md.DriverName, LoadNumber: md.LoadNumber}),
		Prompt:      fmt.Sprintf("Current conversation context:\n%s\n\nGenerate the next appropriate response.", telephony.JoinTranscript(turns)),
		Temperature: replyTemperature,
		MaxTokens:   replyMaxTokens,
	})
	text = strings.TrimSpace(text)
	if err == nil && text == "" {
		err = errors.New("empty reply")
	}
	if err != nil {
		log.Warn("live reply generation failed, handing off", "scenario_type", sc.Type(), "err", fmt.Errorf("%w: %w", ErrGeneration, err))
		repliesTotal.WithLabelValues(string(sc.Type()), resultFallback).Inc()
		return r.reply(FallbackReply)
	}

	repliesTotal.WithLabelValues(string(sc.Type()), resultOK).Inc()
	return r.reply(text)
}

func (r *Responder) reply(text string) Reply {
	id := r.clock().UnixMilli()
	return Reply{Response: text, ResponseID: &id}
}

func lastTurns(turns []telephony.Turn, n int) []telephony.Turn {
	if len(turns) <= n {
		return turns
	}
	return turns[len(turns)-n:]
}

func latestUserTurn(turns []telephony.Turn) string {
	for i := len(turns) - 1; i >= 0; i-- {
		if turns[i].Role == "user" {
			return turns[i].Content
		}
	}
	return ""
}
