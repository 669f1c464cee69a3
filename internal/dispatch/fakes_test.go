package dispatch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"dispatch-voice/internal/agents"
	"dispatch-voice/internal/audit"
	"dispatch-voice/internal/calls"
	"dispatch-voice/internal/llm"
	"dispatch-voice/internal/scenario"
	"dispatch-voice/internal/telephony"
)

var testNow = time.Unix(1700000000, 0).UTC()

type fakeProvider struct {
	mu     sync.Mutex
	reqs   []telephony.PlaceCallRequest
	callID string
	err    error
	// onPlace runs before the provider answers, simulating a racing webhook.
	onPlace func(req telephony.PlaceCallRequest)
}

func (p *fakeProvider) Name() string { return "fake" }

func (p *fakeProvider) PlaceCall(ctx context.Context, req telephony.PlaceCallRequest) (telephony.PlaceCallResult, error) {
	p.mu.Lock()
	p.reqs = append(p.reqs, req)
	p.mu.Unlock()
	if p.onPlace != nil {
		p.onPlace(req)
	}
	if p.err != nil {
		return telephony.PlaceCallResult{}, p.err
	}
	return telephony.PlaceCallResult{CallID: p.callID}, nil
}

func (p *fakeProvider) requests() []telephony.PlaceCallRequest {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]telephony.PlaceCallRequest(nil), p.reqs...)
}

type fakeGenerator struct {
	mu   sync.Mutex
	reqs []llm.Request
	out  string
	err  error
}

func (g *fakeGenerator) Generate(ctx context.Context, req llm.Request) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.reqs = append(g.reqs, req)
	return g.out, g.err
}

func (g *fakeGenerator) requests() []llm.Request {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]llm.Request(nil), g.reqs...)
}

// brokenConfigs fails every lookup with a store error.
type brokenConfigs struct{}

func (brokenConfigs) Get(ctx context.Context, id string) (agents.Config, error) {
	return agents.Config{}, errors.New("connection reset")
}

type harness struct {
	svc      *Service
	configs  *agents.MemoryRepo
	calls    *calls.MemoryRepo
	audit    *audit.MemoryRepo
	provider *fakeProvider
	gen      *fakeGenerator
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		configs: agents.NewMemoryRepo(
			agents.Config{ID: "cfg-1", Name: "Check-in", SystemPrompt: "Hi {driver_name}, re load {load_number}", ScenarioType: scenario.TypeDriverCheckin},
			agents.Config{ID: "cfg-emergency", Name: "Emergency", SystemPrompt: "Stay calm", ScenarioType: scenario.TypeEmergencyProtocol},
		),
		calls:    calls.NewMemoryRepo(),
		audit:    audit.NewMemoryRepo(),
		provider: &fakeProvider{callID: "rc-1"},
		gen:      &fakeGenerator{},
	}
	h.svc = NewService(Deps{
		Configs:         h.configs,
		Calls:           h.calls,
		Provider:        h.provider,
		Generator:       h.gen,
		Audit:           audit.NewService(h.audit),
		FromNumber:      "+15550000000",
		OverrideAgentID: "agent_1",
	})
	h.svc.clock = func() time.Time { return testNow }
	h.svc.responder.clock = func() time.Time { return testNow }
	ids := 0
	h.svc.newID = func() string {
		ids++
		return fmt.Sprintf("log-%d", ids)
	}
	return h
}

func (h *harness) eventTypes(callLogID string) []audit.EventType {
	evs, _ := h.audit.ListByCall(context.Background(), callLogID)
	out := make([]audit.EventType, 0, len(evs))
	for _, e := range evs {
		out = append(out, e.Type)
	}
	return out
}

func intPtr(v int) *int { return &v }

// failingCompleteRepo serves reads from the wrapped store but fails every
// completion write, counting the attempts.
type failingCompleteRepo struct {
	calls.Repository

	mu       sync.Mutex
	attempts int
}

func (r *failingCompleteRepo) Complete(ctx context.Context, id string, in calls.Completion) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.attempts++
	return false, errors.New("connection reset")
}

func (r *failingCompleteRepo) completeAttempts() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.attempts
}
