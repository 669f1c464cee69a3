package calls

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// MemoryRepo is an in-memory repository for tests and local runs.
// It enforces the same conditional transitions as PostgresRepo.
type MemoryRepo struct {
	mu         sync.Mutex
	logs       map[string]CallLog
	byProvider map[string]string
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{logs: map[string]CallLog{}, byProvider: map[string]string{}}
}

func (r *MemoryRepo) Create(ctx context.Context, c CallLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.logs[c.ID]; ok {
		return fmt.Errorf("calls: duplicate id %q", c.ID)
	}
	if c.ProviderCallID != "" {
		if _, taken := r.byProvider[c.ProviderCallID]; taken {
			return fmt.Errorf("calls: duplicate provider_call_id %q", c.ProviderCallID)
		}
		r.byProvider[c.ProviderCallID] = c.ID
	}
	r.logs[c.ID] = c
	return nil
}

func (r *MemoryRepo) Get(ctx context.Context, id string) (CallLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.logs[id]
	if !ok {
		return CallLog{}, ErrNotFound
	}
	return c, nil
}

func (r *MemoryRepo) GetByProviderCallID(ctx context.Context, providerCallID string) (CallLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.byProvider[providerCallID]
	if !ok {
		return CallLog{}, ErrNotFound
	}
	return r.logs[id], nil
}

func (r *MemoryRepo) MarkInProgress(ctx context.Context, id, providerCallID string, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.logs[id]
	if !ok || c.Status != CallStatusInitiated || c.ProviderCallID != "" {
		return false, nil
	}
	if _, taken := r.byProvider[providerCallID]; taken {
		return false, fmt.Errorf("calls: duplicate provider_call_id %q", providerCallID)
	}
	c.ProviderCallID = providerCallID
	c.Status = CallStatusInProgress
	c.UpdatedAt = at
	r.byProvider[providerCallID] = id
	r.logs[id] = c
	return true, nil
}

func (r *MemoryRepo) Complete(ctx context.Context, id string, in Completion) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.logs[id]
	if !ok || c.Status.Terminal() {
		return false, nil
	}
	if c.ProviderCallID != "" && in.ProviderCallID != "" && c.ProviderCallID != in.ProviderCallID {
		return false, nil
	}
	if c.ProviderCallID == "" && in.ProviderCallID != "" {
		if _, taken := r.byProvider[in.ProviderCallID]; taken {
			return false, fmt.Errorf("calls: duplicate provider_call_id %q", in.ProviderCallID)
		}
		c.ProviderCallID = in.ProviderCallID
		r.byProvider[in.ProviderCallID] = id
	}

	completedAt := in.CompletedAt
	duration := in.Duration
	transcript := in.Transcript
	c.Status = CallStatusCompleted
	c.CompletedAt = &completedAt
	c.CallDuration = &duration
	c.FullTranscript = &transcript
	c.StructuredData = append([]byte(nil), in.StructuredData...)
	c.UpdatedAt = completedAt
	r.logs[id] = c
	return true, nil
}

func (r *MemoryRepo) List(ctx context.Context, limit int) ([]CallLog, error) {
	out := r.snapshot(func(CallLog) bool { return true })
	sort.Slice(out, func(i, j int) bool { return out[i].StartedAt.After(out[j].StartedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *MemoryRepo) ListBetween(ctx context.Context, from, to time.Time) ([]CallLog, error) {
	out := r.snapshot(func(c CallLog) bool {
		return !c.StartedAt.Before(from) && c.StartedAt.Before(to)
	})
	sort.Slice(out, func(i, j int) bool { return out[i].StartedAt.Before(out[j].StartedAt) })
	return out, nil
}

func (r *MemoryRepo) snapshot(keep func(CallLog) bool) []CallLog {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]CallLog, 0, len(r.logs))
	for _, c := range r.logs {
		if keep(c) {
			out = append(out, c)
		}
	}
	return out
}
