package agents

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo is a simple in-memory repository useful for tests and local runs.
type MemoryRepo struct {
	mu      sync.Mutex
	configs map[string]Config
}

func NewMemoryRepo(seed ...Config) *MemoryRepo {
	r := &MemoryRepo{configs: make(map[string]Config, len(seed))}
	for _, c := range seed {
		r.configs[c.ID] = c
	}
	return r
}

func (r *MemoryRepo) Create(ctx context.Context, c Config) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.configs[c.ID] = c
	return nil
}

func (r *MemoryRepo) Get(ctx context.Context, id string) (Config, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.configs[id]
	if !ok {
		return Config{}, ErrNotFound
	}
	return c, nil
}

func (r *MemoryRepo) List(ctx context.Context, limit int) ([]Config, error) {
	r.mu.Lock()
	out := make([]Config, 0, len(r.configs))
	for _, c := range r.configs {
		out = append(out, c)
	}
	r.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
