package audit

import (
	"context"
	"sync"
)

// MemoryRepository is an in-process append-only store.
// Suitable for tests and single-node deployments; swap in a Postgres
// implementation behind the same interface for durable audit.
type MemoryRepository struct {
	mu     sync.Mutex
	events []Event
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

func (r *MemoryRepository) Append(_ context.Context, e Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

// List returns a copy of all events, oldest first.
func (r *MemoryRepository) List() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}
