package audit

import (
	"context"
	"maps"
	"sync"
)

// Store persists audit events. It is append-only.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByOwner(ctx context.Context, owner string) ([]Event, error)
}

type InMemoryStore struct {
	mu     sync.RWMutex
	events map[string][]Event
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{events: make(map[string][]Event)}
}

func (s *InMemoryStore) Append(_ context.Context, event Event) error {
	event.Attributes = maps.Clone(event.Attributes)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[event.Owner] = append(s.events[event.Owner], event)
	return nil
}

// ListByOwner returns the owner's events, oldest first.
func (s *InMemoryStore) ListByOwner(_ context.Context, owner string) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Event, 0, len(s.events[owner]))
	for _, e := range s.events[owner] {
		e.Attributes = maps.Clone(e.Attributes)
		out = append(out, e)
	}
	return out, nil
}
