package audit

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory audit store for tests and non-production
// configurations without Postgres.
type MemoryStore struct {
	mu     sync.RWMutex
	events []Event
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Append(ctx context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *MemoryStore) ListBySession(ctx context.Context, sessionID string) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Event
	for _, e := range s.events {
		if e.SessionID == sessionID {
			out = append(out, e)
		}
	}
	return out, nil
}
