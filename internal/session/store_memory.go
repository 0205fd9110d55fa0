package session

import (
	"context"
	"sync"
	"time"

	dErrors "scribed/internal/domainerrors"
)

// MemoryStore is an in-memory session store with TTL semantics for tests and
// non-production configurations.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

type memoryEntry struct {
	snap      Snapshot
	expiresAt time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (s *MemoryStore) Set(ctx context.Context, sessionID string, snap Snapshot, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[sessionID] = memoryEntry{snap: snap, expiresAt: s.now().Add(ttl)}
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, sessionID string) (*Snapshot, error) {
	s.mu.RLock()
	entry, ok := s.entries[sessionID]
	s.mu.RUnlock()

	if !ok || s.now().After(entry.expiresAt) {
		if ok {
			s.mu.Lock()
			delete(s.entries, sessionID)
			s.mu.Unlock()
		}
		return nil, dErrors.New(dErrors.CodeNotFound, "session not found")
	}

	snap := entry.snap
	return &snap, nil
}

func (s *MemoryStore) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, sessionID)
	return nil
}
