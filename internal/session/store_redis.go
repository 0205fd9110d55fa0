package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	dErrors "scribed/internal/domainerrors"
)

const sessionKeyPrefix = "scribed:session:"

// RedisStore is the production session store. Expiry is delegated to Redis
// key TTLs, so a crashed pipeline leaves at most one stale snapshot behind,
// bounded by the configured lifetime.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore constructs a Redis-backed session store. The client lifecycle
// is managed externally.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Set(ctx context.Context, sessionID string, snap Snapshot, ttl time.Duration) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal session snapshot: %w", err)
	}
	if err := s.client.Set(ctx, sessionKeyPrefix+sessionID, payload, ttl).Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeCollaborator, "session store write failed")
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, sessionID string) (*Snapshot, error) {
	raw, err := s.client.Get(ctx, sessionKeyPrefix+sessionID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, dErrors.New(dErrors.CodeNotFound, "session not found")
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeCollaborator, "session store read failed")
	}

	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("unmarshal session snapshot: %w", err)
	}
	return &snap, nil
}

func (s *RedisStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, sessionKeyPrefix+sessionID).Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeCollaborator, "session store delete failed")
	}
	return nil
}
