package session

import (
	"context"
	"time"
)

// Store is the ephemeral session store. Snapshots expire after their TTL or on
// explicit delete; callers must treat a missing or expired session as not
// found. Last-writer-wins on concurrent writes to the same session ID; no
// cross-request locking is provided.
type Store interface {
	Set(ctx context.Context, sessionID string, snap Snapshot, ttl time.Duration) error
	Get(ctx context.Context, sessionID string) (*Snapshot, error)
	Delete(ctx context.Context, sessionID string) error
}
