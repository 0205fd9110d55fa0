package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// PostgresStore persists audit events to the audit_events table.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a PostgreSQL-backed audit store.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates the audit_events table if it does not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS audit_events (
			id UUID PRIMARY KEY,
			event_type TEXT NOT NULL,
			actor TEXT NOT NULL,
			session_id TEXT,
			timestamp TIMESTAMPTZ NOT NULL,
			outcome TEXT NOT NULL,
			metadata JSONB
		)
	`)
	if err != nil {
		return fmt.Errorf("create audit_events table: %w", err)
	}
	return nil
}

// Append writes one audit event.
func (s *PostgresStore) Append(ctx context.Context, event Event) error {
	var metadata []byte
	if event.Metadata != nil {
		var err error
		metadata, err = json.Marshal(event.Metadata)
		if err != nil {
			return fmt.Errorf("marshal audit metadata: %w", err)
		}
	}

	query := `
		INSERT INTO audit_events (id, event_type, actor, session_id, timestamp, outcome, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := s.db.ExecContext(ctx, query,
		uuid.New(),
		event.EventType,
		event.Actor,
		event.SessionID,
		event.Timestamp,
		event.Outcome,
		metadata,
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

// ListBySession returns events for a specific session, oldest first.
func (s *PostgresStore) ListBySession(ctx context.Context, sessionID string) ([]Event, error) {
	query := `
		SELECT event_type, actor, session_id, timestamp, outcome, metadata
		FROM audit_events
		WHERE session_id = $1
		ORDER BY timestamp ASC
	`
	rows, err := s.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var (
			event    Event
			metadata []byte
		)
		err := rows.Scan(
			&event.EventType,
			&event.Actor,
			&event.SessionID,
			&event.Timestamp,
			&event.Outcome,
			&metadata,
		)
		if err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &event.Metadata); err != nil {
				return nil, fmt.Errorf("unmarshal audit metadata: %w", err)
			}
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return events, nil
}
