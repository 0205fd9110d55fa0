package audit

import (
	"context"
	"time"
)

// Store persists audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListBySession(ctx context.Context, sessionID string) ([]Event, error)
}

// Publisher captures structured audit events. It is append-only and uses the
// storage layer for persistence so tests can swap sinks easily.
//
// Record is synchronous: a stage is not complete until its audit record has
// been accepted by the store.
type Publisher struct {
	store Store
}

func NewPublisher(store Store) *Publisher {
	return &Publisher{store: store}
}

// Record persists one audit event, stamping the time if unset.
func (p *Publisher) Record(ctx context.Context, eventType, actor, sessionID, outcome string, metadata map[string]any) error {
	return p.Emit(ctx, Event{
		EventType: eventType,
		Actor:     actor,
		SessionID: sessionID,
		Outcome:   outcome,
		Metadata:  metadata,
	})
}

func (p *Publisher) Emit(ctx context.Context, event Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	return p.store.Append(ctx, event)
}

func (p *Publisher) List(ctx context.Context, sessionID string) ([]Event, error) {
	return p.store.ListBySession(ctx, sessionID)
}
