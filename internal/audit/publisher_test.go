package audit

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPublisherRecord(t *testing.T) {
	store := NewMemoryStore()
	pub := NewPublisher(store)
	ctx := context.Background()

	err := pub.Record(ctx, EventTranscriptionRequested, "dr.tremblay", "sess-1", OutcomeSuccess,
		map[string]any{"size": 42})
	require.NoError(t, err)

	events, err := pub.List(ctx, "sess-1")
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, EventTranscriptionRequested, events[0].EventType)
	require.Equal(t, "dr.tremblay", events[0].Actor)
	require.Equal(t, OutcomeSuccess, events[0].Outcome)
	require.False(t, events[0].Timestamp.IsZero(), "publisher stamps time when unset")
	require.Equal(t, 42, events[0].Metadata["size"])
}

func TestMemoryStoreFiltersBySession(t *testing.T) {
	store := NewMemoryStore()
	pub := NewPublisher(store)
	ctx := context.Background()

	require.NoError(t, pub.Record(ctx, EventTranscriptRedacted, "a", "sess-1", OutcomeSuccess, nil))
	require.NoError(t, pub.Record(ctx, EventTranscriptRedacted, "a", "sess-2", OutcomeSuccess, nil))

	events, err := pub.List(ctx, "sess-2")
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, "sess-2", events[0].SessionID)
}
