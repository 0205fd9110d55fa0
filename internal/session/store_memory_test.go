package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	dErrors "scribed/internal/domainerrors"
)

type MemoryStoreSuite struct {
	suite.Suite
	store *MemoryStore
	ctx   context.Context
}

func TestMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(MemoryStoreSuite))
}

func (s *MemoryStoreSuite) SetupTest() {
	s.store = NewMemoryStore()
	s.ctx = context.Background()
}

func (s *MemoryStoreSuite) TestSetGetRoundtrip() {
	snap := Snapshot{
		SessionID:  "sess-1",
		Stage:      StageRedacted,
		Language:   "fr",
		Transcript: "patient presente une toux",
	}
	s.Require().NoError(s.store.Set(s.ctx, "sess-1", snap, time.Minute))

	got, err := s.store.Get(s.ctx, "sess-1")
	s.Require().NoError(err)
	s.Equal(snap, *got)
}

func (s *MemoryStoreSuite) TestGetMissing() {
	_, err := s.store.Get(s.ctx, "nope")
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *MemoryStoreSuite) TestExpiry() {
	base := time.Now()
	s.store.now = func() time.Time { return base }

	s.Require().NoError(s.store.Set(s.ctx, "sess-1", Snapshot{SessionID: "sess-1"}, time.Minute))

	s.store.now = func() time.Time { return base.Add(2 * time.Minute) }
	_, err := s.store.Get(s.ctx, "sess-1")
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound), "expired session reads as not found")
}

func (s *MemoryStoreSuite) TestDelete() {
	require.NoError(s.T(), s.store.Set(s.ctx, "sess-1", Snapshot{SessionID: "sess-1"}, time.Minute))
	require.NoError(s.T(), s.store.Delete(s.ctx, "sess-1"))

	_, err := s.store.Get(s.ctx, "sess-1")
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *MemoryStoreSuite) TestLastWriterWins() {
	s.Require().NoError(s.store.Set(s.ctx, "sess-1", Snapshot{SessionID: "sess-1", Stage: StageStarted}, time.Minute))
	s.Require().NoError(s.store.Set(s.ctx, "sess-1", Snapshot{SessionID: "sess-1", Stage: StageFinalized}, time.Minute))

	got, err := s.store.Get(s.ctx, "sess-1")
	s.Require().NoError(err)
	s.Equal(StageFinalized, got.Stage)
}
