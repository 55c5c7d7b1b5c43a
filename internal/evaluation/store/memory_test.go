package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"curaframe/internal/evaluation"
	"curaframe/internal/evaluation/ports"
)

var (
	_ ports.BatchHistoryStore = (*InMemoryHistoryStore)(nil)
	_ ports.BatchHistoryStore = (*PostgresHistoryStore)(nil)
	_ ports.BatchHistoryStore = (*RedisHistoryStore)(nil)
)

type InMemoryHistoryStoreSuite struct {
	suite.Suite
	store *InMemoryHistoryStore
	ctx   context.Context
}

func TestInMemoryHistoryStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryHistoryStoreSuite))
}

func (s *InMemoryHistoryStoreSuite) SetupTest() {
	s.store = NewInMemoryHistoryStore()
	s.ctx = context.Background()
}

func makeResult(candidate string, status evaluation.Status, at time.Time) *evaluation.Result {
	return &evaluation.Result{
		ID:            uuid.New(),
		Status:        status,
		Violations:    []evaluation.Violation{},
		Warnings:      []string{},
		CandidateName: candidate,
		EvaluatedAt:   at,
	}
}

func (s *InMemoryHistoryStoreSuite) seed() []*evaluation.Result {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	results := []*evaluation.Result{
		makeResult("aspirin", evaluation.StatusAccepted, base),
		makeResult("ibuprofen", evaluation.StatusRejected, base.Add(time.Minute)),
		makeResult("aspirin", evaluation.StatusRejected, base.Add(2*time.Minute)),
	}
	for _, r := range results {
		s.Require().NoError(s.store.Save(s.ctx, r))
	}
	return results
}

func (s *InMemoryHistoryStoreSuite) TestListRecentNewestFirst() {
	results := s.seed()

	got, err := s.store.ListRecent(s.ctx, 0)
	s.Require().NoError(err)
	s.Equal([]*evaluation.Result{results[2], results[1], results[0]}, got)
}

func (s *InMemoryHistoryStoreSuite) TestListRecentLimit() {
	results := s.seed()

	got, err := s.store.ListRecent(s.ctx, 2)
	s.Require().NoError(err)
	s.Equal([]*evaluation.Result{results[2], results[1]}, got)
}

func (s *InMemoryHistoryStoreSuite) TestListByCandidate() {
	results := s.seed()

	got, err := s.store.ListByCandidate(s.ctx, "aspirin", 0)
	s.Require().NoError(err)
	s.Equal([]*evaluation.Result{results[2], results[0]}, got)

	got, err = s.store.ListByCandidate(s.ctx, "aspirin", 1)
	s.Require().NoError(err)
	s.Equal([]*evaluation.Result{results[2]}, got)
}

func (s *InMemoryHistoryStoreSuite) TestListUnknownCandidateIsEmpty() {
	s.seed()

	got, err := s.store.ListByCandidate(s.ctx, "unknown", 5)
	s.Require().NoError(err)
	s.NotNil(got)
	s.Empty(got)
}

func (s *InMemoryHistoryStoreSuite) TestSaveNil() {
	err := s.store.Save(s.ctx, nil)
	s.ErrorIs(err, ErrNilResult)
	s.Equal(0, s.store.Len())
}

func (s *InMemoryHistoryStoreSuite) TestSaveAll() {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	batch := []*evaluation.Result{
		makeResult("aspirin", evaluation.StatusAccepted, base),
		makeResult("ibuprofen", evaluation.StatusRejected, base.Add(time.Minute)),
	}

	s.Run("stores the whole batch in order", func() {
		s.Require().NoError(s.store.SaveAll(s.ctx, batch))
		got, err := s.store.ListRecent(s.ctx, 0)
		s.Require().NoError(err)
		s.Equal([]*evaluation.Result{batch[1], batch[0]}, got)
	})

	s.Run("a nil entry stores nothing", func() {
		before := s.store.Len()
		err := s.store.SaveAll(s.ctx, []*evaluation.Result{
			makeResult("naproxen", evaluation.StatusAccepted, base.Add(2*time.Minute)),
			nil,
		})
		s.ErrorIs(err, ErrNilResult)
		s.Equal(before, s.store.Len())
	})
}
