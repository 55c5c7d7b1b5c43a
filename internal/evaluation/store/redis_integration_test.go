//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"curaframe/internal/evaluation"
	"curaframe/internal/evaluation/store"
	"curaframe/pkg/testutil/containers"
)

type RedisHistoryStoreSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	store *store.RedisHistoryStore
}

func TestRedisHistoryStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisHistoryStoreSuite))
}

func (s *RedisHistoryStoreSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.redis = mgr.GetRedis(s.T())
	s.store = store.NewRedis(s.redis.Client)
}

func (s *RedisHistoryStoreSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisHistoryStoreSuite) TestSaveAndList() {
	ctx := context.Background()
	base := time.Now()
	first := rejected("compound-a", base)
	second := rejected("compound-a", base.Add(time.Second))
	other := rejected("compound-b", base.Add(2*time.Second))
	for _, r := range []*evaluation.Result{first, second, other} {
		s.Require().NoError(s.store.Save(ctx, r))
	}

	got, err := s.store.ListByCandidate(ctx, "compound-a", 0)
	s.Require().NoError(err)
	s.Require().Len(got, 2)
	s.Equal(second.ID, got[0].ID)
	s.Equal(first.ID, got[1].ID)
	s.Equal(evaluation.StatusRejected, got[0].Status)
	s.Equal("elderly", got[0].Population)

	recent, err := s.store.ListRecent(ctx, 2)
	s.Require().NoError(err)
	s.Require().Len(recent, 2)
	s.Equal(other.ID, recent[0].ID)
	s.Equal(second.ID, recent[1].ID)
}

func (s *RedisHistoryStoreSuite) TestEmptyIndex() {
	got, err := s.store.ListByCandidate(context.Background(), "nobody", 3)
	s.Require().NoError(err)
	s.Empty(got)
}

func (s *RedisHistoryStoreSuite) TestSaveAll() {
	ctx := context.Background()
	base := time.Now()

	s.Run("writes every result", func() {
		batch := []*evaluation.Result{rejected("compound-c", base), rejected("compound-c", base.Add(time.Second))}
		s.Require().NoError(s.store.SaveAll(ctx, batch))

		got, err := s.store.ListByCandidate(ctx, "compound-c", 0)
		s.Require().NoError(err)
		s.Require().Len(got, 2)
		s.Equal(batch[1].ID, got[0].ID)
	})

	s.Run("a nil entry writes nothing", func() {
		err := s.store.SaveAll(ctx, []*evaluation.Result{rejected("compound-d", base), nil})
		s.ErrorIs(err, store.ErrNilResult)

		got, err := s.store.ListByCandidate(ctx, "compound-d", 0)
		s.Require().NoError(err)
		s.Empty(got)
	})
}
