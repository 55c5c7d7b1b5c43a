//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"curaframe/internal/comparator"
	"curaframe/internal/constraint"
	"curaframe/internal/evaluation"
	"curaframe/internal/evaluation/store"
	"curaframe/pkg/testutil/containers"
)

type PostgresHistoryStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.PostgresHistoryStore
}

func TestPostgresHistoryStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresHistoryStoreSuite))
}

func (s *PostgresHistoryStoreSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.postgres = mgr.GetPostgres(s.T())
	s.store = store.NewPostgres(s.postgres.DB)
	s.Require().NoError(s.store.Migrate(context.Background()))
}

func (s *PostgresHistoryStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "evaluation_results"))
}

func rejected(candidate string, at time.Time) *evaluation.Result {
	return &evaluation.Result{
		ID:     uuid.New(),
		Status: evaluation.StatusRejected,
		Violations: []evaluation.Violation{{
			Constraint: "hERG_IC50",
			Observed:   5.0,
			Threshold:  comparator.Scalar(10),
			Rationale:  "QT prolongation risk",
			Severity:   constraint.SeverityCritical,
			Confidence: 0.9,
		}},
		Warnings:      []string{"property 'logP' missing, constraint skipped"},
		Notes:         "Failed 1 constraint(s)",
		CandidateName: candidate,
		Population:    "elderly",
		EvaluatedAt:   at.UTC().Truncate(time.Microsecond),
	}
}

func (s *PostgresHistoryStoreSuite) TestSaveAndList() {
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
	s.Equal("hERG_IC50", got[0].Violations[0].Constraint)
	s.Equal(comparator.Scalar(10), got[0].Violations[0].Threshold)
	s.Equal(second.Warnings, got[0].Warnings)
	s.True(second.EvaluatedAt.Equal(got[0].EvaluatedAt))

	recent, err := s.store.ListRecent(ctx, 1)
	s.Require().NoError(err)
	s.Require().Len(recent, 1)
	s.Equal(other.ID, recent[0].ID)
}

func (s *PostgresHistoryStoreSuite) TestSaveIsIdempotent() {
	ctx := context.Background()
	r := rejected("compound-a", time.Now())
	s.Require().NoError(s.store.Save(ctx, r))
	s.Require().NoError(s.store.Save(ctx, r))

	got, err := s.store.ListRecent(ctx, 0)
	s.Require().NoError(err)
	s.Len(got, 1)
}

func (s *PostgresHistoryStoreSuite) TestSaveAll() {
	ctx := context.Background()
	base := time.Now()

	s.Run("commits every result", func() {
		batch := []*evaluation.Result{rejected("batch-a", base), rejected("batch-b", base.Add(time.Second))}
		s.Require().NoError(s.store.SaveAll(ctx, batch))
		got, err := s.store.ListRecent(ctx, 0)
		s.Require().NoError(err)
		s.Len(got, 2)
	})

	s.Run("rolls back on failure", func() {
		batch := []*evaluation.Result{rejected("batch-c", base), nil}
		s.Require().ErrorIs(s.store.SaveAll(ctx, batch), store.ErrNilResult)
		got, err := s.store.ListByCandidate(ctx, "batch-c", 0)
		s.Require().NoError(err)
		s.Empty(got)
	})
}
