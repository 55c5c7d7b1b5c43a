package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
	"go.uber.org/goleak"
	"go.uber.org/mock/gomock"

	"curaframe/internal/audit"
	"curaframe/internal/candidate"
	"curaframe/internal/comparator"
	"curaframe/internal/constraint"
	"curaframe/internal/evaluation"
	"curaframe/internal/evaluation/metrics"
	"curaframe/internal/evaluation/mocks"
	"curaframe/internal/population"
	dErrors "curaframe/pkg/domain-errors"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// =============================================================================
// Evaluation Service Test Suite
// =============================================================================
// The service adds persistence, audit and metrics around the engine; these
// tests verify the orchestration and failure handling, not the engine rules.

type ServiceSuite struct {
	suite.Suite
	ctrl      *gomock.Controller
	store     *mocks.MockHistoryStore
	publisher *mocks.MockAuditPublisher
	metrics   *metrics.Metrics
	engine    *evaluation.Engine
	service   *Service
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.store = mocks.NewMockHistoryStore(s.ctrl)
	s.publisher = mocks.NewMockAuditPublisher(s.ctrl)
	s.metrics = metrics.New(prometheus.NewRegistry())

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	engine, err := evaluation.New([]*constraint.Constraint{
		constraint.MustNew("logP", comparator.Scalar(4.0), comparator.LessOrEqual, "", constraint.SeverityCritical, nil),
		constraint.MustNew("hERG_IC50", comparator.Scalar(10.0), comparator.GreaterOrEqual, "", constraint.SeverityCritical, nil),
	}, evaluation.WithLogger(logger))
	s.Require().NoError(err)
	s.engine = engine

	s.service = New(engine,
		WithLogger(logger),
		WithHistoryStore(s.store),
		WithAuditPublisher(s.publisher),
		WithMetrics(s.metrics),
		WithBatchConcurrency(2))
}

func (s *ServiceSuite) TearDownTest() {
	s.ctrl.Finish()
}

func request(name string, logP, herg float64) Request {
	return Request{
		Candidate: candidate.New(name, map[string]any{"logP": logP, "hERG_IC50": herg}),
		Strict:    true,
	}
}

// =============================================================================
// Evaluate
// =============================================================================

func (s *ServiceSuite) TestEvaluate() {
	ctx := context.Background()

	s.Run("persists, audits and counts", func() {
		s.store.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil)
		s.publisher.EXPECT().Emit(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, e audit.Event) error {
				s.Equal(audit.ActionEvaluationCompleted, e.Action)
				s.Equal("CX-1", e.Subject)
				s.Equal("rejected", e.Decision)
				s.Equal([]string{"logP"}, e.Violations)
				return nil
			})

		r, err := s.service.Evaluate(ctx, request("CX-1", 6, 20))
		s.Require().NoError(err)
		s.True(r.IsRejected())
		s.Equal(1.0, testutil.ToFloat64(s.metrics.Outcomes.WithLabelValues("rejected", "none")))
		s.Equal(1.0, testutil.ToFloat64(s.metrics.Violations.WithLabelValues("logP", "critical")))
	})

	s.Run("store failure fails the call", func() {
		s.store.EXPECT().Save(gomock.Any(), gomock.Any()).Return(errors.New("disk full"))

		_, err := s.service.Evaluate(ctx, request("CX-2", 3, 20))
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
		s.Equal(1.0, testutil.ToFloat64(s.metrics.StoreErrors))
	})

	s.Run("audit failure is tolerated", func() {
		s.store.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil)
		s.publisher.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(errors.New("broker down"))

		r, err := s.service.Evaluate(ctx, request("CX-3", 3, 20))
		s.Require().NoError(err)
		s.True(r.IsAccepted())
	})

	s.Run("missing candidate", func() {
		_, err := s.service.Evaluate(ctx, Request{})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("cancelled context", func() {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := s.service.Evaluate(cctx, request("CX-4", 3, 20))
		s.True(dErrors.HasCode(err, dErrors.CodeTimeout))
	})
}

func (s *ServiceSuite) TestOutcomePopulationLabel() {
	ctx := context.Background()
	s.publisher.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	s.store.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	s.Require().NoError(s.service.AddPopulation(ctx, "elderly",
		population.Modifiers{"hERG_IC50": constraint.Multiply(1.5)}))

	for _, pop := range []string{"elderly", "ghost-1", "ghost-2", "ghost-3"} {
		req := request("CX-"+pop, 3, 20)
		req.Population = pop
		_, err := s.service.Evaluate(ctx, req)
		s.Require().NoError(err)
	}

	s.Equal(1.0, testutil.ToFloat64(s.metrics.Outcomes.WithLabelValues("accepted", "elderly")))
	s.Equal(3.0, testutil.ToFloat64(s.metrics.Outcomes.WithLabelValues("accepted", "unknown")))
	s.Equal(2, testutil.CollectAndCount(s.metrics.Outcomes), "client-supplied names must not create series")
}

// =============================================================================
// Batch
// =============================================================================

func (s *ServiceSuite) TestEvaluateBatch() {
	ctx := context.Background()

	s.Run("preserves request order", func() {
		var reqs []Request
		for i := range 10 {
			reqs = append(reqs, request(fmt.Sprintf("C-%d", i), float64(i), 20))
		}
		s.store.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil).Times(10)
		s.publisher.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(nil).Times(11)

		results, err := s.service.EvaluateBatch(ctx, reqs)
		s.Require().NoError(err)
		s.Require().Len(results, 10)
		for i, r := range results {
			s.Equal(fmt.Sprintf("C-%d", i), r.CandidateName)
			s.Equal(i > 4, r.IsRejected(), "logP %d", i)
		}
	})

	s.Run("first failure fails the batch", func() {
		s.store.EXPECT().Save(gomock.Any(), gomock.Any()).Return(errors.New("disk full")).MinTimes(1)
		s.publisher.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

		_, err := s.service.EvaluateBatch(ctx, []Request{request("A", 1, 20), request("B", 1, 20)})
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	})
}

func (s *ServiceSuite) TestEvaluateBatchWithBatchStore() {
	ctx := context.Background()
	batchStore := mocks.NewMockBatchHistoryStore(s.ctrl)
	svc := New(s.engine,
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithHistoryStore(batchStore),
		WithAuditPublisher(s.publisher),
		WithMetrics(s.metrics))
	reqs := []Request{request("A", 1, 20), request("B", 6, 20), request("C", 2, 20)}

	s.Run("persists the batch with one SaveAll call", func() {
		batchStore.EXPECT().SaveAll(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, results []*evaluation.Result) error {
				s.Require().Len(results, 3)
				for i, r := range results {
					s.Equal(reqs[i].Candidate.Name(), r.CandidateName)
				}
				return nil
			})
		s.publisher.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(nil).Times(4)

		results, err := svc.EvaluateBatch(ctx, reqs)
		s.Require().NoError(err)
		s.Require().Len(results, 3)
		s.True(results[1].IsRejected())
	})

	s.Run("SaveAll failure fails the batch without per-result audit", func() {
		batchStore.EXPECT().SaveAll(gomock.Any(), gomock.Len(3)).Return(errors.New("serialization failure"))

		_, err := svc.EvaluateBatch(ctx, reqs)
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
		s.Equal(1.0, testutil.ToFloat64(s.metrics.StoreErrors))
	})
}

// =============================================================================
// History
// =============================================================================

func (s *ServiceSuite) TestHistoryFromStore() {
	want := []*evaluation.Result{{CandidateName: "CX-1"}}
	s.store.EXPECT().ListByCandidate(gomock.Any(), "CX-1", 5).Return(want, nil)
	got, err := s.service.History(context.Background(), "CX-1", 5)
	s.Require().NoError(err)
	s.Equal(want, got)

	s.store.EXPECT().ListRecent(gomock.Any(), 0).Return(nil, errors.New("timeout"))
	_, err = s.service.Stats(context.Background())
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))
}

func (s *ServiceSuite) TestHistoryFromEngine() {
	svc := New(s.engine, WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	ctx := context.Background()
	for _, name := range []string{"a", "b", "a"} {
		_, err := svc.Evaluate(ctx, request(name, 3, 20))
		s.Require().NoError(err)
	}

	all, err := svc.History(ctx, "", 2)
	s.Require().NoError(err)
	s.Require().Len(all, 2)
	s.Equal("a", all[0].CandidateName, "most recent first")
	s.Equal("b", all[1].CandidateName)

	onlyA, err := svc.History(ctx, "a", 0)
	s.Require().NoError(err)
	s.Len(onlyA, 2)

	st, err := svc.Stats(ctx)
	s.Require().NoError(err)
	s.Equal(3, st.Total)
	s.Equal(3, st.Accepted)

	svc.ResetHistory(ctx)
	all, err = svc.History(ctx, "", 0)
	s.Require().NoError(err)
	s.Empty(all)
}

func (s *ServiceSuite) TestAddPopulation() {
	s.publisher.EXPECT().Emit(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, e audit.Event) error {
			s.Equal(audit.ActionPopulationRegistered, e.Action)
			s.Equal("elderly", e.Population)
			return nil
		})
	s.Require().NoError(s.service.AddPopulation(context.Background(), "elderly",
		population.Modifiers{"hERG_IC50": constraint.Multiply(1.5)}))
	s.Equal([]string{"elderly"}, s.engine.Populations())

	err := s.service.AddPopulation(context.Background(), "pediatric",
		population.Modifiers{"hERG_IC50": constraint.ScaleBounds(1, 0.9)})
	s.True(evaluation.IsConfigurationError(err))
}
