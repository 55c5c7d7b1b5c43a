// Package service wraps the evaluation engine for use inside a process:
// persistence, audit, metrics and tracing around each evaluation.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"curaframe/internal/audit"
	"curaframe/internal/candidate"
	"curaframe/internal/evaluation"
	"curaframe/internal/evaluation/metrics"
	"curaframe/internal/evaluation/ports"
	"curaframe/internal/population"
	dErrors "curaframe/pkg/domain-errors"
)

// DefaultBatchConcurrency caps parallel evaluations in a batch.
const DefaultBatchConcurrency = 8

// Request is one evaluation to run.
type Request struct {
	Candidate  *candidate.Candidate
	Population string
	Strict     bool
	RequestID  string
}

// Service orchestrates evaluations against a single engine.
type Service struct {
	engine           *evaluation.Engine
	store            ports.HistoryStore
	auditPublisher   ports.AuditPublisher
	metrics          *metrics.Metrics
	logger           *slog.Logger
	tracer           trace.Tracer
	batchConcurrency int
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithHistoryStore persists every result. Without one, history queries
// read the engine's in-memory history. A store that also implements
// ports.BatchHistoryStore receives each batch in a single SaveAll call.
func WithHistoryStore(store ports.HistoryStore) Option {
	return func(s *Service) {
		s.store = store
	}
}

func WithAuditPublisher(publisher ports.AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tracer
	}
}

func WithBatchConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.batchConcurrency = n
		}
	}
}

func New(engine *evaluation.Engine, opts ...Option) *Service {
	s := &Service{
		engine:           engine,
		logger:           slog.Default(),
		tracer:           otel.Tracer("curaframe/evaluation"),
		batchConcurrency: DefaultBatchConcurrency,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Engine exposes the wrapped engine for read-only introspection.
func (s *Service) Engine() *evaluation.Engine {
	return s.engine
}

// Evaluate runs one request. The result is persisted before it is
// returned; a persistence failure fails the call even though the engine
// has already recorded the result in memory. Audit failures are logged
// only.
func (s *Service) Evaluate(ctx context.Context, req Request) (*evaluation.Result, error) {
	return s.evaluate(ctx, req, true)
}

// evaluate runs the engine. With persist set it also saves and audits the
// result; batches that defer persistence do both once SaveAll succeeds.
func (s *Service) evaluate(ctx context.Context, req Request, persist bool) (*evaluation.Result, error) {
	if req.Candidate == nil {
		return nil, dErrors.New(dErrors.CodeValidation, "candidate is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeTimeout, "evaluation cancelled")
	}

	ctx, span := s.tracer.Start(ctx, "evaluation.Evaluate",
		trace.WithAttributes(
			attribute.String("candidate", req.Candidate.Name()),
			attribute.String("population", req.Population),
			attribute.Bool("strict", req.Strict),
		))
	defer span.End()

	start := time.Now()
	result := s.engine.Evaluate(ctx, req.Candidate, req.Population, req.Strict)
	s.metrics.ObserveEvaluateLatency(time.Since(start))
	s.metrics.IncrementOutcome(string(result.Status), s.populationLabel(req.Population))
	for _, v := range result.Violations {
		s.metrics.IncrementViolation(v.Constraint, string(v.Severity))
	}
	span.SetAttributes(
		attribute.String("status", string(result.Status)),
		attribute.Int("violations", len(result.Violations)),
		attribute.String("result_id", result.ID.String()),
	)

	s.logger.InfoContext(ctx, "candidate evaluated",
		"candidate", result.CandidateName,
		"population", result.Population,
		"status", result.Status,
		"violations", len(result.Violations),
		"warnings", len(result.Warnings),
		"request_id", req.RequestID)

	if persist {
		if s.store != nil {
			if err := s.store.Save(ctx, result); err != nil {
				s.metrics.IncrementStoreError()
				span.RecordError(err)
				span.SetStatus(codes.Error, "persist result")
				s.logger.ErrorContext(ctx, "failed to persist evaluation result",
					"result_id", result.ID,
					"error", err)
				return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to persist evaluation")
			}
		}
		s.emitCompleted(ctx, result, req.RequestID)
	}
	span.SetStatus(codes.Ok, "")
	return result, nil
}

// populationLabel keeps the outcome metric's population label bounded:
// names the engine does not know are reported as "unknown".
func (s *Service) populationLabel(name string) string {
	if name == "" || s.engine.HasPopulation(name) {
		return name
	}
	return "unknown"
}

// EvaluateBatch evaluates requests in parallel and returns results in
// request order. The first failure cancels the remaining work. When the
// history store implements ports.BatchHistoryStore the whole batch is
// persisted with one SaveAll call after every evaluation has succeeded,
// and nothing is audited per result unless that call succeeds.
func (s *Service) EvaluateBatch(ctx context.Context, reqs []Request) ([]*evaluation.Result, error) {
	ctx, span := s.tracer.Start(ctx, "evaluation.EvaluateBatch",
		trace.WithAttributes(attribute.Int("size", len(reqs))))
	defer span.End()
	s.metrics.ObserveBatchSize(len(reqs))

	batchStore, deferred := s.store.(ports.BatchHistoryStore)

	results := make([]*evaluation.Result, len(reqs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.batchConcurrency)
	for i, req := range reqs {
		g.Go(func() error {
			r, err := s.evaluate(gctx, req, !deferred)
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "batch failed")
		return nil, err
	}

	if deferred {
		if err := batchStore.SaveAll(ctx, results); err != nil {
			s.metrics.IncrementStoreError()
			span.RecordError(err)
			span.SetStatus(codes.Error, "persist batch")
			s.logger.ErrorContext(ctx, "failed to persist evaluation batch",
				"size", len(results),
				"error", err)
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to persist evaluation batch")
		}
		for i, r := range results {
			s.emitCompleted(ctx, r, reqs[i].RequestID)
		}
	}

	summary := evaluation.Summarize(results)
	s.emitAudit(ctx, audit.Event{
		Subject:  s.engine.Name(),
		Action:   audit.ActionBatchCompleted,
		Decision: "completed",
		Reason: fmt.Sprintf("accepted=%d rejected=%d indeterminate=%d",
			summary.Accepted, summary.Rejected, summary.Indeterminate),
	})
	return results, nil
}

// History returns results, most recent first. An empty candidate name
// returns results for every candidate; limit <= 0 means no limit.
func (s *Service) History(ctx context.Context, candidateName string, limit int) ([]*evaluation.Result, error) {
	if s.store != nil {
		var (
			results []*evaluation.Result
			err     error
		)
		if candidateName == "" {
			results, err = s.store.ListRecent(ctx, limit)
		} else {
			results, err = s.store.ListByCandidate(ctx, candidateName, limit)
		}
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load evaluation history")
		}
		return results, nil
	}

	var results []*evaluation.Result
	if candidateName == "" {
		results = s.engine.History()
	} else {
		results = s.engine.HistoryFor(candidateName)
	}
	slices.Reverse(results)
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// Stats summarises the full history.
func (s *Service) Stats(ctx context.Context) (evaluation.Stats, error) {
	results, err := s.History(ctx, "", 0)
	if err != nil {
		return evaluation.Stats{}, err
	}
	return evaluation.Summarize(results), nil
}

// AddPopulation registers a population on the engine and audits it.
func (s *Service) AddPopulation(ctx context.Context, name string, modifiers population.Modifiers) error {
	if err := s.engine.AddPopulation(name, modifiers); err != nil {
		return err
	}
	s.emitAudit(ctx, audit.Event{
		Subject:    s.engine.Name(),
		Action:     audit.ActionPopulationRegistered,
		Population: name,
	})
	return nil
}

// ResetHistory clears the engine's in-memory history. Persisted history is
// left alone.
func (s *Service) ResetHistory(ctx context.Context) {
	s.engine.ResetHistory()
	s.emitAudit(ctx, audit.Event{
		Subject: s.engine.Name(),
		Action:  audit.ActionHistoryReset,
	})
}

func (s *Service) emitCompleted(ctx context.Context, result *evaluation.Result, requestID string) {
	s.emitAudit(ctx, audit.Event{
		Subject:    result.CandidateName,
		Action:     audit.ActionEvaluationCompleted,
		ResultID:   result.ID,
		Population: result.Population,
		Decision:   string(result.Status),
		Reason:     result.Notes,
		Violations: violationNames(result),
		RequestID:  requestID,
	})
}

func (s *Service) emitAudit(ctx context.Context, event audit.Event) {
	if s.auditPublisher == nil {
		return
	}
	if err := s.auditPublisher.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event",
			"action", event.Action,
			"subject", event.Subject,
			"error", err)
	}
}

func violationNames(r *evaluation.Result) []string {
	if len(r.Violations) == 0 {
		return nil
	}
	names := make([]string, len(r.Violations))
	for i, v := range r.Violations {
		names[i] = v.Constraint
	}
	return names
}
