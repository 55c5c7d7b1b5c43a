// Package store holds HistoryStore adapters: in-memory, PostgreSQL and Redis.
package store

import (
	"context"
	"sync"

	"curaframe/internal/evaluation"
)

// InMemoryHistoryStore keeps every saved result in insertion order. It is the
// default when no database is configured.
type InMemoryHistoryStore struct {
	mu      sync.RWMutex
	results []*evaluation.Result
}

func NewInMemoryHistoryStore() *InMemoryHistoryStore {
	return &InMemoryHistoryStore{}
}

func (s *InMemoryHistoryStore) Save(_ context.Context, result *evaluation.Result) error {
	if result == nil {
		return ErrNilResult
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = append(s.results, result)
	return nil
}

// SaveAll stores every result or, if any is nil, none of them.
func (s *InMemoryHistoryStore) SaveAll(_ context.Context, results []*evaluation.Result) error {
	for _, r := range results {
		if r == nil {
			return ErrNilResult
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = append(s.results, results...)
	return nil
}

func (s *InMemoryHistoryStore) ListByCandidate(_ context.Context, candidateName string, limit int) ([]*evaluation.Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collect(limit, func(r *evaluation.Result) bool {
		return r.CandidateName == candidateName
	}), nil
}

func (s *InMemoryHistoryStore) ListRecent(_ context.Context, limit int) ([]*evaluation.Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collect(limit, func(*evaluation.Result) bool { return true }), nil
}

// Len reports how many results are stored.
func (s *InMemoryHistoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.results)
}

// collect walks newest to oldest. Callers hold the read lock.
func (s *InMemoryHistoryStore) collect(limit int, keep func(*evaluation.Result) bool) []*evaluation.Result {
	out := make([]*evaluation.Result, 0)
	for i := len(s.results) - 1; i >= 0; i-- {
		if limit > 0 && len(out) == limit {
			break
		}
		if keep(s.results[i]) {
			out = append(out, s.results[i])
		}
	}
	return out
}
