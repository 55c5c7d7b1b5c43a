// Package ports declares what the evaluation service needs from the
// outside world. Adapters live in store/ and internal/audit.
package ports

//go:generate mockgen -source=ports.go -destination=../mocks/ports_mock.go -package=mocks

import (
	"context"

	"curaframe/internal/audit"
	"curaframe/internal/evaluation"
)

// HistoryStore persists evaluation results beyond the engine's in-memory
// history. List methods return the most recent results first; a limit of
// zero or less means no limit.
type HistoryStore interface {
	Save(ctx context.Context, result *evaluation.Result) error
	ListByCandidate(ctx context.Context, candidateName string, limit int) ([]*evaluation.Result, error)
	ListRecent(ctx context.Context, limit int) ([]*evaluation.Result, error)
}

// BatchHistoryStore is a HistoryStore that can persist a batch as one
// unit. SaveAll stores every result or none of them.
type BatchHistoryStore interface {
	HistoryStore
	SaveAll(ctx context.Context, results []*evaluation.Result) error
}

// AuditPublisher emits audit events. It matches audit.Publisher but is
// declared here to keep the service independent of the transport.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}
