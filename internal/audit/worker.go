package audit

import (
	"context"
	"log/slog"
)

// Worker consumes audit events from a channel and hands them to a sink.
// It stops when the context is cancelled or the inbox is closed.
type Worker struct {
	sink   Sink
	inbox  <-chan Event
	logger *slog.Logger
}

func NewWorker(sink Sink, inbox <-chan Event, logger *slog.Logger) *Worker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Worker{sink: sink, inbox: inbox, logger: logger}
}

// Run blocks until the inbox closes (returns nil) or ctx is done. A sink
// failure is logged and the event dropped; audit must not stall
// evaluation.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.inbox:
			if !ok {
				return nil
			}
			if err := w.sink.Append(ctx, event); err != nil {
				w.logger.ErrorContext(ctx, "failed to append audit event",
					"action", event.Action,
					"subject", event.Subject,
					"error", err)
			}
		}
	}
}
