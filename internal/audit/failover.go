package audit

import (
	"context"
	"errors"
	"log/slog"

	"curaframe/pkg/platform/circuit"
)

// FailoverSink writes to primary while it is healthy. Any event the primary
// rejects is written to fallback instead. Once the breaker opens, events
// that the primary accepts are mirrored to fallback too until it closes
// again. An event is lost only when both sinks fail.
type FailoverSink struct {
	primary  Sink
	fallback Sink
	breaker  *circuit.Breaker
	logger   *slog.Logger
}

func NewFailoverSink(primary, fallback Sink, breaker *circuit.Breaker, logger *slog.Logger) *FailoverSink {
	if breaker == nil {
		breaker = circuit.New("audit")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &FailoverSink{primary: primary, fallback: fallback, breaker: breaker, logger: logger}
}

func (s *FailoverSink) Append(ctx context.Context, event Event) error {
	err := s.primary.Append(ctx, event)
	if err == nil {
		usePrimary, change := s.breaker.RecordSuccess()
		if change.Closed {
			s.logger.InfoContext(ctx, "audit sink recovered", "breaker", s.breaker.Name())
		}
		if usePrimary {
			return nil
		}
		// Half-recovered: keep the fallback copy complete until the breaker closes.
		return s.fallback.Append(ctx, event)
	}

	_, change := s.breaker.RecordFailure()
	if change.Opened {
		s.logger.WarnContext(ctx, "audit sink degraded, writing to fallback",
			"breaker", s.breaker.Name(),
			"error", err)
	}
	if ferr := s.fallback.Append(ctx, event); ferr != nil {
		return errors.Join(err, ferr)
	}
	return nil
}

// Degraded reports whether the fallback is in use.
func (s *FailoverSink) Degraded() bool {
	return s.breaker.IsOpen()
}
