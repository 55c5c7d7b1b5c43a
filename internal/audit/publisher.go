package audit

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// ErrPublisherClosed is returned by Emit after Close.
var ErrPublisherClosed = errors.New("audit publisher closed")

// Publisher fills in event metadata and forwards events to a sink. In
// async mode events go through a buffered channel drained by a Worker; a
// full buffer drops the event with a warning instead of blocking.
type Publisher struct {
	sink   Sink
	logger *slog.Logger
	now    func() time.Time

	bufferSize int
	inbox      chan Event
	cancel     context.CancelFunc
	done       chan struct{}

	mu     sync.RWMutex
	closed bool
}

type Option func(*Publisher)

// WithAsyncBuffer switches the publisher to async mode with a buffer of
// size n.
func WithAsyncBuffer(n int) Option {
	return func(p *Publisher) {
		p.bufferSize = n
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

func WithClock(now func() time.Time) Option {
	return func(p *Publisher) {
		p.now = now
	}
}

func NewPublisher(sink Sink, opts ...Option) *Publisher {
	p := &Publisher{sink: sink, logger: slog.Default(), now: time.Now}
	for _, opt := range opts {
		opt(p)
	}
	if p.bufferSize > 0 {
		ctx, cancel := context.WithCancel(context.Background())
		p.inbox = make(chan Event, p.bufferSize)
		p.cancel = cancel
		p.done = make(chan struct{})
		worker := NewWorker(sink, p.inbox, p.logger)
		go func() {
			defer close(p.done)
			_ = worker.Run(ctx)
		}()
	}
	return p
}

func (p *Publisher) Emit(ctx context.Context, event Event) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPublisherClosed
	}
	event = event.withRequest(ctx).normalize(p.now().UTC())
	if p.inbox == nil {
		return p.sink.Append(ctx, event)
	}
	select {
	case p.inbox <- event:
	default:
		p.logger.WarnContext(ctx, "audit buffer full, dropping event",
			"action", event.Action,
			"subject", event.Subject)
	}
	return nil
}

// Close drains pending async events and stops the worker. It is safe to
// call more than once.
func (p *Publisher) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	p.mu.Unlock()

	if p.inbox == nil {
		return
	}
	close(p.inbox)
	<-p.done
	p.cancel()
}
