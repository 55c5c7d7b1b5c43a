package audit

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"curaframe/pkg/platform/circuit"
)

type flakySink struct {
	err   error
	count int
}

func (f *flakySink) Append(context.Context, Event) error {
	if f.err != nil {
		return f.err
	}
	f.count++
	return nil
}

func TestFailoverSink(t *testing.T) {
	ctx := context.Background()
	primary := &flakySink{err: errors.New("broker down")}
	fallback := NewMemoryStore()
	breaker := circuit.New("audit", circuit.WithFailureThreshold(2), circuit.WithSuccessThreshold(2))
	sink := NewFailoverSink(primary, fallback, breaker, slog.New(slog.NewTextHandler(io.Discard, nil)))

	t.Run("failures below threshold go to fallback", func(t *testing.T) {
		require.NoError(t, sink.Append(ctx, Event{Subject: "a"}))
		assert.False(t, sink.Degraded())
		events, _ := fallback.ListRecent(ctx, 10)
		require.Len(t, events, 1)
		assert.Equal(t, "a", events[0].Subject)
	})

	t.Run("open breaker writes to fallback", func(t *testing.T) {
		require.NoError(t, sink.Append(ctx, Event{Subject: "b"}))
		require.NoError(t, sink.Append(ctx, Event{Subject: "c"}))
		assert.True(t, sink.Degraded())
		events, _ := fallback.ListRecent(ctx, 10)
		assert.Len(t, events, 3)
	})

	t.Run("recovery closes after success threshold", func(t *testing.T) {
		primary.err = nil
		require.NoError(t, sink.Append(ctx, Event{Subject: "d"}))
		assert.True(t, sink.Degraded())
		require.NoError(t, sink.Append(ctx, Event{Subject: "e"}))
		assert.False(t, sink.Degraded())

		events, _ := fallback.ListRecent(ctx, 10)
		assert.Len(t, events, 4, "successes are mirrored only while the breaker is open")
		assert.Equal(t, 2, primary.count)
	})
}

func TestFailoverSinkBothFail(t *testing.T) {
	ctx := context.Background()
	primary := &flakySink{err: errors.New("broker down")}
	fallback := &flakySink{err: errors.New("disk full")}
	sink := NewFailoverSink(primary, fallback, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))

	err := sink.Append(ctx, Event{Subject: "a"})
	require.Error(t, err)
	assert.ErrorIs(t, err, primary.err)
	assert.ErrorIs(t, err, fallback.err)
}
