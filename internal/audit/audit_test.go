package audit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"curaframe/pkg/requestcontext"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func TestPublisher_SyncMode(t *testing.T) {
	store := NewMemoryStore()
	pub := NewPublisher(store, WithClock(func() time.Time { return fixedNow }))
	defer pub.Close()

	err := pub.Emit(context.Background(), Event{Subject: "CX-1", Action: ActionEvaluationCompleted, Decision: "rejected"})
	require.NoError(t, err)

	events, err := store.ListBySubject(context.Background(), "CX-1")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, CategoryCompliance, events[0].Category)
	assert.Equal(t, fixedNow, events[0].Timestamp)
	assert.NotEmpty(t, events[0].ID)
}

func TestPublisher_AsyncMode(t *testing.T) {
	store := NewMemoryStore()
	pub := NewPublisher(store, WithAsyncBuffer(10))

	for range 3 {
		require.NoError(t, pub.Emit(context.Background(), Event{Subject: "CX-2", Action: ActionEvaluationCompleted}))
	}
	pub.Close()

	events, err := store.ListBySubject(context.Background(), "CX-2")
	require.NoError(t, err)
	assert.Len(t, events, 3, "close drains the buffer")

	assert.ErrorIs(t, pub.Emit(context.Background(), Event{}), ErrPublisherClosed)
	pub.Close()
}

func TestActionCategory(t *testing.T) {
	assert.Equal(t, CategoryOperations, ActionPopulationRegistered.Category())
	assert.Equal(t, CategoryOperations, Action("unknown").Category())
}

func TestMemoryStore_ListRecent(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	for _, s := range []string{"a", "b", "c"} {
		require.NoError(t, store.Append(ctx, Event{Subject: s}))
	}
	recent, err := store.ListRecent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "c", recent[0].Subject)
	assert.Equal(t, "b", recent[1].Subject)

	store.Clear()
	recent, err = store.ListRecent(ctx, 5)
	require.NoError(t, err)
	assert.Empty(t, recent)
}

type failingSink struct{ calls int }

func (f *failingSink) Append(context.Context, Event) error {
	f.calls++
	return errors.New("broker down")
}

func TestWorker(t *testing.T) {
	t.Run("stops when inbox closes and survives sink errors", func(t *testing.T) {
		sink := &failingSink{}
		inbox := make(chan Event, 2)
		inbox <- Event{Subject: "x"}
		inbox <- Event{Subject: "y"}
		close(inbox)

		err := NewWorker(sink, inbox, nil).Run(context.Background())
		assert.NoError(t, err)
		assert.Equal(t, 2, sink.calls)
	})

	t.Run("stops on cancel", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		inbox := make(chan Event)
		done := make(chan error, 1)
		go func() { done <- NewWorker(NewMemoryStore(), inbox, nil).Run(ctx) }()
		cancel()
		assert.ErrorIs(t, <-done, context.Canceled)
	})
}

func TestDecodeEvent(t *testing.T) {
	_, err := DecodeEvent([]byte("{"))
	assert.Error(t, err)
}

func TestPublisher_RequestMetadata(t *testing.T) {
	store := NewMemoryStore()
	pub := NewPublisher(store, WithClock(func() time.Time { return fixedNow }))
	defer pub.Close()

	pinned := fixedNow.Add(-time.Minute)
	ctx := requestcontext.WithRequestID(context.Background(), "req-42")
	ctx = requestcontext.WithClientMetadata(ctx, "10.0.0.7", "curl/8.5")
	ctx = requestcontext.WithTime(ctx, pinned)

	require.NoError(t, pub.Emit(ctx, Event{Subject: "CX-3", Action: ActionEvaluationCompleted}))
	require.NoError(t, pub.Emit(ctx, Event{Subject: "CX-3", Action: ActionEvaluationCompleted, RequestID: "explicit"}))

	events, err := store.ListBySubject(context.Background(), "CX-3")
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "req-42", events[0].RequestID)
	assert.Equal(t, "10.0.0.7", events[0].ClientIP)
	assert.Equal(t, "curl/8.5", events[0].UserAgent)
	assert.Equal(t, pinned.UTC(), events[0].Timestamp, "request time wins over the publisher clock")
	assert.Equal(t, "explicit", events[1].RequestID)
}
