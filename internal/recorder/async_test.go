package recorder

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/temcen/storefront/pkg/models"
)

type blockingSink struct {
	release chan struct{}
	inner   *captureSink
}

func (s *blockingSink) Append(ctx context.Context, event models.InteractionEvent) error {
	<-s.release
	return s.inner.Append(ctx, event)
}

func TestAsyncRecorder_DeliversInBackground(t *testing.T) {
	sink := &captureSink{}
	async := NewAsync(New(sink, testLogger()), 10, testLogger())

	require.NoError(t, async.Record(context.Background(), 42, 1001, models.InteractionView))
	require.NoError(t, async.Record(context.Background(), models.Anonymous, 1002, models.InteractionView))

	async.Stop()

	events := sink.Events()
	require.Len(t, events, 1)
	assert.Equal(t, int64(1001), events[0].ProductID)
}

func TestAsyncRecorder_FullQueueDrops(t *testing.T) {
	sink := &blockingSink{release: make(chan struct{}), inner: &captureSink{}}
	async := NewAsync(New(sink, testLogger()), 1, testLogger())

	// The first interaction occupies the worker, the second fills the queue.
	require.NoError(t, async.Record(context.Background(), 1, 1001, models.InteractionView))
	require.Eventually(t, func() bool { return len(async.queue) == 0 }, time.Second, time.Millisecond)
	require.NoError(t, async.Record(context.Background(), 1, 1002, models.InteractionView))

	err := async.Record(context.Background(), 1, 1003, models.InteractionView)
	assert.True(t, errors.Is(err, ErrQueueFull))

	close(sink.release)
	async.Stop()

	assert.Len(t, sink.inner.Events(), 2)
}

func TestAsyncRecorder_StopIsIdempotent(t *testing.T) {
	async := NewAsync(New(&captureSink{}, testLogger()), 1, testLogger())

	async.Stop()
	assert.NotPanics(t, async.Stop)
}

func TestAsyncRecorder_TimestampIsTakenAtRecord(t *testing.T) {
	sink := &blockingSink{release: make(chan struct{}), inner: &captureSink{}}
	rec := New(sink, testLogger())
	clock := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	var mu sync.Mutex
	rec.now = func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return clock
	}
	async := NewAsync(rec, 10, testLogger())

	require.NoError(t, async.Record(context.Background(), 7, 1001, models.InteractionView))
	require.NoError(t, async.Record(context.Background(), 7, 1002, models.InteractionAddToCart))

	mu.Lock()
	clock = clock.Add(5 * time.Minute)
	mu.Unlock()

	close(sink.release)
	async.Stop()

	events := sink.inner.Events()
	require.Len(t, events, 2)
	want := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	for _, event := range events {
		assert.True(t, want.Equal(event.Timestamp), "event %d stamped at %s", event.ProductID, event.Timestamp)
	}
}

func TestAsyncRecorder_RejectsInvalidTypeWithoutQueueing(t *testing.T) {
	sink := &captureSink{}
	async := NewAsync(New(sink, testLogger()), 1, testLogger())

	err := async.Record(context.Background(), 7, 1001, models.InteractionType("wishlist"))
	assert.True(t, errors.Is(err, ErrUnknownInteractionType))

	async.Stop()
	assert.Empty(t, sink.Events())
}

func TestAsyncRecorder_RecordAfterStopFails(t *testing.T) {
	sink := &captureSink{}
	async := NewAsync(New(sink, testLogger()), 1, testLogger())
	async.Stop()

	err := async.Record(context.Background(), 7, 1001, models.InteractionView)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrStopped))

	var recErr *Error
	require.True(t, errors.As(err, &recErr))
	assert.Equal(t, int64(1001), recErr.ProductID)

	assert.NotPanics(t, func() {
		_ = async.Record(context.Background(), models.Anonymous, 1001, models.InteractionView)
	})
	assert.Empty(t, sink.Events())
}
