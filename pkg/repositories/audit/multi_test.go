package audit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fadedpez/tucoblackjack/internal/logging"
	"github.com/fadedpez/tucoblackjack/pkg/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockSink is a mock implementation of Sink for testing
type MockSink struct {
	mock.Mock
}

func (m *MockSink) Record(ctx context.Context, event *entities.SettlementEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func TestMultiRecordsToEverySink(t *testing.T) {
	ev := event("e1", "alice", time.Now(), 0)
	failing := errors.New("es down")

	first := new(MockSink)
	first.On("Record", mock.Anything, ev).Return(failing)
	second := new(MockSink)
	second.On("Record", mock.Anything, ev).Return(nil)

	err := Multi{first, second}.Record(context.Background(), ev)
	assert.ErrorIs(t, err, failing)

	first.AssertExpectations(t)
	second.AssertExpectations(t)
}

func TestAsyncSwallowsFailures(t *testing.T) {
	ev := event("e1", "alice", time.Now(), 0)

	sink := new(MockSink)
	sink.On("Record", mock.Anything, ev).Return(errors.New("boom"))

	async := NewAsync(sink, time.Second, logging.Discard())
	require.NoError(t, async.Record(context.Background(), ev))
	async.Wait()

	sink.AssertNumberOfCalls(t, "Record", 1)
}

func TestAsyncOutlivesCallerContext(t *testing.T) {
	ev := event("e1", "alice", time.Now(), 0)
	store := NewMemoryStore()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	async := NewAsync(store, time.Second, logging.Discard())
	require.NoError(t, async.Record(ctx, ev))
	async.Wait()

	assert.Equal(t, 1, store.Len())
}

func TestAsyncRecoversPanickingSink(t *testing.T) {
	ev := event("e1", "alice", time.Now(), 0)

	sink := new(MockSink)
	sink.On("Record", mock.Anything, ev).Run(func(mock.Arguments) {
		panic("sink exploded")
	}).Return(nil)

	async := NewAsync(sink, time.Second, logging.Discard())
	require.NoError(t, async.Record(context.Background(), ev))
	assert.NotPanics(t, async.Wait)
}
