package audit

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"admin-gateway/pkg/requestcontext"
)

type sinkSpy struct {
	mu     sync.Mutex
	events []Event
	err    error
}

func (s *sinkSpy) Publish(_ context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.events = append(s.events, event)
	return nil
}

func (s *sinkSpy) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}

type counterSpy struct {
	mu      sync.Mutex
	dropped int
}

func (c *counterSpy) IncAuditDropped() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dropped++
}

func runRecorder(t *testing.T, r *Recorder) context.CancelFunc {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = r.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return cancel
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	require.Eventually(t, func() bool { return cond() }, 2*time.Second, 5*time.Millisecond)
}

func TestRecordFillsDefaultsAndPersists(t *testing.T) {
	store := NewMemory()
	r := NewRecorder(store)
	runRecorder(t, r)

	ctx := requestcontext.WithRequestID(context.Background(), "req-1")
	ctx = requestcontext.WithClientIP(ctx, "10.0.0.1")
	r.Record(ctx, Event{Action: ActionLoginSucceeded, Username: "alice"})

	waitFor(t, func() bool {
		events, _ := store.ListRecent(context.Background(), 10)
		return len(events) == 1
	})

	events, err := store.ListRecent(context.Background(), 10)
	require.NoError(t, err)
	event := events[0]
	assert.Equal(t, ActionLoginSucceeded, event.Action)
	assert.Equal(t, "req-1", event.RequestID)
	assert.Equal(t, "10.0.0.1", event.IPAddress)
	assert.NotZero(t, event.ID)
	assert.False(t, event.Timestamp.IsZero())
}

func TestRecordFansOutToSinks(t *testing.T) {
	store := NewMemory()
	sink := &sinkSpy{}
	r := NewRecorder(store, WithSink(sink))
	runRecorder(t, r)

	r.Record(context.Background(), Event{Action: ActionLogout})
	waitFor(t, func() bool { return sink.count() == 1 })
}

func TestSinkFailureDoesNotLoseStoreWrite(t *testing.T) {
	store := NewMemory()
	sink := &sinkSpy{err: errors.New("broker down")}
	r := NewRecorder(store, WithSink(sink))
	runRecorder(t, r)

	r.Record(context.Background(), Event{Action: ActionLoginFailed})

	waitFor(t, func() bool {
		events, _ := store.ListRecent(context.Background(), 10)
		return len(events) == 1
	})
}

func TestFullInboxDropsAndCounts(t *testing.T) {
	store := NewMemory()
	counter := &counterSpy{}
	// No Run loop: the inbox never drains.
	r := NewRecorder(store, WithBufferSize(2), WithCounter(counter))

	for i := 0; i < 5; i++ {
		r.Record(context.Background(), Event{Action: ActionLoginFailed})
	}

	counter.mu.Lock()
	defer counter.mu.Unlock()
	assert.Equal(t, 3, counter.dropped)
}

func TestRunFlushesOnShutdown(t *testing.T) {
	store := NewMemory()
	r := NewRecorder(store)

	// Enqueue before the worker starts, then cancel immediately: the
	// shutdown flush must still deliver the buffered events.
	r.Record(context.Background(), Event{Action: ActionLogout})
	r.Record(context.Background(), Event{Action: ActionLogout})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := r.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)

	events, err := store.ListRecent(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, events, 2)
}

func TestListRecentNewestFirst(t *testing.T) {
	store := NewMemory()
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		require.NoError(t, store.Append(context.Background(), Event{
			Action:    ActionLogout,
			Timestamp: base.Add(time.Duration(i) * time.Minute),
			Username:  string(rune('a' + i)),
		}))
	}

	events, err := store.ListRecent(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "c", events[0].Username)
	assert.Equal(t, "b", events[1].Username)
}
