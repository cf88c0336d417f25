package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"admin-gateway/pkg/requestcontext"
)

// Counter abstracts the dropped-events metric so this package does not
// depend on the metrics registry.
type Counter interface {
	IncAuditDropped()
}

// Recorder accepts events without blocking the request path. Events flow
// through a buffered inbox into a background worker that appends them to the
// store and fans out to sinks. A full inbox drops the event and counts it;
// auditing must never stall a login.
type Recorder struct {
	store   Store
	sinks   []Sink
	inbox   chan Event
	logger  *slog.Logger
	counter Counter
	now     func() time.Time
}

type RecorderOption func(*Recorder)

func WithSink(sink Sink) RecorderOption {
	return func(r *Recorder) { r.sinks = append(r.sinks, sink) }
}

func WithRecorderLogger(logger *slog.Logger) RecorderOption {
	return func(r *Recorder) { r.logger = logger }
}

func WithCounter(counter Counter) RecorderOption {
	return func(r *Recorder) { r.counter = counter }
}

func WithBufferSize(n int) RecorderOption {
	return func(r *Recorder) { r.inbox = make(chan Event, n) }
}

func NewRecorder(store Store, opts ...RecorderOption) *Recorder {
	r := &Recorder{
		store:  store,
		inbox:  make(chan Event, 256),
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Record enqueues an event, filling in identity, timestamp, and request
// metadata from the context. It never blocks and never returns an error.
func (r *Recorder) Record(ctx context.Context, event Event) {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = r.now()
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}
	if event.IPAddress == "" {
		event.IPAddress = requestcontext.ClientIP(ctx)
	}

	select {
	case r.inbox <- event:
	default:
		if r.counter != nil {
			r.counter.IncAuditDropped()
		}
		r.logger.WarnContext(ctx, "audit inbox full, event dropped",
			"action", string(event.Action),
		)
	}
}

// Run drains the inbox until ctx is cancelled, then flushes whatever is
// still buffered before returning.
func (r *Recorder) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			r.flush()
			return ctx.Err()
		case event := <-r.inbox:
			r.deliver(ctx, event)
		}
	}
}

func (r *Recorder) flush() {
	// Detached context: the run context is already cancelled.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for {
		select {
		case event := <-r.inbox:
			r.deliver(ctx, event)
		default:
			return
		}
	}
}

func (r *Recorder) deliver(ctx context.Context, event Event) {
	if err := r.store.Append(ctx, event); err != nil {
		r.logger.ErrorContext(ctx, "could not persist audit event",
			"action", string(event.Action),
			"event_id", event.ID.String(),
			"error", err,
		)
	}
	for _, sink := range r.sinks {
		if err := sink.Publish(ctx, event); err != nil {
			r.logger.WarnContext(ctx, "audit sink delivery failed",
				"event_id", event.ID.String(),
				"error", err,
			)
		}
	}
}
