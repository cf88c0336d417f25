package audit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	"admin-gateway/pkg/platform/circuit"
)

// Sink receives events after they are persisted. Delivery is best-effort;
// the recorder never fails an event because a sink did.
type Sink interface {
	Publish(ctx context.Context, event Event) error
}

// probeInterval is how many publishes are dropped between broker probes
// while the circuit is open.
const probeInterval = 10

// KafkaPublisher ships audit events to a Kafka topic. A circuit breaker
// guards the broker so an outage degrades to dropped sink deliveries instead
// of piling up blocked produce calls.
type KafkaPublisher struct {
	client  *kgo.Client
	topic   string
	breaker *circuit.Breaker
	skipped atomic.Uint64
	logger  *slog.Logger
}

type KafkaOption func(*KafkaPublisher)

func WithKafkaLogger(logger *slog.Logger) KafkaOption {
	return func(p *KafkaPublisher) { p.logger = logger }
}

func NewKafkaPublisher(brokers []string, topic string, opts ...KafkaOption) (*KafkaPublisher, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	p := &KafkaPublisher{
		client:  client,
		topic:   topic,
		breaker: circuit.New("audit-kafka", circuit.WithFailureThreshold(5), circuit.WithSuccessThreshold(1)),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// EnsureTopic creates the audit topic if the broker does not have it yet.
// Safe to call on every startup.
func (p *KafkaPublisher) EnsureTopic(ctx context.Context, partitions int32, replication int16) error {
	admin := kadm.NewClient(p.client)
	resp, err := admin.CreateTopics(ctx, partitions, replication, nil, p.topic)
	if err != nil {
		return fmt.Errorf("create audit topic: %w", err)
	}
	for _, result := range resp {
		if result.Err != nil && !errors.Is(result.Err, kerr.TopicAlreadyExists) {
			return fmt.Errorf("create audit topic %s: %w", result.Topic, result.Err)
		}
	}
	return nil
}

// Publish produces one event. While the circuit is open most events are
// dropped immediately; every probeInterval-th call goes through as a probe
// so the circuit can close once the broker recovers.
func (p *KafkaPublisher) Publish(ctx context.Context, event Event) error {
	if p.breaker.IsOpen() && p.skipped.Add(1)%probeInterval != 0 {
		return fmt.Errorf("audit kafka circuit open, event %s dropped", event.ID)
	}

	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode audit event: %w", err)
	}
	record := &kgo.Record{
		Topic: p.topic,
		Key:   []byte(event.UserID),
		Value: value,
	}
	if err := p.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		if _, change := p.breaker.RecordFailure(); change.Opened {
			p.logger.ErrorContext(ctx, "audit kafka circuit opened", "topic", p.topic, "error", err)
		}
		return fmt.Errorf("produce audit event: %w", err)
	}
	if _, change := p.breaker.RecordSuccess(); change.Closed {
		p.logger.InfoContext(ctx, "audit kafka circuit closed", "topic", p.topic)
	}
	return nil
}

func (p *KafkaPublisher) Close() {
	p.client.Close()
}
