// Package kafka implements messaging.Transport on Kafka with franz-go.
//
// Producing is synchronous per call so Publish reports broker acceptance. Each
// Subscribe opens its own consumer-group client; offsets are committed by the
// client's autocommit loop, so a payload is handed out at most once per group.
package kafka

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	"catchup-registry/internal/messaging"
)

type Config struct {
	Brokers       []string
	ConsumerGroup string
	// Partitions and ReplicationFactor are used when EnsureTopics creates a topic.
	Partitions        int32
	ReplicationFactor int16
}

type Transport struct {
	cfg      Config
	producer *kgo.Client
	logger   *slog.Logger

	mu   sync.Mutex
	subs map[*subscription]struct{}
}

func New(cfg Config, logger *slog.Logger) (*Transport, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("kafka: at least one broker is required")
	}
	if cfg.Partitions <= 0 {
		cfg.Partitions = 1
	}
	if cfg.ReplicationFactor <= 0 {
		cfg.ReplicationFactor = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	producer, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.RequiredAcks(kgo.AllISRAcks()),
		kgo.ProducerBatchMaxBytes(1<<20),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return &Transport{
		cfg:      cfg,
		producer: producer,
		logger:   logger,
		subs:     make(map[*subscription]struct{}),
	}, nil
}

// EnsureTopics creates the given topics, ignoring ones that already exist.
func (t *Transport) EnsureTopics(ctx context.Context, topics ...string) error {
	adm := kadm.NewClient(t.producer)
	resps, err := adm.CreateTopics(ctx, t.cfg.Partitions, t.cfg.ReplicationFactor, nil, topics...)
	if err != nil {
		return fmt.Errorf("kafka create topics: %w", err)
	}
	for _, r := range resps.Sorted() {
		if r.Err != nil && !errors.Is(r.Err, kerr.TopicAlreadyExists) {
			return fmt.Errorf("kafka create topic %s: %w", r.Topic, r.Err)
		}
	}
	return nil
}

func (t *Transport) Publish(ctx context.Context, topic string, payload []byte) error {
	rec := &kgo.Record{Topic: topic, Value: payload}
	if err := t.producer.ProduceSync(ctx, rec).FirstErr(); err != nil {
		return fmt.Errorf("kafka produce %s: %w", topic, err)
	}
	return nil
}

// Subscribe opens a consumer for topic. It fails when no broker answers
// before ctx ends, so an unreachable cluster is reported at startup.
func (t *Transport) Subscribe(ctx context.Context, topic string) (messaging.Subscription, error) {
	opts := []kgo.Opt{
		kgo.SeedBrokers(t.cfg.Brokers...),
		kgo.ConsumeTopics(topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtEnd()),
	}
	if t.cfg.ConsumerGroup != "" {
		opts = append(opts, kgo.ConsumerGroup(t.cfg.ConsumerGroup))
	}
	cl, err := kgo.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer %s: %w", topic, err)
	}
	if err := cl.Ping(ctx); err != nil {
		cl.Close()
		return nil, fmt.Errorf("kafka consumer %s: %w", topic, err)
	}
	s := &subscription{t: t, cl: cl, topic: topic}
	t.mu.Lock()
	t.subs[s] = struct{}{}
	t.mu.Unlock()
	return s, nil
}

// Close closes the producer and every open subscription.
func (t *Transport) Close() error {
	t.mu.Lock()
	subs := t.subs
	t.subs = make(map[*subscription]struct{})
	t.mu.Unlock()
	for s := range subs {
		s.once.Do(s.cl.Close)
	}
	t.producer.Close()
	return nil
}

// Ping checks that at least one broker answers.
func (t *Transport) Ping(ctx context.Context) error {
	return t.producer.Ping(ctx)
}

type subscription struct {
	t     *Transport
	cl    *kgo.Client
	topic string

	// records from the last poll not yet returned; only touched by Next
	pending []*kgo.Record
	once    sync.Once
}

func (s *subscription) Next(ctx context.Context) ([]byte, error) {
	for len(s.pending) == 0 {
		fetches := s.cl.PollFetches(ctx)
		if fetches.IsClientClosed() {
			return nil, messaging.ErrClosed
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var fatal error
		fetches.EachError(func(topic string, partition int32, err error) {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return
			}
			// the client retries retriable fetch errors itself
			if kerr.IsRetriable(err) {
				s.t.logger.Warn("kafka fetch error",
					slog.String("topic", topic),
					slog.Int("partition", int(partition)),
					slog.Any("error", err))
				return
			}
			if fatal == nil {
				fatal = fmt.Errorf("kafka fetch %s[%d]: %w", topic, partition, err)
			}
		})
		if fatal != nil {
			return nil, fatal
		}
		s.pending = fetches.Records()
	}
	rec := s.pending[0]
	s.pending = s.pending[1:]
	return rec.Value, nil
}

func (s *subscription) Close() error {
	s.t.mu.Lock()
	delete(s.t.subs, s)
	s.t.mu.Unlock()
	s.once.Do(s.cl.Close)
	return nil
}
