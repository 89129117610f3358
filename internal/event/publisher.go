package event

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"catchup-registry/internal/domain/entity"
	"catchup-registry/internal/messaging"
	"catchup-registry/internal/observability/metrics"
	"catchup-registry/internal/observability/tracing"
	"catchup-registry/internal/resilience/circuitbreaker"
)

// DefaultPublishTimeout bounds one publish when the caller's context has no deadline.
const DefaultPublishTimeout = 5 * time.Second

// Publisher sends company_created events through a circuit breaker.
type Publisher struct {
	transport messaging.Transport
	breaker   *circuitbreaker.CircuitBreaker
	timeout   time.Duration
	logger    *slog.Logger
}

// PublisherOption configures a Publisher.
type PublisherOption func(*Publisher)

// WithPublishTimeout bounds each publish. Non-positive values keep DefaultPublishTimeout.
func WithPublishTimeout(d time.Duration) PublisherOption {
	return func(p *Publisher) {
		if d > 0 {
			p.timeout = d
		}
	}
}

// WithPublisherLogger sets the logger used for publish failures.
func WithPublisherLogger(l *slog.Logger) PublisherOption {
	return func(p *Publisher) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithBreaker replaces the default breaker built from circuitbreaker.PublisherConfig.
func WithBreaker(cb *circuitbreaker.CircuitBreaker) PublisherOption {
	return func(p *Publisher) {
		if cb != nil {
			p.breaker = cb
		}
	}
}

// NewPublisher returns a publisher on t with the default timeout and breaker.
func NewPublisher(t messaging.Transport, opts ...PublisherOption) *Publisher {
	p := &Publisher{
		transport: t,
		breaker:   circuitbreaker.New(circuitbreaker.PublisherConfig()),
		timeout:   DefaultPublishTimeout,
		logger:    slog.Default(),
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// PublishCreated announces that c was created. The error is returned for the
// caller's logging; it must not be treated as a registration failure.
func (p *Publisher) PublishCreated(ctx context.Context, c *entity.Company) (err error) {
	if c == nil {
		return fmt.Errorf("publish %s: nil company", TopicCompanyCreated)
	}
	ctx, span := tracing.StartSpan(ctx, "event.PublishCreated",
		attribute.String("messaging.destination", TopicCompanyCreated),
		attribute.String("company.id", c.ID.String()))
	defer func() { tracing.EndSpan(span, err) }()

	payload, err := EncodeCompany(c)
	if err != nil {
		metrics.RecordEventPublished(TopicCompanyCreated, false)
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	_, err = p.breaker.Execute(func() (interface{}, error) {
		return nil, p.transport.Publish(ctx, TopicCompanyCreated, payload)
	})
	metrics.RecordEventPublished(TopicCompanyCreated, err == nil)
	if err != nil {
		p.logger.Warn("company_created publish failed",
			slog.String("company_id", c.ID.String()),
			slog.String("company", c.NaturalKey()),
			slog.String("circuit", p.breaker.State().String()),
			slog.Any("error", err))
		return fmt.Errorf("publish %s: %w", TopicCompanyCreated, err)
	}
	p.logger.Debug("company_created published",
		slog.String("company_id", c.ID.String()),
		slog.Int("bytes", len(payload)))
	return nil
}
