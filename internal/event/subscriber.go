package event

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"

	"catchup-registry/internal/domain/entity"
	"catchup-registry/internal/messaging"
	"catchup-registry/internal/observability/metrics"
)

// Handler reacts to one created company. Errors and panics are logged and the
// subscriber moves on to the next message.
type Handler func(ctx context.Context, company *entity.Company) error

// State is the lifecycle state of a running subscriber.
type State int32

const (
	StateListening State = iota
	StateTerminated
)

func (s State) String() string {
	if s == StateListening {
		return "listening"
	}
	return "terminated"
}

// Subscriber consumes company_created messages and dispatches them to a handler.
type Subscriber struct {
	transport messaging.Transport
	topic     string
	handler   Handler
	logger    *slog.Logger
}

func NewSubscriber(t messaging.Transport, h Handler, logger *slog.Logger) *Subscriber {
	if logger == nil {
		logger = slog.Default()
	}
	return &Subscriber{transport: t, topic: TopicCompanyCreated, handler: h, logger: logger}
}

// Start opens the subscription and runs the receive loop in its own goroutine.
// It fails only if the subscription cannot be opened. The loop ends when ctx is
// canceled, Stop is called, or the subscription fails.
func (s *Subscriber) Start(ctx context.Context) (*Handle, error) {
	if s.handler == nil {
		return nil, errors.New("subscriber: nil handler")
	}
	sub, err := s.transport.Subscribe(ctx, s.topic)
	if err != nil {
		return nil, fmt.Errorf("subscribe %s: %w", s.topic, err)
	}

	loopCtx, cancel := context.WithCancel(ctx)
	h := &Handle{cancel: cancel, done: make(chan struct{})}
	// not every transport's Next observes cancellation while blocked
	stopClose := context.AfterFunc(loopCtx, func() { _ = sub.Close() })
	metrics.SetSubscriberListening(s.topic, true)
	s.logger.Info("subscriber listening", slog.String("topic", s.topic))

	go func() {
		err := s.loop(loopCtx, sub)
		if stopClose() {
			_ = sub.Close()
		}
		cancel()
		h.err = err
		h.state.Store(int32(StateTerminated))
		metrics.SetSubscriberListening(s.topic, false)
		if err != nil {
			s.logger.Error("subscriber terminated", slog.String("topic", s.topic), slog.Any("error", err))
		} else {
			s.logger.Info("subscriber stopped", slog.String("topic", s.topic))
		}
		close(h.done)
	}()
	return h, nil
}

func (s *Subscriber) loop(ctx context.Context, sub messaging.Subscription) error {
	for {
		payload, err := sub.Next(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("receive %s: %w", s.topic, err)
		}
		s.dispatch(ctx, payload)
	}
}

func (s *Subscriber) dispatch(ctx context.Context, payload []byte) {
	company, err := DecodeCompany(payload)
	if err != nil {
		metrics.RecordEventConsumed(s.topic, "decode_error")
		s.logger.Warn("discarding malformed message",
			slog.String("topic", s.topic),
			slog.Int("bytes", len(payload)),
			slog.Any("error", err))
		return
	}

	defer func() {
		if r := recover(); r != nil {
			metrics.RecordEventConsumed(s.topic, "panic")
			s.logger.Error("handler panicked",
				slog.String("topic", s.topic),
				slog.String("company_id", company.ID.String()),
				slog.Any("panic", r),
				slog.String("stack", string(debug.Stack())))
		}
	}()

	if err := s.handler(ctx, company); err != nil {
		metrics.RecordEventConsumed(s.topic, "handler_error")
		s.logger.Error("handler failed",
			slog.String("topic", s.topic),
			slog.String("company_id", company.ID.String()),
			slog.Any("error", err))
		return
	}
	metrics.RecordEventConsumed(s.topic, "handled")
}

// Handle owns a running subscriber loop.
type Handle struct {
	cancel   context.CancelFunc
	state    atomic.Int32
	done     chan struct{}
	err      error
	stopOnce sync.Once
}

// Stop signals the loop to exit. It does not wait; use Wait.
func (h *Handle) Stop() {
	h.stopOnce.Do(h.cancel)
}

// Wait blocks until the loop has exited. It returns nil after Stop or context
// cancellation and the subscription error otherwise.
func (h *Handle) Wait() error {
	<-h.done
	return h.err
}

// Done is closed when the loop has exited.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

func (h *Handle) State() State {
	return State(h.state.Load())
}

// LogHandler is the default handler: it records the created company in the log.
func LogHandler(logger *slog.Logger) Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(_ context.Context, c *entity.Company) error {
		logger.Info("company created",
			slog.String("company_id", c.ID.String()),
			slog.String("name", c.Name),
			slog.String("url", c.URL))
		return nil
	}
}
