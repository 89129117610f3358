// Package memory is an in-process messaging.Transport for tests and single-process runs.
package memory

import (
	"context"
	"sync"

	"catchup-registry/internal/messaging"
)

// DefaultBuffer is the per-subscription queue length.
const DefaultBuffer = 256

// Transport fans every published payload out to all current subscribers of the topic.
// Publish blocks while a subscriber's buffer is full.
type Transport struct {
	mu     sync.RWMutex
	subs   map[string]map[*subscription]struct{}
	buffer int
	closed bool
	done   chan struct{}
	once   sync.Once
}

func New() *Transport {
	return NewWithBuffer(DefaultBuffer)
}

func NewWithBuffer(n int) *Transport {
	if n < 1 {
		n = 1
	}
	return &Transport{subs: make(map[string]map[*subscription]struct{}), buffer: n, done: make(chan struct{})}
}

func (t *Transport) Publish(ctx context.Context, topic string, payload []byte) error {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.closed {
		return messaging.ErrClosed
	}
	for s := range t.subs[topic] {
		msg := append([]byte(nil), payload...)
		select {
		case s.ch <- msg:
		case <-s.done:
		case <-t.done:
			return messaging.ErrClosed
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func (t *Transport) Subscribe(_ context.Context, topic string) (messaging.Subscription, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil, messaging.ErrClosed
	}
	s := &subscription{
		t:     t,
		topic: topic,
		ch:    make(chan []byte, t.buffer),
		done:  make(chan struct{}),
	}
	if t.subs[topic] == nil {
		t.subs[topic] = make(map[*subscription]struct{})
	}
	t.subs[topic][s] = struct{}{}
	return s, nil
}

// Close ends every subscription. Buffered payloads are discarded.
func (t *Transport) Close() error {
	// release blocked publishers before taking the write lock
	t.once.Do(func() { close(t.done) })
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil
	}
	t.closed = true
	for _, set := range t.subs {
		for s := range set {
			s.once.Do(func() { close(s.done) })
		}
	}
	t.subs = nil
	return nil
}

// Subscribers returns the number of open subscriptions on topic.
func (t *Transport) Subscribers(topic string) int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.subs[topic])
}

type subscription struct {
	t     *Transport
	topic string
	ch    chan []byte
	done  chan struct{}
	once  sync.Once
}

func (s *subscription) Next(ctx context.Context) ([]byte, error) {
	select {
	case <-s.done:
		return nil, messaging.ErrClosed
	default:
	}
	select {
	case msg := <-s.ch:
		return msg, nil
	case <-s.done:
		return nil, messaging.ErrClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *subscription) Close() error {
	s.once.Do(func() { close(s.done) })
	s.t.mu.Lock()
	delete(s.t.subs[s.topic], s)
	s.t.mu.Unlock()
	return nil
}
