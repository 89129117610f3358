package event

import (
	"context"
	"errors"
	"sync"

	"catchup-registry/internal/messaging"
)

// scriptedTransport replays a fixed list of deliveries to its single subscriber,
// then returns tailErr (or blocks until ctx is done when tailErr is nil).
type scriptedTransport struct {
	mu           sync.Mutex
	deliveries   [][]byte
	tailErr      error
	subscribeErr error
	publishErr   error
	published    [][]byte
	closed       int
}

func (s *scriptedTransport) Publish(_ context.Context, _ string, payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.publishErr != nil {
		return s.publishErr
	}
	s.published = append(s.published, payload)
	return nil
}

func (s *scriptedTransport) Subscribe(context.Context, string) (messaging.Subscription, error) {
	if s.subscribeErr != nil {
		return nil, s.subscribeErr
	}
	return &scriptedSubscription{t: s, closed: make(chan struct{})}, nil
}

func (s *scriptedTransport) Close() error { return nil }

func (s *scriptedTransport) publishedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.published)
}

type scriptedSubscription struct {
	t      *scriptedTransport
	next   int
	once   sync.Once
	closed chan struct{}
}

func (s *scriptedSubscription) Next(ctx context.Context) ([]byte, error) {
	if s.next < len(s.t.deliveries) {
		d := s.t.deliveries[s.next]
		s.next++
		return d, nil
	}
	if s.t.tailErr != nil {
		return nil, s.t.tailErr
	}
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-s.closed:
		return nil, messaging.ErrClosed
	}
}

func (s *scriptedSubscription) Close() error {
	s.once.Do(func() {
		close(s.closed)
		s.t.mu.Lock()
		s.t.closed++
		s.t.mu.Unlock()
	})
	return nil
}

var errBrokerDown = errors.New("broker down")
