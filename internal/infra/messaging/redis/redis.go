// Package redis implements messaging.Transport on Redis pub/sub.
//
// Pub/sub has no retention: a subscriber only sees payloads published while it is
// subscribed, which matches the at-most-once contract of the event layer.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"catchup-registry/internal/messaging"
)

type Transport struct {
	rdb goredis.UniversalClient
}

// Dial parses url (redis://[:password@]host:port/db), connects and pings.
func Dial(ctx context.Context, url string) (*Transport, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	if opts.DialTimeout == 0 {
		opts.DialTimeout = 5 * time.Second
	}
	rdb := goredis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return New(rdb), nil
}

// New wraps an existing client. Close closes it.
func New(rdb goredis.UniversalClient) *Transport {
	return &Transport{rdb: rdb}
}

func (t *Transport) Publish(ctx context.Context, topic string, payload []byte) error {
	if err := t.rdb.Publish(ctx, topic, payload).Err(); err != nil {
		return fmt.Errorf("redis publish %s: %w", topic, err)
	}
	return nil
}

// Subscribe returns once Redis has confirmed the subscription.
func (t *Transport) Subscribe(ctx context.Context, topic string) (messaging.Subscription, error) {
	ps := t.rdb.Subscribe(ctx, topic)
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, fmt.Errorf("redis subscribe %s: %w", topic, err)
	}
	return &subscription{ps: ps}, nil
}

func (t *Transport) Close() error {
	return t.rdb.Close()
}

// Ping reports whether the server is reachable.
func (t *Transport) Ping(ctx context.Context) error {
	return t.rdb.Ping(ctx).Err()
}

type subscription struct {
	ps *goredis.PubSub
}

func (s *subscription) Next(ctx context.Context) ([]byte, error) {
	msg, err := s.ps.ReceiveMessage(ctx)
	if err != nil {
		if errors.Is(err, goredis.ErrClosed) {
			return nil, messaging.ErrClosed
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("redis receive: %w", err)
	}
	return []byte(msg.Payload), nil
}

func (s *subscription) Close() error {
	return s.ps.Close()
}
