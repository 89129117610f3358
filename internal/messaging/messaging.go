// Package messaging declares the publish/subscribe port the event layer uses.
//
// Delivery is at-most-once from the publisher's point of view: a successful
// Publish means the transport accepted the payload, nothing more.
package messaging

import (
	"context"
	"errors"
)

// ErrClosed is returned by Next after the subscription or its transport was closed.
var ErrClosed = errors.New("messaging: subscription closed")

// Transport moves opaque payloads between processes by topic name.
type Transport interface {
	Publish(ctx context.Context, topic string, payload []byte) error
	Subscribe(ctx context.Context, topic string) (Subscription, error)
	Close() error
}

// Subscription is a pull-based stream of payloads for one topic.
type Subscription interface {
	// Next blocks until a payload arrives, ctx is done, or the subscription fails.
	Next(ctx context.Context) ([]byte, error)
	Close() error
}
