//go:build integration

package kafka

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/redpanda"
)

func TestTransport_RoundTrip(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	container, err := redpanda.Run(ctx, "docker.redpanda.com/redpandadata/redpanda:v24.2.4")
	require.NoError(t, err, "start redpanda")
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	broker, err := container.KafkaSeedBroker(ctx)
	require.NoError(t, err)

	tr, err := New(Config{Brokers: []string{broker}, ConsumerGroup: "registry-test"}, nil)
	require.NoError(t, err)
	defer func() { _ = tr.Close() }()

	require.NoError(t, tr.EnsureTopics(ctx, "company_created"))
	require.NoError(t, tr.EnsureTopics(ctx, "company_created"), "existing topic is not an error")

	sub, err := tr.Subscribe(ctx, "company_created")
	require.NoError(t, err)
	assert.Len(t, tr.subs, 1)
	defer func() {
		_ = sub.Close()
		assert.Empty(t, tr.subs)
	}()

	// the consumer starts at the end of the log; publish until it has joined
	got := make(chan []byte, 1)
	go func() {
		payload, err := sub.Next(ctx)
		if err == nil {
			got <- payload
		}
	}()
	tick := time.NewTicker(500 * time.Millisecond)
	defer tick.Stop()
	for {
		require.NoError(t, tr.Publish(ctx, "company_created", []byte(`{"company":{"name":"Acme"}}`)))
		select {
		case payload := <-got:
			assert.JSONEq(t, `{"company":{"name":"Acme"}}`, string(payload))
			return
		case <-tick.C:
		case <-ctx.Done():
			t.Fatal("no payload received")
		}
	}
}
