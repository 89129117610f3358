package event

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catchup-registry/internal/domain/entity"
	"catchup-registry/internal/infra/messaging/memory"
	"catchup-registry/internal/messaging"
)

type recorder struct {
	mu    sync.Mutex
	names []string
	seen  chan struct{}
}

func newRecorder() *recorder { return &recorder{seen: make(chan struct{}, 16)} }

func (r *recorder) handle(_ context.Context, c *entity.Company) error {
	r.mu.Lock()
	r.names = append(r.names, c.Name)
	r.mu.Unlock()
	r.seen <- struct{}{}
	return nil
}

func (r *recorder) got() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.names...)
}

func waitN(t *testing.T, ch <-chan struct{}, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-ch:
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out after %d of %d deliveries", i, n)
		}
	}
}

func payload(t *testing.T, name string) []byte {
	t.Helper()
	c := acme()
	c.Name = name
	data, err := EncodeCompany(c)
	require.NoError(t, err)
	return data
}

func TestSubscriber_SkipsMalformedMessages(t *testing.T) {
	tr := memory.New()
	rec := newRecorder()

	h, err := NewSubscriber(tr, rec.handle, nil).Start(context.Background())
	require.NoError(t, err)
	defer h.Stop()

	ctx := context.Background()
	require.NoError(t, tr.Publish(ctx, TopicCompanyCreated, payload(t, "First")))
	require.NoError(t, tr.Publish(ctx, TopicCompanyCreated, []byte(`{"company":`)))
	require.NoError(t, tr.Publish(ctx, TopicCompanyCreated, payload(t, "Second")))

	waitN(t, rec.seen, 2)
	assert.Equal(t, []string{"First", "Second"}, rec.got())
	assert.Equal(t, StateListening, h.State())

	h.Stop()
	assert.NoError(t, h.Wait())
	assert.Equal(t, StateTerminated, h.State())
}

func TestSubscriber_HandlerErrorsAndPanicsDoNotStopTheLoop(t *testing.T) {
	tr := &scriptedTransport{}
	tr.deliveries = [][]byte{payload(t, "fails"), payload(t, "panics"), payload(t, "ok")}

	handled := make(chan string, 3)
	handler := func(_ context.Context, c *entity.Company) error {
		handled <- c.Name
		switch c.Name {
		case "fails":
			return errors.New("downstream unavailable")
		case "panics":
			panic("nil map write")
		}
		return nil
	}

	h, err := NewSubscriber(tr, handler, nil).Start(context.Background())
	require.NoError(t, err)

	var names []string
	for i := 0; i < 3; i++ {
		select {
		case n := <-handled:
			names = append(names, n)
		case <-time.After(2 * time.Second):
			t.Fatal("handler not invoked")
		}
	}
	assert.Equal(t, []string{"fails", "panics", "ok"}, names)
	assert.Equal(t, StateListening, h.State())

	h.Stop()
	assert.NoError(t, h.Wait())
}

func TestSubscriber_SubscriptionFailureTerminates(t *testing.T) {
	tr := &scriptedTransport{tailErr: errBrokerDown}
	tr.deliveries = [][]byte{[]byte("garbage")}

	h, err := NewSubscriber(tr, newRecorder().handle, nil).Start(context.Background())
	require.NoError(t, err)

	select {
	case <-h.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("subscriber did not terminate")
	}
	err = h.Wait()
	assert.ErrorIs(t, err, errBrokerDown)
	assert.Equal(t, StateTerminated, h.State())
	assert.Equal(t, 1, tr.closed)
}

func TestSubscriber_ParentCancellationIsCleanShutdown(t *testing.T) {
	tr := &scriptedTransport{}
	ctx, cancel := context.WithCancel(context.Background())

	h, err := NewSubscriber(tr, newRecorder().handle, nil).Start(ctx)
	require.NoError(t, err)

	cancel()
	assert.NoError(t, h.Wait())
	assert.Equal(t, StateTerminated, h.State())
}

func TestSubscriber_TransportCloseTerminatesWithError(t *testing.T) {
	tr := memory.New()
	h, err := NewSubscriber(tr, newRecorder().handle, nil).Start(context.Background())
	require.NoError(t, err)

	require.NoError(t, tr.Close())

	assert.ErrorIs(t, h.Wait(), messaging.ErrClosed)
}

func TestSubscriber_StartFails(t *testing.T) {
	_, err := NewSubscriber(&scriptedTransport{subscribeErr: errBrokerDown}, newRecorder().handle, nil).Start(context.Background())
	assert.ErrorIs(t, err, errBrokerDown)

	_, err = NewSubscriber(&scriptedTransport{}, nil, nil).Start(context.Background())
	assert.Error(t, err)
}

func TestSubscriber_StopIsIdempotent(t *testing.T) {
	h, err := NewSubscriber(&scriptedTransport{}, newRecorder().handle, nil).Start(context.Background())
	require.NoError(t, err)

	h.Stop()
	h.Stop()
	assert.NoError(t, h.Wait())
	assert.NoError(t, h.Wait())
}

func TestLogHandler(t *testing.T) {
	assert.NoError(t, LogHandler(nil)(context.Background(), acme()))
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "listening", StateListening.String())
	assert.Equal(t, "terminated", StateTerminated.String())
}
