package health

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func get(t *testing.T, h http.Handler, path string) (*httptest.ResponseRecorder, statusResponse) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	var body statusResponse
	if rec.Header().Get("Content-Type") == "application/json" {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	}
	return rec, body
}

func TestLiveness(t *testing.T) {
	s := NewServer(":0", prometheus.NewRegistry(), nil)
	rec, body := get(t, s.Handler(), "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", body.Status)
}

func TestReadiness(t *testing.T) {
	s := NewServer(":0", prometheus.NewRegistry(), nil)

	rec, body := get(t, s.Handler(), "/health/ready")
	assert.Equal(t, http.StatusOK, rec.Code, "no checks means ready")
	assert.Equal(t, "ok", body.Status)

	s.AddCheck("database", func(context.Context) error { return nil })
	s.AddCheck("subscriber", func(context.Context) error { return errors.New("terminated") })

	rec, body = get(t, s.Handler(), "/health/ready")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "not ready", body.Status)
	assert.Equal(t, map[string]string{"database": "ok", "subscriber": "terminated"}, body.Checks)

	s.AddCheck("subscriber", func(context.Context) error { return nil })
	rec, _ = get(t, s.Handler(), "/health/ready")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadiness_CheckTimeout(t *testing.T) {
	s := NewServer(":0", prometheus.NewRegistry(), nil)
	s.CheckTimeout = 20 * time.Millisecond
	s.AddCheck("slow", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	rec, body := get(t, s.Handler(), "/health/ready")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, context.DeadlineExceeded.Error(), body.Checks["slow"])
}

func TestMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := prometheus.NewCounter(prometheus.CounterOpts{Name: "health_test_total", Help: "test"})
	reg.MustRegister(c)
	c.Inc()

	s := NewServer(":0", reg, nil)
	rec, _ := get(t, s.Handler(), "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "health_test_total 1")
}

func TestStart_GracefulShutdown(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())

	s := NewServer(addr, prometheus.NewRegistry(), nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + addr + "/health")
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(6 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestStart_ListenFailure(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()

	s := NewServer(l.Addr().String(), prometheus.NewRegistry(), nil)
	assert.Error(t, s.Start(context.Background()))
}
