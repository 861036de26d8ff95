package observability

import (
	"context"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMetricsHandler_ExposesRegisteredCollectors(t *testing.T) {
	reg := NewRegistry()
	c := prometheus.NewCounter(prometheus.CounterOpts{Name: "dex_test_total", Help: "test counter"})
	reg.MustRegister(c)
	c.Add(2)

	srv := httptest.NewServer(MetricsHandler(reg))
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, 200, resp.StatusCode)
	assert.Contains(t, string(body), "dex_test_total 2")
	assert.Contains(t, string(body), "go_goroutines")
}

func TestServeMetrics_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- ServeMetrics(ctx, "127.0.0.1:0", NewRegistry(), zap.NewNop()) }()
	cancel()
	assert.NoError(t, <-done)
}

func TestStoreMetrics_Mutation(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewStoreMetrics(reg)
	m.Mutation("doc", "toggle_favorite", 120, nil)
	m.Mutation("doc", "toggle_favorite", 0, assert.AnError)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.mutations.WithLabelValues("doc", "toggle_favorite", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.mutations.WithLabelValues("doc", "toggle_favorite", "error")))
	assert.Equal(t, 120.0, testutil.ToFloat64(m.bytes.WithLabelValues("doc")))

	var nilMetrics *StoreMetrics
	assert.NotPanics(t, func() { nilMetrics.Mutation("doc", "x", 1, nil) })
}
