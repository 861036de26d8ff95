package observability

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// NewRegistry returns a Prometheus registry with the Go runtime and process
// collectors installed.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// MetricsHandler returns an HTTP handler exposing reg in the Prometheus text format.
func MetricsHandler(reg *prometheus.Registry) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	return mux
}

// ServeMetrics serves /metrics on addr until ctx is cancelled.
//
// Precondition: addr must be a valid listen address; reg must be non-nil.
// Postcondition: Returns nil after a clean shutdown, or the listener error.
func ServeMetrics(ctx context.Context, addr string, reg *prometheus.Registry, logger *zap.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           MetricsHandler(reg),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("metrics endpoint listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving metrics: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down metrics endpoint: %w", err)
		}
		return nil
	}
}

// StoreMetrics counts persisted-store mutations. A nil *StoreMetrics records
// nothing.
type StoreMetrics struct {
	mutations *prometheus.CounterVec
	bytes     *prometheus.GaugeVec
}

// NewStoreMetrics registers the store collectors on reg.
//
// Precondition: reg must be non-nil and must not already hold these collectors.
func NewStoreMetrics(reg prometheus.Registerer) *StoreMetrics {
	f := promauto.With(reg)
	return &StoreMetrics{
		mutations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dex",
			Subsystem: "store",
			Name:      "mutations_total",
			Help:      "Store mutations by document, operation, and outcome.",
		}, []string{"document", "operation", "outcome"}),
		bytes: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "dex",
			Subsystem: "store",
			Name:      "document_bytes",
			Help:      "Size of the last document written.",
		}, []string{"document"}),
	}
}

// Mutation records one mutation attempt. size is ignored when err is non-nil.
func (m *StoreMetrics) Mutation(document, operation string, size int, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.mutations.WithLabelValues(document, operation, "error").Inc()
		return
	}
	m.mutations.WithLabelValues(document, operation, "ok").Inc()
	m.bytes.WithLabelValues(document).Set(float64(size))
}
