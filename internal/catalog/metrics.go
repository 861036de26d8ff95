package catalog

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics records catalog request outcomes. A nil *Metrics records nothing.
type Metrics struct {
	requests      *prometheus.CounterVec
	duration      *prometheus.HistogramVec
	batchFailures prometheus.Counter
}

// NewMetrics registers the catalog collectors on reg.
//
// Precondition: reg must be non-nil and must not already hold these collectors.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dex",
			Subsystem: "catalog",
			Name:      "requests_total",
			Help:      "Catalog HTTP requests by endpoint and outcome.",
		}, []string{"endpoint", "outcome"}),
		duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "dex",
			Subsystem: "catalog",
			Name:      "request_duration_seconds",
			Help:      "Catalog HTTP request latency by endpoint.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"endpoint"}),
		batchFailures: f.NewCounter(prometheus.CounterOpts{
			Namespace: "dex",
			Subsystem: "catalog",
			Name:      "batch_failures_total",
			Help:      "Individual fetches that failed inside a batch.",
		}),
	}
}

func (m *Metrics) observe(endpoint, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(endpoint, outcome).Inc()
	m.duration.WithLabelValues(endpoint).Observe(elapsed.Seconds())
}

func (m *Metrics) batchFailed(n int) {
	if m == nil || n == 0 {
		return
	}
	m.batchFailures.Add(float64(n))
}
