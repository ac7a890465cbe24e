package observability

import (
	"context"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics collects application metrics.
type Metrics interface {
	RecordRequest(ctx context.Context, labels RequestLabels)
	RecordLatency(ctx context.Context, duration float64, labels RequestLabels)
	RecordVisionFallback(ctx context.Context, provider string)
}

// RequestLabels contains metric dimensions.
type RequestLabels struct {
	Operation string
	Provider  string
	Backend   string
	Outcome   string
}

func (l RequestLabels) values() []string {
	return []string{orUnknown(l.Operation), orUnknown(l.Provider), orUnknown(l.Backend), orUnknown(l.Outcome)}
}

var requestLabelNames = []string{"operation", "provider", "backend", "outcome"}

// Collector is the Prometheus implementation of Metrics.
type Collector struct {
	once sync.Once

	requests        *prometheus.CounterVec
	latency         *prometheus.HistogramVec
	visionFallbacks *prometheus.CounterVec
}

// NewCollector creates unregistered collectors
func NewCollector() *Collector {
	return &Collector{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "agri",
			Subsystem: "gateway",
			Name:      "advisory_requests_total",
			Help:      "Total number of advisory requests, labeled by operation, provider, backend and outcome.",
		}, requestLabelNames),

		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "agri",
			Subsystem: "gateway",
			Name:      "advisory_duration_seconds",
			Help:      "End-to-end time to answer an advisory request, including backend calls.",
			// Model backends are slow; keep buckets coarse.
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 20, 30, 60, 120},
		}, requestLabelNames),

		visionFallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "agri",
			Subsystem: "gateway",
			Name:      "vision_fallback_total",
			Help:      "Image requests where the vision backend gave no answer and dispatch continued.",
		}, []string{"provider"}),
	}
}

// Register registers the collectors with reg. Safe to call multiple times.
func (c *Collector) Register(reg prometheus.Registerer) error {
	var err error
	c.once.Do(func() {
		for _, col := range []prometheus.Collector{c.requests, c.latency, c.visionFallbacks} {
			if err = reg.Register(col); err != nil {
				return
			}
		}
	})
	return err
}

func (c *Collector) RecordRequest(ctx context.Context, labels RequestLabels) {
	c.requests.WithLabelValues(labels.values()...).Inc()
}

func (c *Collector) RecordLatency(ctx context.Context, duration float64, labels RequestLabels) {
	c.latency.WithLabelValues(labels.values()...).Observe(duration)
}

func (c *Collector) RecordVisionFallback(ctx context.Context, provider string) {
	c.visionFallbacks.WithLabelValues(orUnknown(provider)).Inc()
}

// NopMetrics discards everything
type NopMetrics struct{}

func (NopMetrics) RecordRequest(context.Context, RequestLabels)          {}
func (NopMetrics) RecordLatency(context.Context, float64, RequestLabels) {}
func (NopMetrics) RecordVisionFallback(context.Context, string)          {}

func orUnknown(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
