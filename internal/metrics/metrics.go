// Package metrics provides Prometheus metrics for upstream calls, scans and
// the tool surface. A nil *Metrics is valid and records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics for the learning hour server.
type Metrics struct {
	UpstreamRequests *prometheus.CounterVec
	UpstreamDuration *prometheus.HistogramVec
	ExamplesFound    *prometheus.CounterVec
	ImageCache       *prometheus.CounterVec
	ToolCalls        *prometheus.CounterVec
}

// New creates metrics registered against reg. Pass prometheus.DefaultRegisterer
// in the binary and a fresh prometheus.NewRegistry() in tests.
func New(reg prometheus.Registerer) (m *Metrics) {
	factory := promauto.With(reg)
	m = &Metrics{
		UpstreamRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "learninghour_upstream_requests_total",
				Help: "Total number of requests to external APIs",
			},
			[]string{"service", "operation", "status"},
		),
		UpstreamDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "learninghour_upstream_request_duration_seconds",
				Help:    "Latency of requests to external APIs",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"service"},
		),
		ExamplesFound: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "learninghour_examples_found_total",
				Help: "Total number of code smell examples collected from repositories",
			},
			[]string{"smell"},
		),
		ImageCache: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "learninghour_image_cache_lookups_total",
				Help: "Code image cache lookups by result",
			},
			[]string{"result"},
		),
		ToolCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "learninghour_tool_calls_total",
				Help: "Total number of tool invocations by outcome",
			},
			[]string{"tool", "status"},
		),
	}
	return m
}

// ObserveUpstream records one external request.
func (m *Metrics) ObserveUpstream(service, operation, status string, started time.Time) {
	if m == nil {
		return
	}
	m.UpstreamRequests.WithLabelValues(service, operation, status).Inc()
	m.UpstreamDuration.WithLabelValues(service).Observe(time.Since(started).Seconds())
}

// AddExamples counts collected examples for a smell.
func (m *Metrics) AddExamples(smell string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.ExamplesFound.WithLabelValues(smell).Add(float64(n))
}

// CacheLookup records a hit or miss.
func (m *Metrics) CacheLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.ImageCache.WithLabelValues(result).Inc()
}

// ToolCall records a tool invocation outcome.
func (m *Metrics) ToolCall(tool, status string) {
	if m == nil {
		return
	}
	m.ToolCalls.WithLabelValues(tool, status).Inc()
}
