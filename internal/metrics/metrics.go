// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Allocation results
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

// Metrics holds the service collectors on a dedicated registry.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	Registry            *prometheus.Registry
	SequenceAllocations *prometheus.CounterVec
	UsersCreated        prometheus.Counter
	HTTPRequests        *prometheus.CounterVec
	HTTPLatency         *prometheus.HistogramVec
}

// New creates and registers the collectors under the given namespace
func New(namespace string) *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		Registry: registry,
		SequenceAllocations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sequence_allocations_total",
			Help:      "Sequence allocations by sequence and result.",
		}, []string{"sequence", "result"}),
		UsersCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "users_created_total",
			Help:      "Total number of users created.",
		}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		HTTPLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	registry.MustRegister(
		m.SequenceAllocations,
		m.UsersCreated,
		m.HTTPRequests,
		m.HTTPLatency,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveAllocation counts one allocation attempt for sequence
func (m *Metrics) ObserveAllocation(sequence string, ok bool) {
	if m == nil {
		return
	}
	result := ResultSuccess
	if !ok {
		result = ResultFailure
	}
	m.SequenceAllocations.WithLabelValues(sequence, result).Inc()
}

// ObserveUserCreated counts one persisted user
func (m *Metrics) ObserveUserCreated() {
	if m == nil {
		return
	}
	m.UsersCreated.Inc()
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}
