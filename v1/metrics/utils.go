package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// IncrementRequests increments the HTTP request counter.
// Example: metrics.IncrementRequests("/v1/similarity", "200")
func (m *Metrics) IncrementRequests(route, status string) {
	m.requestsTotal.WithLabelValues(route, status).Inc()
}

// RecordRequestDuration records the duration (in seconds) for an HTTP route.
// Example: defer metrics.RecordRequestDuration(time.Now(), "/v1/encode")
func (m *Metrics) RecordRequestDuration(start time.Time, route string) {
	m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
}

// IncrementInvocations counts one pipeline invocation.
// Example: metrics.IncrementInvocations("similarity", "success")
func (m *Metrics) IncrementInvocations(operation, status string) {
	m.invocationsTotal.WithLabelValues(operation, status).Inc()
}

// RecordInvocationDuration records the duration of one pipeline invocation.
func (m *Metrics) RecordInvocationDuration(start time.Time, operation string) {
	m.invocationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

// ObserveModelLoad records how long pipeline construction took.
func (m *Metrics) ObserveModelLoad(start time.Time, status string) {
	m.modelLoadDuration.WithLabelValues(status).Observe(time.Since(start).Seconds())
}

func createCounterVec(namespace, name, help string, labels []string) *prometheus.CounterVec {
	return prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      name,
			Help:      help,
		},
		labels,
	)
}

func createHistogramVec(namespace, name, help string, labels []string, buckets []float64) *prometheus.HistogramVec {
	return prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      name,
			Help:      help,
			Buckets:   buckets,
		},
		labels,
	)
}
