package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// modelLoadBuckets covers pipeline construction, which loads model weights
// from disk and usually takes seconds rather than milliseconds.
var modelLoadBuckets = []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120}

// Metrics encapsulates the Prometheus registry and HTTP server responsible
// for exposing application metrics.
type Metrics struct {
	// Server defines the HTTP server used to expose the /metrics endpoint.
	Server *http.Server

	// Registry is the Prometheus registry where all metrics are registered.
	// Each service maintains its own isolated registry to prevent metric name collisions.
	Registry *prometheus.Registry

	requestsTotal      *prometheus.CounterVec
	requestDuration    *prometheus.HistogramVec
	invocationsTotal   *prometheus.CounterVec
	invocationDuration *prometheus.HistogramVec
	modelLoadDuration  *prometheus.HistogramVec
}

// NewMetrics initializes and returns a new instance of the Metrics struct.
// It sets up a dedicated Prometheus registry, registers default system collectors,
// wraps all metrics with a constant `service` label, and creates an HTTP server
// exposing the /metrics endpoint.
//
// Example:
//
//	m := metrics.NewMetrics(metrics.Config{
//	    Address:                 ":9090",
//	    ServiceName:             "sentence-embed",
//	    EnableDefaultCollectors: true,
//	})
//	go m.Server.ListenAndServe()
func NewMetrics(cfg Config) *Metrics {
	registry := prometheus.NewRegistry()

	// All metrics emitted by this service carry service="<cfg.ServiceName>".
	wrappedRegistry := prometheus.WrapRegistererWith(
		prometheus.Labels{"service": cfg.ServiceName},
		registry,
	)

	m := &Metrics{
		Registry: registry,
	}

	m.requestsTotal = createCounterVec(cfg.Namespace, "http_requests_total", "Total number of HTTP requests handled", []string{"route", "status"})
	m.requestDuration = createHistogramVec(cfg.Namespace, "http_request_duration_seconds", "Duration of HTTP requests in seconds", []string{"route"}, prometheus.DefBuckets)
	m.invocationsTotal = createCounterVec(cfg.Namespace, "pipeline_invocations_total", "Total number of sentence embedding pipeline invocations", []string{"operation", "status"})
	m.invocationDuration = createHistogramVec(cfg.Namespace, "pipeline_invocation_duration_seconds", "Duration of sentence embedding pipeline invocations in seconds", []string{"operation"}, prometheus.DefBuckets)
	m.modelLoadDuration = createHistogramVec(cfg.Namespace, "pipeline_load_duration_seconds", "Duration of sentence embedding pipeline construction in seconds", []string{"status"}, modelLoadBuckets)

	wrappedRegistry.MustRegister(
		m.requestsTotal,
		m.requestDuration,
		m.invocationsTotal,
		m.invocationDuration,
		m.modelLoadDuration,
	)

	if cfg.EnableDefaultCollectors {
		wrappedRegistry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			collectors.NewBuildInfoCollector(),
		)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	m.Server = &http.Server{
		Addr:    cfg.Address,
		Handler: mux,
	}
	return m
}
