// Package metrics provides Prometheus-based monitoring for the sentence
// embedding service.
//
// Each Metrics value owns an isolated registry wrapped with a constant
// service label and an http.Server that exposes it on /metrics.
//
// Built-in instruments:
//
//	http_requests_total{route,status}
//	http_request_duration_seconds{route}
//	pipeline_invocations_total{operation,status}
//	pipeline_invocation_duration_seconds{operation}
//	pipeline_load_duration_seconds{status}
//
// Direct usage:
//
//	m := metrics.NewMetrics(metrics.Config{Address: ":9090", ServiceName: "sentence-embed"})
//	client, err := sentence.NewClient(ctx, cfg, sentence.WithMetrics(m))
//
// With Fx, include metrics.FXModule together with logger.FXModule; the
// server is started on OnStart and shut down on OnStop.
//
// Configuration:
//
//	METRICS_ADDRESS=:9090
//	METRICS_ENABLE_DEFAULT_COLLECTORS=true
//	METRICS_NAMESPACE=sentence_embed
//	METRICS_SERVICE_NAME=sentence-embed
package metrics
