// Package tracer wraps the OpenTelemetry SDK for the sentence embedding
// service.
//
// The client library opens one span per operation
// ("sentence.similarity", "sentence.encode", "sentence.batch_similarity",
// "sentence.pipeline.load") when a *Tracer is attached with
// sentence.WithTracer. The HTTP server continues incoming W3C trace context
// through SetCarrierOnContext.
//
// Export is off by default. With TRACER_ENABLE_EXPORT=true spans are sent
// through OTLP/HTTP to the endpoint configured by the standard
// OTEL_EXPORTER_OTLP_ENDPOINT variable.
package tracer
