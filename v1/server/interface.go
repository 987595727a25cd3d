package server

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/Aleph-Alpha/sentence-embed/v1/sentence"
)

// Embedder is the part of *sentence.Client the handlers use.
type Embedder interface {
	Similarity(ctx context.Context, source, compare any) (*sentence.SimilarityResult, error)
	BatchSimilarity(ctx context.Context, sources, compares any) ([]sentence.BatchResult, error)
	Encode(ctx context.Context, sentences any) (sentence.Embedding, error)
}

// Logger is the logging surface of the server. *logger.LoggerClient
// satisfies it.
type Logger interface {
	InfoWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})
	WarnWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})
	ErrorWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})
}

// RequestRecorder receives per-route request measurements.
// *metrics.Metrics satisfies it.
type RequestRecorder interface {
	IncrementRequests(route, status string)
	RecordRequestDuration(start time.Time, route string)
}

// Tracer opens a span per request, continuing the caller's trace when the
// request carries one. *tracer.Tracer satisfies it.
type Tracer interface {
	StartSpan(ctx context.Context, name string) (context.Context, trace.Span)
	SetCarrierOnContext(ctx context.Context, carrier map[string]string) context.Context
	SetAttributes(span trace.Span, attrs map[string]interface{})
}
