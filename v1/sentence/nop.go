package sentence

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

type nopLogger struct{}

func (nopLogger) Debug(string, error, ...map[string]interface{}) {}
func (nopLogger) Info(string, error, ...map[string]interface{})  {}
func (nopLogger) Warn(string, error, ...map[string]interface{})  {}
func (nopLogger) Error(string, error, ...map[string]interface{}) {}

type nopRecorder struct{}

func (nopRecorder) IncrementInvocations(string, string)        {}
func (nopRecorder) RecordInvocationDuration(time.Time, string) {}
func (nopRecorder) ObserveModelLoad(time.Time, string)         {}

type noopTracer struct {
	tracer trace.Tracer
}

func newNoopTracer() noopTracer {
	return noopTracer{tracer: noop.NewTracerProvider().Tracer("")}
}

func (t noopTracer) StartSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, name)
}

func (noopTracer) RecordErrorOnSpan(trace.Span, error)              {}
func (noopTracer) SetAttributes(trace.Span, map[string]interface{}) {}
func (noopTracer) GetCarrier(context.Context) map[string]string     { return nil }
