package sentence

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/trace"
)

// TaskSentenceEmbedding is the pipeline task the model is loaded for.
const TaskSentenceEmbedding = "sentence-embedding"

// Embedding is the vector output of the pipeline, one row per source sentence.
type Embedding [][]float64

// Shape returns the dimensions of the embedding as [rows, columns], or an
// empty slice when there is nothing to measure.
func (e Embedding) Shape() []int {
	if len(e) == 0 {
		return []int{}
	}
	return []int{len(e), len(e[0])}
}

// SimilarityResult pairs the source embedding with one score per compared
// sentence, in the order the compared sentences were given.
type SimilarityResult struct {
	TextEmbedding Embedding `json:"text_embedding"`
	Scores        []float64 `json:"scores"`
}

// BatchResult holds the scores of one source sentence against every
// compared sentence.
type BatchResult struct {
	Source string    `json:"source"`
	Scores []float64 `json:"scores"`
}

// Payload is the input passed to one pipeline invocation.
type Payload struct {
	SourceSentence     []string `json:"source_sentence"`
	SentencesToCompare []string `json:"sentences_to_compare,omitempty"`
}

// Output is the raw result of one pipeline invocation. Scores are kept in
// whatever numeric representation the backend produced.
type Output struct {
	TextEmbedding Embedding `json:"text_embedding"`
	Scores        []any     `json:"scores"`
}

// Pipeline is the external sentence embedding pipeline. A Client owns
// exactly one Pipeline; implementations may also implement io.Closer.
//
//go:generate mockgen -source=types.go -destination=mock_types.go -package=sentence
type Pipeline interface {
	Invoke(ctx context.Context, payload Payload) (*Output, error)
}

// PipelineOptions describes how a pipeline is constructed.
type PipelineOptions struct {
	Task           string
	Model          string
	SequenceLength int
	Device         string

	// Quiet asks the backend to discard its own diagnostic output.
	Quiet bool

	Backend     string
	PythonBin   string
	Endpoint    string
	HTTPTimeout time.Duration

	// TraceCarrier returns the W3C trace headers for ctx. The http backend
	// sends them with every request. May be nil.
	TraceCarrier func(ctx context.Context) map[string]string
}

// PipelineFactory constructs a Pipeline. It is called once per Client.
type PipelineFactory func(ctx context.Context, opts PipelineOptions) (Pipeline, error)

// Logger defines the logging operations used by the Client.
// *logger.LoggerClient satisfies it.
type Logger interface {
	Debug(msg string, err error, fields ...map[string]interface{})
	Info(msg string, err error, fields ...map[string]interface{})
	Warn(msg string, err error, fields ...map[string]interface{})
	Error(msg string, err error, fields ...map[string]interface{})
}

// Recorder receives pipeline measurements. *metrics.Metrics satisfies it.
type Recorder interface {
	IncrementInvocations(operation, status string)
	RecordInvocationDuration(start time.Time, operation string)
	ObserveModelLoad(start time.Time, status string)
}

// SpanTracer opens spans around client operations. *tracer.Tracer satisfies it.
type SpanTracer interface {
	StartSpan(ctx context.Context, name string) (context.Context, trace.Span)
	RecordErrorOnSpan(span trace.Span, err error)
	SetAttributes(span trace.Span, attrs map[string]interface{})
	GetCarrier(ctx context.Context) map[string]string
}
