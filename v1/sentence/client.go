package sentence

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/Aleph-Alpha/sentence-embed/v1/quiet"
)

const (
	opSimilarity = "similarity"
	opEncode     = "encode"

	statusSuccess = "success"
	statusError   = "error"
)

// pipelineGate serializes pipeline calls across every Client in the process.
// Output suppression swaps process-wide streams, so two invocations must
// never overlap.
var pipelineGate = semaphore.NewWeighted(1)

// Client computes sentence embeddings and similarity scores through an
// external pipeline.
//
// A Client becomes ready in NewClient and stays ready until Close. It owns
// its pipeline exclusively. All pipeline calls in the process are
// serialized, so a Client may be shared between goroutines.
type Client struct {
	cfg       Config
	modelPath string
	factory   PipelineFactory
	pipeline  Pipeline
	closed    atomic.Bool

	log     Logger
	metrics Recorder
	tracer  SpanTracer
}

// Option configures NewClient.
type Option func(*clientOptions)

type clientOptions struct {
	factory   PipelineFactory
	log       Logger
	metrics   Recorder
	tracer    SpanTracer
	overrides []ConfigOption
}

// WithPipelineFactory replaces the backend chosen from Config.Backend.
func WithPipelineFactory(f PipelineFactory) Option {
	return func(o *clientOptions) { o.factory = f }
}

// WithLogger attaches a logger. Quiet mode does not change its level.
func WithLogger(l Logger) Option {
	return func(o *clientOptions) { o.log = l }
}

// WithMetrics attaches a metrics recorder.
func WithMetrics(r Recorder) Option {
	return func(o *clientOptions) { o.metrics = r }
}

// WithTracer attaches a tracer.
func WithTracer(t SpanTracer) Option {
	return func(o *clientOptions) { o.tracer = t }
}

// WithConfig supplies individual settings. They are only used when
// NewClient receives a nil *Config.
func WithConfig(opts ...ConfigOption) Option {
	return func(o *clientOptions) { o.overrides = append(o.overrides, opts...) }
}

// NewClient loads the pipeline and returns a ready Client.
//
// When cfg is nil a Config is built from the WithConfig overrides. Quiet
// logging is configured first, then the model path is resolved and must be
// an existing directory, otherwise a *MissingModelError is returned and no
// pipeline is constructed. Errors from the pipeline factory are returned
// unchanged.
//
// Example:
//
//	client, err := sentence.NewClient(ctx, nil,
//	    sentence.WithConfig(sentence.WithModelPath("~/models/gte"), sentence.WithDevice("cpu")),
//	)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
func NewClient(ctx context.Context, cfg *Config, opts ...Option) (*Client, error) {
	client, err := newClient(cfg, opts...)
	if err != nil {
		return nil, err
	}
	if err := client.load(ctx); err != nil {
		return nil, err
	}
	return client, nil
}

// newClient prepares a Client up to, but not including, pipeline
// construction.
func newClient(cfg *Config, opts ...Option) (*Client, error) {
	o := clientOptions{}
	for _, opt := range opts {
		opt(&o)
	}

	var c Config
	if cfg != nil {
		c = *cfg
	} else {
		c = NewConfig(o.overrides...)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("sentence: invalid config: %w", err)
	}

	client := &Client{
		cfg:     c,
		log:     o.log,
		metrics: o.metrics,
		tracer:  o.tracer,
	}
	if client.log == nil {
		client.log = nopLogger{}
	}
	if client.metrics == nil {
		client.metrics = nopRecorder{}
	}
	if client.tracer == nil {
		client.tracer = newNoopTracer()
	}

	if err := quiet.ConfigureLogging(c.Quiet); err != nil {
		return nil, fmt.Errorf("sentence: configure quiet mode: %w", err)
	}

	client.modelPath = c.ResolveModelPath()
	if info, err := os.Stat(client.modelPath); err != nil || !info.IsDir() {
		return nil, &MissingModelError{Path: client.modelPath}
	}

	client.factory = o.factory
	if client.factory == nil {
		client.factory = DefaultPipelineFactory
	}
	return client, nil
}

// load constructs the pipeline. ctx bounds construction, which for the
// process backend includes loading the model.
func (c *Client) load(ctx context.Context) error {
	p, err := c.loadPipeline(ctx)
	if err != nil {
		return err
	}
	c.pipeline = p

	c.log.Info("sentence embedding client ready", nil, map[string]interface{}{
		"model_path":      c.modelPath,
		"device":          c.cfg.Device,
		"sequence_length": c.cfg.SequenceLength,
		"backend":         c.cfg.Backend,
	})
	return nil
}

func (c *Client) loadPipeline(ctx context.Context) (Pipeline, error) {
	ctx, span := c.tracer.StartSpan(ctx, "sentence.pipeline.load")
	defer span.End()
	c.tracer.SetAttributes(span, map[string]interface{}{
		"sentence.model_path":      c.modelPath,
		"sentence.device":          c.cfg.Device,
		"sentence.sequence_length": c.cfg.SequenceLength,
		"sentence.backend":         c.cfg.Backend,
	})

	opts := PipelineOptions{
		Task:           TaskSentenceEmbedding,
		Model:          c.modelPath,
		SequenceLength: c.cfg.SequenceLength,
		Device:         c.cfg.Device,
		Quiet:          c.cfg.Quiet,
		Backend:        c.cfg.Backend,
		PythonBin:      c.cfg.PythonBin,
		Endpoint:       c.cfg.Endpoint,
		HTTPTimeout:    c.cfg.HTTPTimeout(),
		TraceCarrier:   c.tracer.GetCarrier,
	}

	start := time.Now()
	var p Pipeline
	err := quiet.Do(c.cfg.Quiet, func() error {
		var err error
		p, err = c.factory(ctx, opts)
		return err
	})
	if err != nil {
		c.metrics.ObserveModelLoad(start, statusError)
		c.tracer.RecordErrorOnSpan(span, err)
		c.log.Error("failed to construct sentence embedding pipeline", err, map[string]interface{}{
			"model_path": c.modelPath,
		})
		return nil, err
	}
	c.metrics.ObserveModelLoad(start, statusSuccess)
	return p, nil
}

// Config returns a copy of the client's configuration.
func (c *Client) Config() Config {
	return c.cfg
}

// ModelPath returns the resolved model directory.
func (c *Client) ModelPath() string {
	return c.modelPath
}

// Similarity scores every source sentence against the compared sentences
// with a single pipeline call.
//
// source and compare each accept a string, a []string, or any slice whose
// elements are all strings (such as a JSON-decoded []any). A single string
// is treated as a one-element list. Empty input yields an error matching
// ErrEmptyInput and non-string elements one matching ErrInputType; both are
// reported before the pipeline is called. Pipeline errors are returned
// unchanged. An empty argument is reported even when the other one holds
// non-string elements.
//
// The returned scores follow the order of compare.
func (c *Client) Similarity(ctx context.Context, source, compare any) (*SimilarityResult, error) {
	sources, compares, err := normalizePair(source, compare, FieldSourceSentences, FieldSentencesToCompare)
	if err != nil {
		return nil, err
	}

	ctx, span := c.tracer.StartSpan(ctx, "sentence.similarity")
	defer span.End()
	c.tracer.SetAttributes(span, map[string]interface{}{
		"sentence.source_count":  len(sources),
		"sentence.compare_count": len(compares),
	})

	out, err := c.run(ctx, opSimilarity, Payload{
		SourceSentence:     sources,
		SentencesToCompare: compares,
	})
	if err != nil {
		c.tracer.RecordErrorOnSpan(span, err)
		return nil, err
	}

	scores, err := coerceScores(out.Scores)
	if err != nil {
		c.tracer.RecordErrorOnSpan(span, err)
		return nil, err
	}
	if len(scores) != len(compares) {
		err := fmt.Errorf("%w: got %d scores for %d compared sentences", ErrMalformedOutput, len(scores), len(compares))
		c.tracer.RecordErrorOnSpan(span, err)
		return nil, err
	}

	return &SimilarityResult{TextEmbedding: out.TextEmbedding, Scores: scores}, nil
}

// ComputeSimilarity returns the same data as Similarity as a plain pair.
func (c *Client) ComputeSimilarity(ctx context.Context, source, compare any) (Embedding, []float64, error) {
	result, err := c.Similarity(ctx, source, compare)
	if err != nil {
		return nil, nil, err
	}
	return result.TextEmbedding, result.Scores, nil
}

// BatchSimilarity scores each source sentence on its own against every
// compared sentence. It issues one Similarity call, and therefore one
// pipeline call, per source; results keep the order of sources.
func (c *Client) BatchSimilarity(ctx context.Context, sources, compares any) ([]BatchResult, error) {
	sourceList, compareList, err := normalizePair(sources, compares, FieldSourceList, FieldCompareList)
	if err != nil {
		return nil, err
	}

	ctx, span := c.tracer.StartSpan(ctx, "sentence.batch_similarity")
	defer span.End()
	c.tracer.SetAttributes(span, map[string]interface{}{
		"sentence.source_count":  len(sourceList),
		"sentence.compare_count": len(compareList),
	})

	results := make([]BatchResult, 0, len(sourceList))
	for _, src := range sourceList {
		single, err := c.Similarity(ctx, []string{src}, compareList)
		if err != nil {
			c.tracer.RecordErrorOnSpan(span, err)
			return nil, err
		}
		results = append(results, BatchResult{Source: src, Scores: single.Scores})
	}
	return results, nil
}

// Encode returns the embedding of the given sentences exactly as the
// pipeline produced it. Input rules are the same as for Similarity.
func (c *Client) Encode(ctx context.Context, sentences any) (Embedding, error) {
	list, err := normalizeSentences(sentences, FieldSentences)
	if err != nil {
		return nil, err
	}

	ctx, span := c.tracer.StartSpan(ctx, "sentence.encode")
	defer span.End()
	c.tracer.SetAttributes(span, map[string]interface{}{
		"sentence.source_count": len(list),
	})

	out, err := c.run(ctx, opEncode, Payload{SourceSentence: list})
	if err != nil {
		c.tracer.RecordErrorOnSpan(span, err)
		return nil, err
	}
	return out.TextEmbedding, nil
}

// Close releases the pipeline. Further operations return ErrClosed.
func (c *Client) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	if closer, ok := c.pipeline.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// run invokes the pipeline once with output suppressed according to the
// quiet flag. Pipeline errors are returned as they are.
func (c *Client) run(ctx context.Context, operation string, payload Payload) (*Output, error) {
	if c.closed.Load() {
		return nil, ErrClosed
	}
	if c.pipeline == nil {
		return nil, ErrNotStarted
	}

	if err := pipelineGate.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer pipelineGate.Release(1)

	start := time.Now()
	var out *Output
	err := quiet.Do(c.cfg.Quiet, func() error {
		var err error
		out, err = c.pipeline.Invoke(ctx, payload)
		return err
	})
	c.metrics.RecordInvocationDuration(start, operation)

	if err != nil {
		c.metrics.IncrementInvocations(operation, statusError)
		c.log.Error("sentence embedding pipeline failed", err, map[string]interface{}{
			"operation":    operation,
			"source_count": len(payload.SourceSentence),
		})
		return nil, err
	}
	if out == nil {
		c.metrics.IncrementInvocations(operation, statusError)
		return nil, fmt.Errorf("%w: empty response", ErrMalformedOutput)
	}

	c.metrics.IncrementInvocations(operation, statusSuccess)
	c.log.Debug("sentence embedding pipeline invoked", nil, map[string]interface{}{
		"operation":     operation,
		"source_count":  len(payload.SourceSentence),
		"compare_count": len(payload.SentencesToCompare),
		"duration_ms":   time.Since(start).Milliseconds(),
	})
	return out, nil
}
