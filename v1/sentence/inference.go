package sentence

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// InferencePipeline calls a sentence embedding pipeline served over HTTP.
// The server receives the same payload the local runner would and answers
// with {"text_embedding": [...], "scores": [...]}.
type InferencePipeline struct {
	baseURL    string
	httpClient *http.Client
	opts       PipelineOptions
}

// NewInferencePipeline returns an InferencePipeline for opts.Endpoint.
// No request is made until the first Invoke.
func NewInferencePipeline(_ context.Context, opts PipelineOptions) (*InferencePipeline, error) {
	if opts.Endpoint == "" {
		return nil, &PipelineError{Backend: BackendHTTP, Op: "load", Message: "missing endpoint"}
	}

	// Remove trailing slash if user added it.
	base := strings.TrimRight(opts.Endpoint, "/")

	timeout := opts.HTTPTimeout
	if timeout <= 0 {
		timeout = DefaultHTTPTimeoutS * time.Second
	}

	return &InferencePipeline{
		baseURL:    base,
		httpClient: &http.Client{Timeout: timeout},
		opts:       opts,
	}, nil
}

// Invoke posts the payload to <endpoint>/pipeline/<task>.
func (p *InferencePipeline) Invoke(ctx context.Context, payload Payload) (*Output, error) {
	reqBody := map[string]any{
		"model":           p.opts.Model,
		"sequence_length": p.opts.SequenceLength,
		"device":          p.opts.Device,
		"input":           payload,
	}

	task := p.opts.Task
	if task == "" {
		task = TaskSentenceEmbedding
	}
	url := fmt.Sprintf("%s/pipeline/%s", p.baseURL, task)

	var parsed Output
	if err := p.postJSON(ctx, url, reqBody, &parsed); err != nil {
		return nil, err
	}
	return &parsed, nil
}

// Close releases idle connections.
func (p *InferencePipeline) Close() error {
	p.httpClient.CloseIdleConnections()
	return nil
}
