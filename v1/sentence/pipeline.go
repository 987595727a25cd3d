package sentence

import (
	"context"
	"fmt"
)

// DefaultPipelineFactory builds the backend named by opts.Backend.
// An empty backend selects the process backend.
func DefaultPipelineFactory(ctx context.Context, opts PipelineOptions) (Pipeline, error) {
	switch opts.Backend {
	case BackendProcess, "":
		p, err := NewProcessPipeline(ctx, opts)
		if err != nil {
			return nil, err
		}
		return p, nil
	case BackendHTTP:
		p, err := NewInferencePipeline(ctx, opts)
		if err != nil {
			return nil, err
		}
		return p, nil
	default:
		return nil, fmt.Errorf("sentence: unknown backend %q", opts.Backend)
	}
}
