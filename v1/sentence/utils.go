package sentence

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// maxErrorBody caps how much of an error response ends up in a PipelineError.
const maxErrorBody = 4 << 10

// postJSON sends body as JSON to url and decodes the response into out.
// Numbers in the response are kept as json.Number.
func (p *InferencePipeline) postJSON(ctx context.Context, url string, body any, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if p.opts.TraceCarrier != nil {
		for k, v := range p.opts.TraceCarrier(ctx) {
			req.Header.Set(k, v)
		}
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &PipelineError{Backend: BackendHTTP, Op: "invoke", Message: err.Error()}
	}
	defer resp.Body.Close()

	// Treat any non-2xx status code as an error.
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &PipelineError{
			Backend:    BackendHTTP,
			Op:         "invoke",
			Message:    strings.TrimSpace(string(msg)),
			StatusCode: resp.StatusCode,
		}
	}

	if out == nil {
		return nil
	}
	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("%w: decode response: %v", ErrMalformedOutput, err)
	}
	return nil
}
