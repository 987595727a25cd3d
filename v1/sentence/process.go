package sentence

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"time"
)

const (
	statusReady = "ready"
	statusOK    = "ok"

	// processStopTimeout is how long Close waits for the runner to exit
	// after its stdin is closed before killing it.
	processStopTimeout = 5 * time.Second
)

// runnerCommand builds the command that starts the runner. Tests replace it
// to run a fake runner.
var runnerCommand = func(opts PipelineOptions) *exec.Cmd {
	return exec.Command(opts.PythonBin, "-u", "-c", runnerScript)
}

type runnerInit struct {
	Task           string `json:"task"`
	Model          string `json:"model"`
	SequenceLength int    `json:"sequence_length"`
	Device         string `json:"device"`
	Quiet          bool   `json:"quiet"`
}

type runnerRequest struct {
	Input Payload `json:"input"`
}

type runnerResponse struct {
	Status        string    `json:"status"`
	Error         string    `json:"error,omitempty"`
	ErrorType     string    `json:"error_type,omitempty"`
	TextEmbedding Embedding `json:"text_embedding"`
	Scores        []any     `json:"scores"`
}

// ProcessPipeline runs the pipeline in a child Python process that stays
// alive for the lifetime of the pipeline. Requests are answered one at a
// time.
type ProcessPipeline struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout *bufio.Reader

	// slot is held by whoever owns the protocol stream: a running request,
	// or the drain of a cancelled one whose answer has not arrived yet.
	slot chan struct{}

	mu sync.Mutex
	// broken is set once the protocol stream can no longer be trusted.
	broken error
	closed bool
}

type lineResult struct {
	line []byte
	err  error
}

// NewProcessPipeline starts the runner and waits until the model is loaded.
// The child inherits the process environment, so variables set by quiet
// mode reach the Python libraries. Its stderr is discarded when
// opts.Quiet is set.
func NewProcessPipeline(ctx context.Context, opts PipelineOptions) (*ProcessPipeline, error) {
	cmd := runnerCommand(opts)
	if cmd.Env == nil {
		cmd.Env = os.Environ()
	}
	if opts.Quiet {
		cmd.Stderr = io.Discard
	} else {
		cmd.Stderr = os.Stderr
	}

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("sentence: runner stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		stdin.Close()
		return nil, fmt.Errorf("sentence: runner stdout pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		stdin.Close()
		return nil, &PipelineError{Backend: BackendProcess, Op: "start", Message: err.Error()}
	}

	p := &ProcessPipeline{
		cmd:    cmd,
		stdin:  stdin,
		stdout: bufio.NewReaderSize(stdout, 1<<20),
		slot:   make(chan struct{}, 1),
	}

	handshake := runnerInit{
		Task:           opts.Task,
		Model:          opts.Model,
		SequenceLength: opts.SequenceLength,
		Device:         opts.Device,
		Quiet:          opts.Quiet,
	}
	if err := p.writeLine(handshake); err != nil {
		p.abort()
		return nil, &PipelineError{Backend: BackendProcess, Op: "load", Message: err.Error()}
	}

	var ready runnerResponse
	select {
	case <-ctx.Done():
		p.abort()
		return nil, ctx.Err()
	case r := <-p.readLine():
		if err := decodeLine(r, &ready); err != nil {
			p.abort()
			return nil, &PipelineError{Backend: BackendProcess, Op: "load", Message: err.Error()}
		}
	}
	if ready.Status != statusReady {
		p.abort()
		return nil, &PipelineError{Backend: BackendProcess, Op: "load", Type: ready.ErrorType, Message: ready.Error}
	}
	return p, nil
}

// Invoke sends one payload to the runner and waits for its answer.
//
// When ctx ends first Invoke returns ctx.Err() at once. The runner keeps
// working on the request and its answer is read and discarded in the
// background; the next request waits for that before it is sent.
func (p *ProcessPipeline) Invoke(ctx context.Context, payload Payload) (*Output, error) {
	if err := p.acquire(ctx); err != nil {
		return nil, err
	}
	if err := p.state(); err != nil {
		p.release()
		return nil, err
	}

	if err := p.writeLine(runnerRequest{Input: payload}); err != nil {
		err = p.markBroken(err)
		p.release()
		return nil, err
	}

	pending := p.readLine()
	select {
	case <-ctx.Done():
		go p.drain(pending)
		return nil, ctx.Err()
	case r := <-pending:
		p.release()
		var resp runnerResponse
		if err := decodeLine(r, &resp); err != nil {
			if r.err != nil {
				return nil, p.markBroken(err)
			}
			return nil, &PipelineError{Backend: BackendProcess, Op: "invoke", Message: err.Error()}
		}
		if resp.Status != statusOK {
			return nil, &PipelineError{Backend: BackendProcess, Op: "invoke", Type: resp.ErrorType, Message: resp.Error}
		}
		return &Output{TextEmbedding: resp.TextEmbedding, Scores: resp.Scores}, nil
	}
}

// Close stops the runner. It waits for the request in flight, closes stdin
// so the runner exits on its own and kills it if either step takes longer
// than a few seconds.
func (p *ProcessPipeline) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), processStopTimeout)
	defer cancel()
	if err := p.acquire(ctx); err != nil {
		p.kill()
		_ = p.acquire(context.Background())
	}
	defer p.release()

	_ = p.stdin.Close()

	done := make(chan error, 1)
	go func() { done <- p.cmd.Wait() }()

	select {
	case err := <-done:
		var exitErr *exec.ExitError
		if err != nil && !errors.As(err, &exitErr) {
			return fmt.Errorf("sentence: wait for runner: %w", err)
		}
		return nil
	case <-time.After(processStopTimeout):
		p.kill()
		<-done
		return nil
	}
}

func (p *ProcessPipeline) acquire(ctx context.Context) error {
	select {
	case p.slot <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *ProcessPipeline) release() {
	<-p.slot
}

func (p *ProcessPipeline) state() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrClosed
	}
	return p.broken
}

func (p *ProcessPipeline) markBroken(err error) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.broken == nil {
		p.broken = &PipelineError{Backend: BackendProcess, Op: "invoke", Message: err.Error()}
	}
	return p.broken
}

// drain waits for the answer to a cancelled request and drops it, keeping
// the stream aligned for the next request.
func (p *ProcessPipeline) drain(pending <-chan lineResult) {
	defer p.release()
	if r := <-pending; r.err != nil {
		var resp runnerResponse
		_ = p.markBroken(decodeLine(r, &resp))
	}
}

func (p *ProcessPipeline) writeLine(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	data = append(data, '\n')
	if _, err := p.stdin.Write(data); err != nil {
		return fmt.Errorf("write request: %w", err)
	}
	return nil
}

// readLine reads the next line from the runner in the background.
func (p *ProcessPipeline) readLine() <-chan lineResult {
	ch := make(chan lineResult, 1)
	go func() {
		line, err := p.stdout.ReadBytes('\n')
		ch <- lineResult{line: line, err: err}
	}()
	return ch
}

func decodeLine(r lineResult, v any) error {
	if r.err != nil {
		if errors.Is(r.err, io.EOF) {
			return errors.New("runner exited unexpectedly")
		}
		return fmt.Errorf("read response: %w", r.err)
	}

	dec := json.NewDecoder(bytes.NewReader(r.line))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (p *ProcessPipeline) kill() {
	if p.cmd.Process != nil {
		_ = p.cmd.Process.Kill()
	}
}

// abort kills the runner and reaps it. Only used before the pipeline is
// handed out.
func (p *ProcessPipeline) abort() {
	p.kill()
	_ = p.stdin.Close()
	_ = p.cmd.Wait()
}
