package sentence

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	helperRunnerEnv = "GO_WANT_HELPER_RUNNER"
	slowAnswerDelay = 300 * time.Millisecond
)

func TestMain(m *testing.M) {
	if os.Getenv(helperRunnerEnv) == "1" {
		os.Exit(fakeRunner())
	}
	os.Exit(m.Run())
}

// fakeRunner speaks the runner protocol without Python. Models whose path
// contains "broken" fail to load. Sources "fail" and "crash" make a request
// fail or kill the runner; "slow" answers after slowAnswerDelay.
func fakeRunner() int {
	in := bufio.NewScanner(os.Stdin)
	in.Buffer(make([]byte, 1<<20), 1<<20)
	out := json.NewEncoder(os.Stdout)

	if !in.Scan() {
		return 1
	}
	var setup runnerInit
	if err := json.Unmarshal(in.Bytes(), &setup); err != nil {
		return 1
	}
	if strings.Contains(setup.Model, "broken") {
		_ = out.Encode(map[string]string{"status": "error", "error": "no weights in " + setup.Model, "error_type": "OSError"})
		return 1
	}
	_ = out.Encode(map[string]string{"status": statusReady})

	for in.Scan() {
		var req runnerRequest
		if err := json.Unmarshal(in.Bytes(), &req); err != nil {
			return 1
		}
		switch req.Input.SourceSentence[0] {
		case "fail":
			_ = out.Encode(map[string]string{"status": "error", "error": "bad input", "error_type": "ValueError"})
			continue
		case "crash":
			return 3
		case "slow":
			time.Sleep(slowAnswerDelay)
		}

		embedding := make([][]float64, len(req.Input.SourceSentence))
		for i, s := range req.Input.SourceSentence {
			embedding[i] = []float64{float64(len(s)), float64(setup.SequenceLength)}
		}
		scores := make([]float64, len(req.Input.SentencesToCompare))
		for i := range scores {
			scores[i] = 1 / float64(i+1)
		}
		_ = out.Encode(map[string]any{"status": statusOK, "text_embedding": embedding, "scores": scores})
	}
	return 0
}

func useFakeRunner(t *testing.T) {
	t.Helper()
	prev := runnerCommand
	runnerCommand = func(PipelineOptions) *exec.Cmd {
		cmd := exec.Command(os.Args[0], "-test.run=^$")
		cmd.Env = append(os.Environ(), helperRunnerEnv+"=1")
		return cmd
	}
	t.Cleanup(func() { runnerCommand = prev })
}

func startFakePipeline(t *testing.T, model string) *ProcessPipeline {
	t.Helper()
	useFakeRunner(t)
	p, err := NewProcessPipeline(context.Background(), PipelineOptions{
		Task:           TaskSentenceEmbedding,
		Model:          model,
		SequenceLength: 128,
		Device:         "cpu",
		Quiet:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close() })
	return p
}

func TestProcessPipelineInvoke(t *testing.T) {
	p := startFakePipeline(t, "/models/gte")

	out, err := p.Invoke(context.Background(), Payload{
		SourceSentence:     []string{"abc"},
		SentencesToCompare: []string{"x", "y"},
	})
	require.NoError(t, err)
	assert.Equal(t, Embedding{{3, 128}}, out.TextEmbedding)

	scores, err := coerceScores(out.Scores)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 0.5}, scores)

	out, err = p.Invoke(context.Background(), Payload{SourceSentence: []string{"a", "bb"}})
	require.NoError(t, err)
	assert.Equal(t, []int{2, 2}, out.TextEmbedding.Shape())
	assert.Empty(t, out.Scores)
}

func TestProcessPipelineLoadFailure(t *testing.T) {
	useFakeRunner(t)

	_, err := NewProcessPipeline(context.Background(), PipelineOptions{Model: "/models/broken", Quiet: true})
	require.Error(t, err)

	var pErr *PipelineError
	require.ErrorAs(t, err, &pErr)
	assert.Equal(t, "load", pErr.Op)
	assert.Equal(t, "OSError", pErr.Type)
	assert.Contains(t, pErr.Message, "/models/broken")
}

func TestProcessPipelineStartFailure(t *testing.T) {
	_, err := NewProcessPipeline(context.Background(), PipelineOptions{
		PythonBin: "/nonexistent/python-for-tests",
		Quiet:     true,
	})
	assert.True(t, IsPipelineError(err))
}

func TestProcessPipelineRequestError(t *testing.T) {
	p := startFakePipeline(t, "/models/gte")

	_, err := p.Invoke(context.Background(), Payload{SourceSentence: []string{"fail"}})
	var pErr *PipelineError
	require.ErrorAs(t, err, &pErr)
	assert.Equal(t, "ValueError", pErr.Type)
	assert.Equal(t, "bad input", pErr.Message)

	// A failed request leaves the runner usable.
	_, err = p.Invoke(context.Background(), Payload{SourceSentence: []string{"ok"}})
	assert.NoError(t, err)
}

func TestProcessPipelineRunnerExit(t *testing.T) {
	p := startFakePipeline(t, "/models/gte")

	_, err := p.Invoke(context.Background(), Payload{SourceSentence: []string{"crash"}})
	assert.True(t, IsPipelineError(err))

	_, err = p.Invoke(context.Background(), Payload{SourceSentence: []string{"ok"}})
	assert.True(t, IsPipelineError(err))
}

func TestProcessPipelineCancel(t *testing.T) {
	p := startFakePipeline(t, "/models/gte")

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := p.Invoke(ctx, Payload{SourceSentence: []string{"slow"}})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), slowAnswerDelay)

	out, err := p.Invoke(context.Background(), Payload{SourceSentence: []string{"abc"}, SentencesToCompare: []string{"x"}})
	require.NoError(t, err)
	assert.Equal(t, Embedding{{3, 128}}, out.TextEmbedding)
	assert.Len(t, out.Scores, 1)
}

func TestProcessPipelineWaitingRequestHonoursContext(t *testing.T) {
	p := startFakePipeline(t, "/models/gte")

	first, cancelFirst := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancelFirst()
	_, err := p.Invoke(first, Payload{SourceSentence: []string{"slow"}})
	require.ErrorIs(t, err, context.DeadlineExceeded)

	second, cancelSecond := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancelSecond()
	_, err = p.Invoke(second, Payload{SourceSentence: []string{"ok"}})
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	_, err = p.Invoke(context.Background(), Payload{SourceSentence: []string{"ok"}})
	assert.NoError(t, err)
}

func TestProcessPipelineCloseWaitsForDrain(t *testing.T) {
	p := startFakePipeline(t, "/models/gte")

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := p.Invoke(ctx, Payload{SourceSentence: []string{"slow"}})
	require.ErrorIs(t, err, context.DeadlineExceeded)

	require.NoError(t, p.Close())
	_, err = p.Invoke(context.Background(), Payload{SourceSentence: []string{"ok"}})
	assert.ErrorIs(t, err, ErrClosed)
}

func TestProcessPipelineClose(t *testing.T) {
	p := startFakePipeline(t, "/models/gte")

	require.NoError(t, p.Close())
	require.NoError(t, p.Close())

	_, err := p.Invoke(context.Background(), Payload{SourceSentence: []string{"ok"}})
	assert.ErrorIs(t, err, ErrClosed)
}

func TestClientWithProcessBackend(t *testing.T) {
	useFakeRunner(t)

	cfg := NewConfig(WithModelPath(t.TempDir()), WithQuiet(false))
	client, err := NewClient(context.Background(), &cfg)
	require.NoError(t, err)
	defer client.Close()

	res, err := client.Similarity(context.Background(), "hello", []string{"a", "b", "c"})
	require.NoError(t, err)
	assert.Len(t, res.Scores, 3)
	assert.Equal(t, []int{1, 2}, res.TextEmbedding.Shape())
}

func TestClientRecoversAfterCancelledCall(t *testing.T) {
	useFakeRunner(t)

	cfg := NewConfig(WithModelPath(t.TempDir()), WithQuiet(false))
	client, err := NewClient(context.Background(), &cfg)
	require.NoError(t, err)
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	_, err = client.Similarity(ctx, "slow", []string{"a"})
	require.ErrorIs(t, err, context.DeadlineExceeded)

	for i := 0; i < 3; i++ {
		res, err := client.Similarity(context.Background(), "hello", []string{"a", "b"})
		require.NoError(t, err)
		assert.Equal(t, []float64{1, 0.5}, res.Scores)
	}
}
