package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"

	"github.com/Aleph-Alpha/sentence-embed/v1/sentence"
)

type fakeClient struct {
	err      error
	closeErr error
	closed   bool

	source  any
	compare any
}

func (f *fakeClient) Similarity(_ context.Context, source, compare any) (*sentence.SimilarityResult, error) {
	f.source, f.compare = source, compare
	if f.err != nil {
		return nil, f.err
	}
	return &sentence.SimilarityResult{
		TextEmbedding: sentence.Embedding{make([]float64, 768)},
		Scores:        []float64{0.95, 0.67},
	}, nil
}

func (f *fakeClient) BatchSimilarity(_ context.Context, sources, compares any) ([]sentence.BatchResult, error) {
	f.source, f.compare = sources, compares
	return []sentence.BatchResult{{Source: "甲", Scores: []float64{0.5}}}, f.err
}

func (f *fakeClient) Encode(_ context.Context, sentences any) (sentence.Embedding, error) {
	f.source = sentences
	if f.err != nil {
		return nil, f.err
	}
	return sentence.Embedding{make([]float64, 768), make([]float64, 768)}, nil
}

func (f *fakeClient) Close() error {
	f.closed = true
	return f.closeErr
}

// execute runs the CLI with args and returns stdout, the configuration the
// client was opened with and the error.
func execute(t *testing.T, client *fakeClient, args ...string) (string, sentence.Config, error) {
	t.Helper()
	var got sentence.Config
	factory := func(_ context.Context, cfg sentence.Config) (Embedder, error) {
		got = cfg
		return client, nil
	}

	cmd := NewRootCommand(factory)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(context.Background())
	return out.String(), got, err
}

func TestSimilarityCommand(t *testing.T) {
	client := &fakeClient{}

	out, cfg, err := execute(t, client,
		"--device", "cuda", "--sequence-length", "128", "--model-path", "/models/gte",
		"similarity", "--source", "吃完海鲜可以喝牛奶吗?", "--compare", "不可以，早晨喝牛奶不科学", "--compare", "b",
	)
	require.NoError(t, err)

	assert.Equal(t, "{\n  \"scores\": [\n    0.95,\n    0.67\n  ],\n  \"embedding_shape\": [\n    1,\n    768\n  ]\n}\n", out)
	assert.Equal(t, []string{"吃完海鲜可以喝牛奶吗?"}, client.source)
	assert.Equal(t, []string{"不可以，早晨喝牛奶不科学", "b"}, client.compare)
	assert.True(t, client.closed)

	assert.Equal(t, "cuda", cfg.Device)
	assert.Equal(t, 128, cfg.SequenceLength)
	assert.Equal(t, "/models/gte", cfg.ModelPath)
	assert.True(t, cfg.Quiet)
}

func TestEncodeCommand(t *testing.T) {
	client := &fakeClient{}

	out, cfg, err := execute(t, client, "--no-quiet", "encode", "--text", "你好", "--text", "世界")
	require.NoError(t, err)

	assert.JSONEq(t, `{"embedding_shape": [2, 768]}`, out)
	assert.Equal(t, []string{"你好", "世界"}, client.source)
	assert.False(t, cfg.Quiet)
	assert.Equal(t, sentence.DefaultModelPath, cfg.ModelPath)
}

func TestBatchCommandKeepsNonASCII(t *testing.T) {
	out, _, err := execute(t, &fakeClient{}, "batch", "--source", "甲", "--compare", "乙")
	require.NoError(t, err)

	assert.Contains(t, out, `"source": "甲"`)
	assert.JSONEq(t, `{"results": [{"source": "甲", "scores": [0.5]}]}`, out)
}

func TestCommandErrorsAreReturned(t *testing.T) {
	clientErr := &sentence.InputError{Field: sentence.FieldSentences, Err: sentence.ErrEmptyInput}

	_, _, err := execute(t, &fakeClient{err: clientErr}, "encode", "--text", "x")
	assert.Same(t, clientErr, err)

	var buf bytes.Buffer
	printError(&buf, err)
	assert.Equal(t, "Error: sentences cannot be empty.\n", buf.String())
}

func TestFactoryErrorIsReturned(t *testing.T) {
	missing := &sentence.MissingModelError{Path: "/nowhere"}
	cmd := NewRootCommand(func(context.Context, sentence.Config) (Embedder, error) {
		return nil, missing
	})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"encode", "--text", "x"})

	err := cmd.ExecuteContext(context.Background())
	assert.True(t, sentence.IsMissingModelError(err))
}

func TestRequiredFlags(t *testing.T) {
	_, _, err := execute(t, &fakeClient{}, "similarity", "--source", "a")
	assert.ErrorContains(t, err, "compare")
}

func TestConfigFileAndFlags(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sentence.yaml")
	require.NoError(t, os.WriteFile(path, []byte("device: cuda\nsequence_length: 64\n"), 0o600))

	_, cfg, err := execute(t, &fakeClient{}, "--config", path, "--sequence-length", "32", "encode", "--text", "x")
	require.NoError(t, err)

	assert.Equal(t, "cuda", cfg.Device)
	assert.Equal(t, 32, cfg.SequenceLength)
}

func TestHomeExpansionInModelPathFlag(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	_, cfg, err := execute(t, &fakeClient{}, "--model-path", "~/models/gte", "encode", "--text", "x")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "models", "gte"), cfg.ModelPath)
}

func TestServeOptionsFormAValidGraph(t *testing.T) {
	svc, err := loadServiceConfigs()
	require.NoError(t, err)
	assert.Equal(t, ":8080", svc.Server.Address)
	assert.Equal(t, ":9090", svc.Metrics.Address)

	require.NoError(t, fx.ValidateApp(serveModules(sentence.DefaultConfig(), svc), fx.NopLogger))
}

func TestRunStopsWhenContextEnds(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	stopped := false
	fxApp := fx.New(
		fx.NopLogger,
		fx.Invoke(func(lc fx.Lifecycle) {
			lc.Append(fx.StopHook(func() { stopped = true }))
		}),
	)

	time.AfterFunc(50*time.Millisecond, cancel)
	require.NoError(t, run(ctx, fxApp))
	assert.True(t, stopped)
}

func TestWithClientClosesOnError(t *testing.T) {
	client := &fakeClient{err: errors.New("boom")}
	_, _, err := execute(t, client, "similarity", "--source", "a", "--compare", "b")
	assert.EqualError(t, err, "boom")
	assert.True(t, client.closed)
}

func TestWithClientReportsCloseError(t *testing.T) {
	client := &fakeClient{closeErr: errors.New("runner did not stop")}
	out, _, err := execute(t, client, "encode", "--text", "x")
	assert.EqualError(t, err, "runner did not stop")
	assert.NotEmpty(t, out)

	client = &fakeClient{err: errors.New("boom"), closeErr: errors.New("runner did not stop")}
	_, _, err = execute(t, client, "encode", "--text", "x")
	assert.ErrorContains(t, err, "boom")
	assert.ErrorContains(t, err, "runner did not stop")
}
