package sentence

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInferencePipelineInvoke(t *testing.T) {
	var got struct {
		Model          string  `json:"model"`
		SequenceLength int     `json:"sequence_length"`
		Device         string  `json:"device"`
		Input          Payload `json:"input"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/pipeline/sentence-embedding", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"text_embedding": [[0.1, 0.2]], "scores": [0.95, 0.67]}`))
	}))
	defer srv.Close()

	p, err := NewInferencePipeline(context.Background(), PipelineOptions{
		Task:           TaskSentenceEmbedding,
		Model:          "/models/gte",
		SequenceLength: 512,
		Device:         "cpu",
		Endpoint:       srv.URL + "/",
		HTTPTimeout:    time.Second,
	})
	require.NoError(t, err)
	defer p.Close()

	out, err := p.Invoke(context.Background(), Payload{
		SourceSentence:     []string{querySentence},
		SentencesToCompare: compareSentences,
	})
	require.NoError(t, err)

	assert.Equal(t, "/models/gte", got.Model)
	assert.Equal(t, 512, got.SequenceLength)
	assert.Equal(t, []string{querySentence}, got.Input.SourceSentence)
	assert.Equal(t, compareSentences, got.Input.SentencesToCompare)

	assert.Equal(t, Embedding{{0.1, 0.2}}, out.TextEmbedding)
	assert.Equal(t, []any{json.Number("0.95"), json.Number("0.67")}, out.Scores)
}

func TestInferencePipelineSendsTraceHeaders(t *testing.T) {
	const traceparent = "00-0102030405060708090a0b0c0d0e0f10-0102030405060708-01"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, traceparent, r.Header.Get("traceparent"))
		_, _ = w.Write([]byte(`{"text_embedding": [[1]], "scores": []}`))
	}))
	defer srv.Close()

	p, err := NewInferencePipeline(context.Background(), PipelineOptions{
		Endpoint: srv.URL,
		TraceCarrier: func(context.Context) map[string]string {
			return map[string]string{"traceparent": traceparent}
		},
	})
	require.NoError(t, err)
	defer p.Close()

	_, err = p.Invoke(context.Background(), Payload{SourceSentence: []string{"a"}})
	require.NoError(t, err)
}

func TestInferencePipelineHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	p, err := NewInferencePipeline(context.Background(), PipelineOptions{Endpoint: srv.URL})
	require.NoError(t, err)

	_, err = p.Invoke(context.Background(), Payload{SourceSentence: []string{"a"}})
	var pErr *PipelineError
	require.ErrorAs(t, err, &pErr)
	assert.Equal(t, http.StatusServiceUnavailable, pErr.StatusCode)
	assert.Equal(t, "model not loaded", pErr.Message)
	assert.Contains(t, err.Error(), "http 503")
}

func TestInferencePipelineMalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"text_embedding": "nope"}`))
	}))
	defer srv.Close()

	p, err := NewInferencePipeline(context.Background(), PipelineOptions{Endpoint: srv.URL})
	require.NoError(t, err)

	_, err = p.Invoke(context.Background(), Payload{SourceSentence: []string{"a"}})
	assert.ErrorIs(t, err, ErrMalformedOutput)
}

func TestInferencePipelineRequiresEndpoint(t *testing.T) {
	_, err := NewInferencePipeline(context.Background(), PipelineOptions{})
	assert.True(t, IsPipelineError(err))
}

func TestDefaultPipelineFactory(t *testing.T) {
	p, err := DefaultPipelineFactory(context.Background(), PipelineOptions{
		Backend:  BackendHTTP,
		Endpoint: "http://localhost:1",
	})
	require.NoError(t, err)
	assert.IsType(t, &InferencePipeline{}, p)

	p, err = DefaultPipelineFactory(context.Background(), PipelineOptions{Backend: BackendHTTP})
	assert.Error(t, err)
	assert.Nil(t, p)

	_, err = DefaultPipelineFactory(context.Background(), PipelineOptions{Backend: "grpc"})
	assert.Error(t, err)
}
