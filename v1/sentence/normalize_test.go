package sentence

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type label string

func TestNormalizeSentences(t *testing.T) {
	tests := []struct {
		name    string
		input   any
		want    []string
		wantErr error
	}{
		{name: "single string", input: "hello", want: []string{"hello"}},
		{name: "empty string is still one sentence", input: "", want: []string{""}},
		{name: "named string type", input: label("tag"), want: []string{"tag"}},
		{name: "string slice", input: []string{"a", "b"}, want: []string{"a", "b"}},
		{name: "decoded json list", input: []any{"a", "b"}, want: []string{"a", "b"}},
		{name: "array", input: [2]string{"x", "y"}, want: []string{"x", "y"}},
		{name: "nil", input: nil, wantErr: ErrEmptyInput},
		{name: "empty slice", input: []string{}, wantErr: ErrEmptyInput},
		{name: "empty any slice", input: []any{}, wantErr: ErrEmptyInput},
		{name: "mixed types", input: []any{"a", 1}, wantErr: ErrInputType},
		{name: "nil element", input: []any{"a", nil}, wantErr: ErrInputType},
		{name: "int slice", input: []int{1, 2}, wantErr: ErrInputType},
		{name: "number", input: 42, wantErr: ErrInputType},
		{name: "map", input: map[string]string{"a": "b"}, wantErr: ErrInputType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := normalizeSentences(tt.input, FieldSourceSentences)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				assert.True(t, IsInputError(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeSentencesCopiesInput(t *testing.T) {
	in := []string{"a", "b"}
	out, err := normalizeSentences(in, FieldSentences)
	require.NoError(t, err)

	out[0] = "changed"
	assert.Equal(t, "a", in[0])
}

func TestInputErrorMessages(t *testing.T) {
	_, err := normalizeSentences([]string{}, FieldSourceSentences)
	assert.EqualError(t, err, "source_sentences cannot be empty.")

	_, err = normalizeSentences([]any{1}, FieldSentencesToCompare)
	assert.EqualError(t, err, "sentences_to_compare must contain only strings.")
}

func TestCoerceScores(t *testing.T) {
	scores, err := coerceScores([]any{0.5, float32(0.25), 1, int64(2), json.Number("0.75"), "0.125"})
	require.NoError(t, err)
	assert.Equal(t, []float64{0.5, 0.25, 1, 2, 0.75, 0.125}, scores)

	_, err = coerceScores([]any{0.5, map[string]any{}})
	assert.ErrorIs(t, err, ErrMalformedOutput)

	_, err = coerceScores([]any{"not a number"})
	assert.ErrorIs(t, err, ErrMalformedOutput)

	empty, err := coerceScores(nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestNormalizePairReportsEmptyFirst(t *testing.T) {
	_, _, err := normalizePair([]any{1}, []string{}, FieldSourceSentences, FieldSentencesToCompare)
	assert.EqualError(t, err, "sentences_to_compare cannot be empty.")

	_, _, err = normalizePair(nil, []any{1}, FieldSourceSentences, FieldSentencesToCompare)
	assert.EqualError(t, err, "source_sentences cannot be empty.")

	_, _, err = normalizePair("a", []any{1}, FieldSourceSentences, FieldSentencesToCompare)
	assert.ErrorIs(t, err, ErrInputType)

	a, b, err := normalizePair("a", []string{"b", "c"}, FieldSourceSentences, FieldSentencesToCompare)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, a)
	assert.Equal(t, []string{"b", "c"}, b)
}
