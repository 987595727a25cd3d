package sentence

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
)

// Field names used in validation errors.
const (
	FieldSourceSentences    = "source_sentences"
	FieldSentencesToCompare = "sentences_to_compare"
	FieldSourceList         = "source_list"
	FieldCompareList        = "compare_list"
	FieldSentences          = "sentences"
)

// normalizeSentences turns a single string or a slice/array of values into a
// fresh []string. Empty input is reported before element types are checked.
func normalizeSentences(input any, field string) ([]string, error) {
	switch v := input.(type) {
	case nil:
		return nil, &InputError{Field: field, Err: ErrEmptyInput}
	case string:
		return []string{v}, nil
	case []string:
		if len(v) == 0 {
			return nil, &InputError{Field: field, Err: ErrEmptyInput}
		}
		return append([]string(nil), v...), nil
	}

	rv := reflect.ValueOf(input)
	if rv.Kind() == reflect.String {
		return []string{rv.String()}, nil
	}
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, &InputError{Field: field, Err: ErrInputType}
	}
	if rv.Len() == 0 {
		return nil, &InputError{Field: field, Err: ErrEmptyInput}
	}

	out := make([]string, rv.Len())
	for i := range out {
		elem := rv.Index(i)
		if elem.Kind() == reflect.Interface {
			elem = elem.Elem()
		}
		if !elem.IsValid() || elem.Kind() != reflect.String {
			return nil, &InputError{Field: field, Err: ErrInputType}
		}
		out[i] = elem.String()
	}
	return out, nil
}

// normalizePair normalizes two sentence arguments. An empty argument is
// reported before any element type error, whichever argument that comes from.
func normalizePair(first, second any, firstField, secondField string) ([]string, []string, error) {
	if isEmptyInput(first) {
		return nil, nil, &InputError{Field: firstField, Err: ErrEmptyInput}
	}
	if isEmptyInput(second) {
		return nil, nil, &InputError{Field: secondField, Err: ErrEmptyInput}
	}
	a, err := normalizeSentences(first, firstField)
	if err != nil {
		return nil, nil, err
	}
	b, err := normalizeSentences(second, secondField)
	if err != nil {
		return nil, nil, err
	}
	return a, b, nil
}

func isEmptyInput(input any) bool {
	if input == nil {
		return true
	}
	rv := reflect.ValueOf(input)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		return rv.Len() == 0
	default:
		return false
	}
}

// coerceScores converts every raw score to float64.
func coerceScores(raw []any) ([]float64, error) {
	scores := make([]float64, len(raw))
	for i, s := range raw {
		f, err := toFloat64(s)
		if err != nil {
			return nil, fmt.Errorf("%w: score %d: %v", ErrMalformedOutput, i, err)
		}
		scores[i] = f
	}
	return scores, nil
}

func toFloat64(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int32:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case uint:
		return float64(n), nil
	case uint32:
		return float64(n), nil
	case uint64:
		return float64(n), nil
	case json.Number:
		return n.Float64()
	case string:
		return strconv.ParseFloat(n, 64)
	default:
		return 0, fmt.Errorf("unsupported score type %T", v)
	}
}
