package sentence

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingModel is matched by errors reporting a model directory that
	// does not exist.
	ErrMissingModel = errors.New("sentence: model path does not exist")

	// ErrEmptyInput is matched by errors reporting an empty sentence list.
	ErrEmptyInput = errors.New("sentence: empty input")

	// ErrInputType is matched by errors reporting a non-string sentence.
	ErrInputType = errors.New("sentence: input must contain only strings")

	// ErrPipeline is matched by errors raised by a pipeline backend.
	ErrPipeline = errors.New("sentence: pipeline error")

	// ErrMalformedOutput is returned when the pipeline output cannot be
	// shaped into a result, e.g. a non-numeric score.
	ErrMalformedOutput = errors.New("sentence: malformed pipeline output")

	// ErrClosed is returned by operations on a closed Client.
	ErrClosed = errors.New("sentence: client is closed")

	// ErrNotStarted is returned by operations on a Client whose pipeline
	// has not been loaded yet, such as one provided by FXModule before the
	// application starts.
	ErrNotStarted = errors.New("sentence: client is not started")
)

// MissingModelError reports the resolved model path that does not exist.
type MissingModelError struct {
	Path string
}

func (e *MissingModelError) Error() string {
	return fmt.Sprintf("Model path does not exist: %s. Please check the model directory or pass --model-path.", e.Path)
}

func (e *MissingModelError) Unwrap() error { return ErrMissingModel }

// InputError reports an invalid sentence argument. Err is ErrEmptyInput or
// ErrInputType.
type InputError struct {
	Field string
	Err   error
}

func (e *InputError) Error() string {
	switch {
	case errors.Is(e.Err, ErrEmptyInput):
		return e.Field + " cannot be empty."
	case errors.Is(e.Err, ErrInputType):
		return e.Field + " must contain only strings."
	default:
		return e.Field + ": " + e.Err.Error()
	}
}

func (e *InputError) Unwrap() error { return e.Err }

// PipelineError is a failure reported by a pipeline backend, either while
// the pipeline is constructed or while it runs.
type PipelineError struct {
	Backend string
	Op      string
	// Type is the exception type reported by the backend, if any.
	Type       string
	Message    string
	StatusCode int
}

func (e *PipelineError) Error() string {
	msg := e.Message
	if e.Type != "" {
		msg = e.Type + ": " + msg
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s pipeline %s failed (http %d): %s", e.Backend, e.Op, e.StatusCode, msg)
	}
	return fmt.Sprintf("%s pipeline %s failed: %s", e.Backend, e.Op, msg)
}

func (e *PipelineError) Unwrap() error { return ErrPipeline }

// IsMissingModelError checks if the error reports a missing model directory.
func IsMissingModelError(err error) bool {
	return errors.Is(err, ErrMissingModel)
}

// IsEmptyInputError checks if the error reports an empty sentence list.
func IsEmptyInputError(err error) bool {
	return errors.Is(err, ErrEmptyInput)
}

// IsInputTypeError checks if the error reports a non-string sentence.
func IsInputTypeError(err error) bool {
	return errors.Is(err, ErrInputType)
}

// IsInputError checks if the error is any input validation error.
func IsInputError(err error) bool {
	var inputErr *InputError
	return errors.As(err, &inputErr)
}

// IsPipelineError checks if the error was raised by a pipeline backend.
func IsPipelineError(err error) bool {
	return errors.Is(err, ErrPipeline)
}
