package audio

import (
	"errors"
	"fmt"
)

// Operation represents the type of audio operation
type Operation string

const (
	OpDecode      Operation = "decode"
	OpMix         Operation = "mix"
	OpConcatenate Operation = "concatenate"
	OpEncode      Operation = "encode"
)

// Sentinel errors matched with errors.Is against an *AudioError.
var (
	ErrDecode        = errors.New("audio could not be decoded")
	ErrMixing        = errors.New("audio could not be mixed")
	ErrConcatenation = errors.New("audio could not be concatenated")
)

// AudioError represents a structured audio processing error
type AudioError struct {
	Op Operation
	// Source names the input involved, such as a URL, a chunk index or a settings field.
	Source     string
	Underlying error
}

func (e *AudioError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("audio %s failed for %s: %v", e.Op, e.Source, e.Underlying)
	}
	return fmt.Sprintf("audio %s failed for %s", e.Op, e.Source)
}

func (e *AudioError) Unwrap() error {
	return e.Underlying
}

// Is maps the operation onto the matching sentinel error.
func (e *AudioError) Is(target error) bool {
	switch target {
	case ErrDecode:
		return e.Op == OpDecode
	case ErrMixing:
		return e.Op == OpMix || e.Op == OpEncode
	case ErrConcatenation:
		return e.Op == OpConcatenate
	}
	return false
}

// NewDecodeError creates an error for sources that cannot be fetched or decoded
func NewDecodeError(source string, err error) *AudioError {
	return &AudioError{
		Op:         OpDecode,
		Source:     source,
		Underlying: err,
	}
}

// NewMixingError creates an error for missing inputs or invalid render parameters
func NewMixingError(source string, err error) *AudioError {
	return &AudioError{
		Op:         OpMix,
		Source:     source,
		Underlying: err,
	}
}

// NewConcatenationError creates an error for empty or undecodable chunk sequences
func NewConcatenationError(source string, err error) *AudioError {
	return &AudioError{
		Op:         OpConcatenate,
		Source:     source,
		Underlying: err,
	}
}

// NewEncodeError creates an error for WAV encoding failures
func NewEncodeError(source string, err error) *AudioError {
	return &AudioError{
		Op:         OpEncode,
		Source:     source,
		Underlying: err,
	}
}
