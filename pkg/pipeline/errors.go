package pipeline

import (
	"context"
	"errors"
	"fmt"
)

// InputAbsentError reports that a required track or view is missing.
type InputAbsentError struct {
	What string
}

func (e *InputAbsentError) Error() string {
	return fmt.Sprintf("input absent: %s", e.What)
}

// SizeMismatchError reports paired views of different lengths.
type SizeMismatchError struct {
	Left  int
	Right int
}

func (e *SizeMismatchError) Error() string {
	return fmt.Sprintf("view size mismatch: left has %d frames, right has %d", e.Left, e.Right)
}

// EmptyViewError reports a view with no frames.
type EmptyViewError struct {
	View ViewName
}

func (e *EmptyViewError) Error() string {
	return fmt.Sprintf("view %q has no frames", e.View)
}

// BufferExhaustedError reports a frame skipped because no pixel buffer was free.
type BufferExhaustedError struct {
	Index int
}

func (e *BufferExhaustedError) Error() string {
	return fmt.Sprintf("pixel buffer pool exhausted at frame %d", e.Index)
}

// EncoderTerminalError reports an encoder that failed while writing Path.
type EncoderTerminalError struct {
	Path string
	Err  error
}

func (e *EncoderTerminalError) Error() string {
	return fmt.Sprintf("encoder failed writing %s: %v", e.Path, e.Err)
}

func (e *EncoderTerminalError) Unwrap() error {
	return e.Err
}

// UnexpectedSampleError reports a non-pixel sample tagged for a registered view.
type UnexpectedSampleError struct {
	Ordinal int
	Kind    string
}

func (e *UnexpectedSampleError) Error() string {
	return fmt.Sprintf("unexpected %s sample at ordinal %d", e.Kind, e.Ordinal)
}

// FileError attaches the input file to a conversion failure.
type FileError struct {
	Path string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}

// ErrorKind classifies conversion failures.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindInputAbsent
	KindInputMalformed
	KindResourceExhausted
	KindEncoderTerminal
	KindUnexpectedSample
	KindCancelled
)

// String returns the string representation of the error kind.
func (k ErrorKind) String() string {
	switch k {
	case KindInputAbsent:
		return "input-absent"
	case KindInputMalformed:
		return "input-malformed"
	case KindResourceExhausted:
		return "resource-exhaustion"
	case KindEncoderTerminal:
		return "encoder-terminal"
	case KindUnexpectedSample:
		return "unexpected-sample-kind"
	case KindCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// KindOf classifies err, looking through wrapped errors.
func KindOf(err error) ErrorKind {
	var (
		absent     *InputAbsentError
		mismatch   *SizeMismatchError
		empty      *EmptyViewError
		exhausted  *BufferExhaustedError
		terminal   *EncoderTerminalError
		unexpected *UnexpectedSampleError
	)
	switch {
	case err == nil:
		return KindUnknown
	case errors.As(err, &absent):
		return KindInputAbsent
	case errors.As(err, &mismatch), errors.As(err, &empty):
		return KindInputMalformed
	case errors.As(err, &exhausted):
		return KindResourceExhausted
	case errors.As(err, &terminal):
		return KindEncoderTerminal
	case errors.As(err, &unexpected):
		return KindUnexpectedSample
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return KindCancelled
	default:
		return KindUnknown
	}
}
