package core

import (
	"errors"
	"fmt"
	"time"
)

// ErrNoConverter is returned when no document text converter is configured.
var ErrNoConverter = errors.New("no document text converter available")

// ExtractionFailed is the single error kind surfaced by an extraction.
type ExtractionFailed struct {
	Message string
	Err     error
}

func (e *ExtractionFailed) Error() string {
	return "Error extracting metadata: " + e.Message
}

func (e *ExtractionFailed) Unwrap() error {
	return e.Err
}

// NewExtractionFailed wraps err into an ExtractionFailed carrying its message.
func NewExtractionFailed(err error) *ExtractionFailed {
	var ef *ExtractionFailed
	if errors.As(err, &ef) {
		return ef
	}
	return &ExtractionFailed{Message: err.Error(), Err: err}
}

// DecodeFailed reports an image that could not be decoded into a bitmap,
// either because decoding errored or because it did not finish in time.
type DecodeFailed struct {
	Name    string
	Timeout time.Duration // non-zero when the bounded wait expired
	Err     error
}

func (e *DecodeFailed) Error() string {
	if e.Timeout > 0 {
		return fmt.Sprintf("decode %s: no result after %s", e.Name, e.Timeout)
	}
	return fmt.Sprintf("decode %s: %v", e.Name, e.Err)
}

func (e *DecodeFailed) Unwrap() error {
	return e.Err
}
