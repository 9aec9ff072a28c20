package mirror

import (
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// ErrNotFound is returned by a Decoder when a mirror answered definitively
// that the resource does not exist. It stops the fallback loop.
var ErrNotFound = errors.New("resource not found")

// TransportError is a network-level failure (dns, refused connection, timeout).
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return "transport failure: " + e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// StatusError is a non-2xx answer from a mirror.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("mirror returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("mirror returned status %d (%s)", e.StatusCode, e.Body)
}

// DecodeError is a 2xx answer whose body could not be mapped.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return "decode failure: " + e.Err.Error()
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Attempt records the outcome of one failed mirror attempt.
type Attempt struct {
	Mirror   string
	Err      error
	Duration time.Duration
}

// ExhaustedError is returned when every candidate mirror failed.
type ExhaustedError struct {
	Path     string
	Attempts []Attempt
}

func (e *ExhaustedError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "all %d mirrors exhausted for %q", len(e.Attempts), e.Path)
	for _, a := range e.Attempts {
		fmt.Fprintf(&sb, "; %s: %v", a.Mirror, a.Err)
	}
	return sb.String()
}

// Mirrors returns the attempted mirrors in attempt order.
func (e *ExhaustedError) Mirrors() []string {
	out := make([]string, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		out = append(out, a.Mirror)
	}
	return out
}
