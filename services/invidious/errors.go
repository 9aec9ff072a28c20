package invidious

import (
	"fmt"

	"github.com/kantan-tube/web-ui/services/mirror"
	"github.com/pkg/errors"
)

// ErrNotFound means a mirror answered that the resource does not exist.
var ErrNotFound = mirror.ErrNotFound

// ErrUnavailable means no mirror could answer.
var ErrUnavailable = errors.New("content unavailable")

// UnavailableError carries the per-mirror attempts of an exhausted call.
type UnavailableError struct {
	Op       string
	Attempts []mirror.Attempt
	cause    error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("%s: %s (%d mirrors tried)", e.Op, ErrUnavailable.Error(), len(e.Attempts))
}

func (e *UnavailableError) Is(target error) bool {
	return target == ErrUnavailable
}

func (e *UnavailableError) Unwrap() error {
	return e.cause
}

func wrapErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, mirror.ErrNotFound) {
		return ErrNotFound
	}
	var ex *mirror.ExhaustedError
	if errors.As(err, &ex) {
		return &UnavailableError{
			Op:       op,
			Attempts: ex.Attempts,
			cause:    ex,
		}
	}
	return errors.Wrap(err, op)
}
