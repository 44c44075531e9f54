package planner

import (
	"errors"
	"fmt"
)

var ErrUnsupported = errors.New("unsupported")

// UnsupportedError is returned for statements the grammar accepts but the
// engine deliberately does not handle.
type UnsupportedError struct {
	Reason string
}

func (e *UnsupportedError) Error() string        { return "unsupported: " + e.Reason }
func (e *UnsupportedError) Is(target error) bool { return target == ErrUnsupported }

func unsupported(format string, args ...any) error {
	return &UnsupportedError{Reason: fmt.Sprintf(format, args...)}
}
