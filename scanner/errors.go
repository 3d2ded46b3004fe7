package scanner

import (
	"errors"
	"fmt"
)

// FramingError is returned when a field's declared footprint would run
// past the end of its enclosing scope.
type FramingError struct {
	DeclaredLen      int64
	RemainingInFrame int64
}

func (e *FramingError) Error() string {
	return fmt.Sprintf("scanner: field declares %d byte(s) but only %d remain in the enclosing scope", e.DeclaredLen, e.RemainingInFrame)
}

// ErrNestingTooDeep is returned when an Enter decision would push the
// frame stack past its configured maximum depth.
var ErrNestingTooDeep = errors.New("scanner: frame stack exceeds configured nesting limit")
