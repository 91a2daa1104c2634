package engine

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidDirection = errors.New("invalid direction")
	ErrInvalidSpin      = errors.New("invalid spin")
)

// InvariantError reports a broken internal invariant. It is raised with
// panic and never returned: the board state can no longer be trusted.
type InvariantError struct {
	Op  string
	Msg string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("engine: %s: %s", e.Op, e.Msg)
}

func invariant(op, format string, args ...any) *InvariantError {
	return &InvariantError{Op: op, Msg: fmt.Sprintf(format, args...)}
}
