package dispatch

import (
	"errors"
	"fmt"
)

// ErrNothingToClear is the "zero done tasks" outcome of ClearDone. It is not a failure.
var ErrNothingToClear = errors.New("no done tasks to clear")

// EmptyInputError reports a required value that was missing. No remote call was made.
type EmptyInputError struct {
	Field string
}

func (e EmptyInputError) Error() string {
	return fmt.Sprintf("%s is required", e.Field)
}

// InvalidInputError reports a value that was present but malformed. No remote call was made.
type InvalidInputError struct {
	Field string
	Value string
}

func (e InvalidInputError) Error() string {
	return fmt.Sprintf("invalid %s: %q", e.Field, e.Value)
}

// WriteError reports a single failed mutation. The board stays usable.
type WriteError struct {
	Op    string
	Board string
	Err   error
}

func (e WriteError) Error() string {
	return fmt.Sprintf("%s on board %s failed: %v", e.Op, e.Board, e.Err)
}

func (e WriteError) Unwrap() error { return e.Err }
