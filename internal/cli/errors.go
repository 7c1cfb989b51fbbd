package cli

import (
	"errors"

	"famjam-cli/internal/dispatch"
	"famjam-cli/internal/remote"
)

var errNoBoard = errors.New("no board: pass --board or join one first (famjam watch <board>)")

type invalidConfigError struct {
	err error
}

func (e invalidConfigError) Error() string {
	return "invalid config: " + e.err.Error()
}

func (e invalidConfigError) Unwrap() error { return e.err }

// actionError keeps the dispatcher error for errors.As and prefixes the user-facing note.
type actionError struct {
	note string
	err  error
}

func (e actionError) Error() string {
	if e.note == "" {
		return e.err.Error()
	}
	return e.note + " (" + e.err.Error() + ")"
}

func (e actionError) Unwrap() error { return e.err }

func errAction(action dispatch.Action, err error) error {
	var empty dispatch.EmptyInputError
	if errors.As(err, &empty) && empty.Field == "board" {
		return errNoBoard
	}
	return actionError{note: dispatch.Outcome{Action: action, Err: err}.Note(), err: err}
}

type watchFailedError struct {
	board string
	err   error
}

func (e watchFailedError) Error() string {
	return "board " + e.board + ": " + e.err.Error()
}

func (e watchFailedError) Unwrap() error { return e.err }

type taskNotFoundError struct {
	board string
	id    string
}

func (e taskNotFoundError) Error() string {
	return "task not found: " + e.id + " (board " + e.board + ")"
}

func (e taskNotFoundError) Unwrap() error { return remote.ErrNotFound }
