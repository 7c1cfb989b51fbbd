package dispatch

import (
	"errors"
	"fmt"

	"famjam-cli/internal/model"
)

type Action string

const (
	ActionCreate    Action = "create"
	ActionSetStatus Action = "set-status"
	ActionDelete    Action = "delete"
	ActionClearDone Action = "clear-done"
)

// Outcome is what a front-end knows after an action returns.
type Outcome struct {
	Action  Action
	Status  model.Status // ActionSetStatus
	Removed int          // ActionClearDone
	Err     error
}

// Note is the transient status line shown to the user for an outcome.
func (o Outcome) Note() string {
	var empty EmptyInputError
	if errors.As(o.Err, &empty) {
		switch empty.Field {
		case "board":
			return "Join a board first."
		case "title":
			return "Task title is required."
		default:
			return fmt.Sprintf("Missing %s.", empty.Field)
		}
	}
	var invalid InvalidInputError
	if errors.As(o.Err, &invalid) {
		return fmt.Sprintf("Invalid %s: %q.", invalid.Field, invalid.Value)
	}

	switch o.Action {
	case ActionCreate:
		if o.Err != nil {
			return "Couldn't add task. Check store config."
		}
		return "Task added."
	case ActionSetStatus:
		if o.Err != nil {
			return "Action failed. Check store config."
		}
		return fmt.Sprintf("Marked as %s.", o.Status.Label())
	case ActionDelete:
		if o.Err != nil {
			return "Action failed. Check store config."
		}
		return "Task deleted."
	case ActionClearDone:
		if errors.Is(o.Err, ErrNothingToClear) {
			return "No done tasks to clear."
		}
		if o.Err != nil {
			return "Couldn't clear done tasks. Check store config."
		}
		return fmt.Sprintf("Cleared %d done task(s).", o.Removed)
	}
	if o.Err != nil {
		return o.Err.Error()
	}
	return ""
}
