package tui

import (
	"famjam-cli/internal/dispatch"
	"famjam-cli/internal/feed"
)

type modalKind int

const (
	modalNone modalKind = iota
	modalJoin
	modalAddTask
	modalName
	modalConfirmDelete
	modalConfirmClearDone
)

// Add-task form fields, in tab order.
const (
	fieldTitle = iota
	fieldAssignee
	fieldDueDate
	fieldPriority
)

// feedEventMsg carries one event from the live subscription into Update.
type feedEventMsg struct {
	ev feed.Event
}

// feedClosedMsg is returned by a wait on a channel that was closed (cancelled or failed).
type feedClosedMsg struct{}

type actionDoneMsg struct {
	outcome dispatch.Outcome
}

type noteExpiredMsg struct{ seq int }
