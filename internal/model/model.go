package model

import "time"

type Status string

const (
	StatusOpen  Status = "open"
	StatusDoing Status = "doing"
	StatusDone  Status = "done"
)

type Priority string

const (
	PriorityHigh Priority = "high"
	PriorityMed  Priority = "med"
	PriorityLow  Priority = "low"
)

// DefaultCreatedBy is used when a task was written without a display name.
const DefaultCreatedBy = "Someone"

// Task is the client's read-only copy of a remote task record.
// Values are always defaulted (see Decode); a Task never carries an unknown status or priority.
type Task struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Assignee string   `json:"assignee,omitempty"`
	DueDate  string   `json:"dueDate,omitempty"` // YYYY-MM-DD
	Priority Priority `json:"priority"`
	Status   Status   `json:"status"`

	CreatedBy string    `json:"createdBy"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Remote field names. These are the keys stored by every backend.
const (
	FieldTitle     = "title"
	FieldAssignee  = "assignee"
	FieldDueDate   = "dueDate"
	FieldPriority  = "priority"
	FieldStatus    = "status"
	FieldCreatedBy = "createdBy"
	FieldCreatedAt = "createdAt"
	FieldUpdatedAt = "updatedAt"
)
