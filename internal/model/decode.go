package model

import (
	"strconv"
	"strings"
	"time"
)

// ParseStatus accepts a status id in any case. Unknown or empty input reports ok=false.
func ParseStatus(s string) (Status, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "open":
		return StatusOpen, true
	case "doing":
		return StatusDoing, true
	case "done":
		return StatusDone, true
	default:
		return "", false
	}
}

// CoerceStatus maps missing or unrecognized values to open.
func CoerceStatus(s string) Status {
	if st, ok := ParseStatus(s); ok {
		return st
	}
	return StatusOpen
}

// ParsePriority accepts high|med|low (and "medium"). Unknown or empty input reports ok=false.
func ParsePriority(s string) (Priority, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "high":
		return PriorityHigh, true
	case "med", "medium":
		return PriorityMed, true
	case "low":
		return PriorityLow, true
	default:
		return "", false
	}
}

// CoercePriority maps missing or unrecognized values to med.
func CoercePriority(s string) Priority {
	if p, ok := ParsePriority(s); ok {
		return p
	}
	return PriorityMed
}

// Rank orders priorities: high=3, med=2, low=1.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMed:
		return 2
	default:
		return 1
	}
}

func (s Status) Label() string {
	switch s {
	case StatusDoing:
		return "Doing"
	case StatusDone:
		return "Done"
	default:
		return "Open"
	}
}

// ValidDueDate reports whether s is an ISO calendar date (YYYY-MM-DD).
func ValidDueDate(s string) bool {
	if len(s) != len("2006-01-02") {
		return false
	}
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}

// Decode converts a raw remote record into a Task, applying every default exactly once.
// Timestamps are decimal microseconds since the Unix epoch; unparsable values become zero time.
func Decode(id string, fields map[string]string) Task {
	t := Task{
		ID:        id,
		Title:     fields[FieldTitle],
		Assignee:  strings.TrimSpace(fields[FieldAssignee]),
		Priority:  CoercePriority(fields[FieldPriority]),
		Status:    CoerceStatus(fields[FieldStatus]),
		CreatedBy: strings.TrimSpace(fields[FieldCreatedBy]),
		CreatedAt: ParseMicros(fields[FieldCreatedAt]),
		UpdatedAt: ParseMicros(fields[FieldUpdatedAt]),
	}
	if due := strings.TrimSpace(fields[FieldDueDate]); ValidDueDate(due) {
		t.DueDate = due
	}
	if t.CreatedBy == "" {
		t.CreatedBy = DefaultCreatedBy
	}
	return t
}

func ParseMicros(s string) time.Time {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || n <= 0 {
		return time.Time{}
	}
	return time.UnixMicro(n).UTC()
}

func FormatMicros(t time.Time) string {
	return strconv.FormatInt(t.UnixMicro(), 10)
}
