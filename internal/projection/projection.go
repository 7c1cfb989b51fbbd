// Package projection derives the visible task list from a snapshot.
package projection

import (
	"sort"
	"strings"

	"famjam-cli/internal/model"
)

type Filter string

const (
	FilterAll   Filter = "all"
	FilterOpen  Filter = "open"
	FilterDoing Filter = "doing"
	FilterDone  Filter = "done"
)

type Sort string

const (
	SortCreated  Sort = "created"
	SortDueDate  Sort = "dueDate"
	SortPriority Sort = "priority"
)

// noDueDate sorts after every real ISO date.
const noDueDate = "9999-12-31"

var (
	Filters = []Filter{FilterAll, FilterOpen, FilterDoing, FilterDone}
	Sorts   = []Sort{SortCreated, SortDueDate, SortPriority}
)

// ParseFilter falls back to FilterAll for empty or unknown input.
func ParseFilter(s string) Filter {
	switch Filter(strings.ToLower(strings.TrimSpace(s))) {
	case FilterOpen:
		return FilterOpen
	case FilterDoing:
		return FilterDoing
	case FilterDone:
		return FilterDone
	default:
		return FilterAll
	}
}

// ParseSort falls back to SortCreated for empty or unknown input.
func ParseSort(s string) Sort {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "duedate", "due":
		return SortDueDate
	case "priority":
		return SortPriority
	default:
		return SortCreated
	}
}

// Next cycles through Filters.
func (f Filter) Next() Filter {
	for i, x := range Filters {
		if x == f {
			return Filters[(i+1)%len(Filters)]
		}
	}
	return FilterAll
}

// Next cycles through Sorts.
func (s Sort) Next() Sort {
	for i, x := range Sorts {
		if x == s {
			return Sorts[(i+1)%len(Sorts)]
		}
	}
	return SortCreated
}

// Project filters and orders tasks. The input is not modified.
//
// The order is total: every mode falls back to createdAt (newest first) and then id, so the
// same snapshot always renders identically.
func Project(tasks []model.Task, filter Filter, sortBy Sort) []model.Task {
	out := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		if filter != FilterAll && string(model.CoerceStatus(string(t.Status))) != string(filter) {
			continue
		}
		out = append(out, t)
	}

	less := newestFirst
	switch sortBy {
	case SortDueDate:
		less = func(a, b model.Task) bool {
			ad, bd := dueKey(a), dueKey(b)
			if ad != bd {
				return ad < bd
			}
			return newestFirst(a, b)
		}
	case SortPriority:
		less = func(a, b model.Task) bool {
			ar, br := a.Priority.Rank(), b.Priority.Rank()
			if ar != br {
				return ar > br
			}
			return newestFirst(a, b)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

func newestFirst(a, b model.Task) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID < b.ID
}

func dueKey(t model.Task) string {
	if t.DueDate == "" {
		return noDueDate
	}
	return t.DueDate
}
