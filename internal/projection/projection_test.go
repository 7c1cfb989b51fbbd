package projection

import (
	"fmt"
	"math/rand"
	"reflect"
	"testing"
	"time"

	"famjam-cli/internal/model"
)

var base = time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)

func task(id string, status model.Status, prio model.Priority, due string, ageMin int) model.Task {
	return model.Task{
		ID:        id,
		Title:     id,
		Status:    status,
		Priority:  prio,
		DueDate:   due,
		CreatedAt: base.Add(-time.Duration(ageMin) * time.Minute),
	}
}

func ids(tasks []model.Task) []string {
	out := make([]string, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.ID)
	}
	return out
}

func randomTasks(r *rand.Rand, n int) []model.Task {
	statuses := []model.Status{model.StatusOpen, model.StatusDoing, model.StatusDone}
	prios := []model.Priority{model.PriorityHigh, model.PriorityMed, model.PriorityLow}
	dues := []string{"", "2025-06-02", "2025-06-10", "2024-12-31", "2025-06-02"}
	out := make([]model.Task, n)
	for i := range out {
		out[i] = task(fmt.Sprintf("t%03d", i), statuses[r.Intn(3)], prios[r.Intn(3)], dues[r.Intn(len(dues))], r.Intn(20))
	}
	return out
}

func TestProject_CreatedNewestFirst(t *testing.T) {
	t.Parallel()

	in := []model.Task{
		task("old", model.StatusOpen, model.PriorityMed, "", 30),
		task("new", model.StatusOpen, model.PriorityMed, "", 1),
		task("mid", model.StatusOpen, model.PriorityMed, "", 10),
	}
	got := ids(Project(in, FilterAll, SortCreated))
	want := []string{"new", "mid", "old"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
	if in[0].ID != "old" {
		t.Fatalf("input must not be reordered")
	}
}

func TestProject_FilterKeepsOnlyMatchingStatus(t *testing.T) {
	t.Parallel()

	r := rand.New(rand.NewSource(1))
	for i := 0; i < 200; i++ {
		in := randomTasks(r, r.Intn(25))
		for _, f := range []Filter{FilterOpen, FilterDoing, FilterDone} {
			out := Project(in, f, Sorts[r.Intn(len(Sorts))])
			want := 0
			for _, tk := range in {
				if string(tk.Status) == string(f) {
					want++
				}
			}
			if len(out) != want {
				t.Fatalf("filter %s: got %d tasks want %d", f, len(out), want)
			}
			for _, tk := range out {
				if string(tk.Status) != string(f) {
					t.Fatalf("filter %s leaked %#v", f, tk)
				}
			}
		}
		if got := Project(in, FilterAll, SortCreated); len(got) != len(in) {
			t.Fatalf("filter all dropped tasks: %d of %d", len(got), len(in))
		}
	}
}

func TestProject_FilterTreatsMissingStatusAsOpen(t *testing.T) {
	t.Parallel()

	in := []model.Task{{ID: "x", CreatedAt: base}}
	if got := Project(in, FilterOpen, SortCreated); len(got) != 1 {
		t.Fatalf("expected status-less task to count as open; got %v", ids(got))
	}
}

func TestProject_DueDateOrder(t *testing.T) {
	t.Parallel()

	r := rand.New(rand.NewSource(2))
	for i := 0; i < 200; i++ {
		out := Project(randomTasks(r, r.Intn(25)), FilterAll, SortDueDate)
		seenUndated := false
		prev := ""
		for _, tk := range out {
			if tk.DueDate == "" {
				seenUndated = true
				continue
			}
			if seenUndated {
				t.Fatalf("dated task %s after an undated one: %v", tk.ID, ids(out))
			}
			if tk.DueDate < prev {
				t.Fatalf("due dates decreased: %s after %s", tk.DueDate, prev)
			}
			prev = tk.DueDate
		}
	}
}

func TestProject_PriorityOrder(t *testing.T) {
	t.Parallel()

	r := rand.New(rand.NewSource(3))
	for i := 0; i < 200; i++ {
		out := Project(randomTasks(r, r.Intn(25)), FilterAll, SortPriority)
		for j := 1; j < len(out); j++ {
			a, b := out[j-1], out[j]
			if a.Priority.Rank() < b.Priority.Rank() {
				t.Fatalf("priority increased at %d: %v", j, ids(out))
			}
			if a.Priority.Rank() == b.Priority.Rank() && a.CreatedAt.Before(b.CreatedAt) {
				t.Fatalf("createdAt increased within equal priority at %d", j)
			}
		}
	}
}

func TestProject_DeterministicRegardlessOfInputOrder(t *testing.T) {
	t.Parallel()

	r := rand.New(rand.NewSource(4))
	in := randomTasks(r, 30)
	for _, s := range Sorts {
		want := ids(Project(in, FilterAll, s))
		for i := 0; i < 20; i++ {
			shuffled := append([]model.Task(nil), in...)
			r.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
			if got := ids(Project(shuffled, FilterAll, s)); !reflect.DeepEqual(got, want) {
				t.Fatalf("sort %s not deterministic:\n got %v\nwant %v", s, got, want)
			}
		}
	}
}

func TestParseAndCycle(t *testing.T) {
	t.Parallel()

	if ParseFilter("DOING") != FilterDoing || ParseFilter("bogus") != FilterAll || ParseFilter("") != FilterAll {
		t.Fatalf("ParseFilter fallbacks wrong")
	}
	if ParseSort("dueDate") != SortDueDate || ParseSort("priority") != SortPriority || ParseSort("x") != SortCreated {
		t.Fatalf("ParseSort fallbacks wrong")
	}
	if FilterDone.Next() != FilterAll || FilterAll.Next() != FilterOpen {
		t.Fatalf("filter cycle wrong")
	}
	if SortPriority.Next() != SortCreated || SortCreated.Next() != SortDueDate {
		t.Fatalf("sort cycle wrong")
	}
}
