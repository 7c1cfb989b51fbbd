package tui

import (
	"fmt"
	"io"
	"strings"

	"famjam-cli/internal/model"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// taskItem adapts a projected task to list.Item.
type taskItem struct {
	task model.Task
}

func (i taskItem) FilterValue() string { return i.task.Title }
func (i taskItem) Title() string { return i.task.Title }

func dueText(t model.Task) string {
	if t.DueDate == "" {
		return "No due date"
	}
	return "Due: " + t.DueDate
}

func assigneeText(t model.Task) string {
	if t.Assignee == "" {
		return "Unassigned"
	}
	return "Assigned: " + t.Assignee
}

func metaLine(t model.Task) string {
	return strings.Join([]string{
		string(t.Priority),
		dueText(t),
		assigneeText(t),
		"Added by: " + t.CreatedBy,
	}, " · ")
}

// taskDelegate renders a task as two lines: status + title, then metadata.
type taskDelegate struct {
	selected lipgloss.Style
}

func newTaskDelegate() taskDelegate {
	return taskDelegate{
		selected: lipgloss.NewStyle().
			Foreground(colorSelectedFg).
			Background(colorSelectedBg).
			Bold(true),
	}
}

func (d taskDelegate) Height() int  { return 2 }
func (d taskDelegate) Spacing() int { return 1 }
func (d taskDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

func (d taskDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(taskItem)
	contentW := m.Width()
	if !ok || contentW < 8 {
		return
	}
	t := it.task

	marker := "  "
	if index == m.Index() {
		marker = "› "
	}
	label := fmt.Sprintf("%-7s", "["+t.Status.Label()+"]")
	title := t.Title
	if index == m.Index() {
		title = d.selected.Render(title)
	}
	first := marker + styleStatus(t.Status).Render(label) + " " + title

	prio := stylePriority(t.Priority).Render(string(t.Priority))
	rest := styleMuted().Render(" · " + strings.TrimPrefix(metaLine(t), string(t.Priority)+" · "))
	second := "    " + prio + rest

	fmt.Fprint(w, fitWidth(first, contentW)+"\n"+fitWidth(second, contentW))
}

func newTaskList() list.Model {
	l := list.New([]list.Item{}, newTaskDelegate(), 0, 0)
	l.Title = "Tasks"
	// Footer, notes and help are rendered by the app model.
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetShowPagination(false)
	l.SetFilteringEnabled(false)
	l.SetStatusBarItemName("task", "tasks")
	l.KeyMap.Quit.SetKeys("ctrl+c")
	// Letter keys other than j/k/g/G are app actions, so paging stays off letters.
	l.KeyMap.CursorUp.SetKeys("up", "k", "ctrl+p")
	l.KeyMap.CursorDown.SetKeys("down", "j", "ctrl+n")
	l.KeyMap.NextPage.SetKeys("pgdown", "right")
	l.KeyMap.PrevPage.SetKeys("pgup", "left")
	l.KeyMap.GoToStart.SetKeys("home", "g", "<")
	l.KeyMap.GoToEnd.SetKeys("end", "G", ">")
	return l
}

// setTasks replaces list items and keeps the selection on the same task id when it survives.
func setTasks(l *list.Model, tasks []model.Task) {
	selectedID := ""
	if it, ok := l.SelectedItem().(taskItem); ok {
		selectedID = it.task.ID
	}
	items := make([]list.Item, 0, len(tasks))
	sel := 0
	for i, t := range tasks {
		items = append(items, taskItem{task: t})
		if t.ID == selectedID {
			sel = i
		}
	}
	l.SetItems(items)
	if len(items) > 0 {
		l.Select(sel)
	}
}

func selectedTask(l list.Model) (model.Task, bool) {
	it, ok := l.SelectedItem().(taskItem)
	if !ok {
		return model.Task{}, false
	}
	return it.task, true
}
