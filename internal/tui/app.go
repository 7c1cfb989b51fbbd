package tui

import (
	"fmt"
	"strings"

	"famjam-cli/internal/model"
	"famjam-cli/internal/session"

	"github.com/charmbracelet/lipgloss"
)

const helpLine = "↑↓/jk move  ←→ page  b join  a add  o/i/d open/doing/done  x delete  C clear done  f filter  s sort  n name  q quit"

func (m appModel) View() string {
	width := m.width
	if width <= 0 {
		width = 80
	}

	var b strings.Builder
	b.WriteString(m.renderHeader(width))
	b.WriteString("\n\n")

	if m.view.Placeholder != "" && len(m.view.Tasks) == 0 {
		st := styleMuted()
		if m.view.State == session.Failed {
			st = styleError()
		}
		b.WriteString(st.Render(m.view.Placeholder))
		b.WriteString("\n")
	} else if m.view.State == session.Connected && len(m.view.Tasks) == 0 {
		b.WriteString(styleMuted().Render(fmt.Sprintf("No %s tasks.", m.view.Filter)))
		b.WriteString("\n")
	} else {
		b.WriteString(m.list.View())
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(fitWidth(styleMuted().Render(m.view.Footer), width))
	b.WriteString("\n")
	if m.note != "" {
		st := lipgloss.NewStyle().Foreground(colorAccent)
		if m.noteIsErr {
			st = styleError()
		}
		b.WriteString(fitWidth(st.Render(m.note), width))
	}
	b.WriteString("\n")
	b.WriteString(fitWidth(styleMuted().Render(helpLine), width))

	base := b.String()
	if m.modal == modalNone {
		return base
	}
	height := m.height
	if height <= 0 {
		height = 24
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, m.renderModal(width))
}

func (m appModel) renderHeader(width int) string {
	board := m.view.Board
	if board == "" {
		board = "—"
	}
	name := m.name
	if strings.TrimSpace(name) == "" {
		name = model.DefaultCreatedBy
	}
	left := styleHeader().Render("famjam") + "  Board: " + board
	right := styleMuted().Render(fmt.Sprintf("filter: %s  sort: %s  name: %s", m.view.Filter, m.view.Sort, name))
	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 2 {
		return fitWidth(left+"  "+right, width)
	}
	return left + strings.Repeat(" ", gap) + right
}

func (m appModel) renderModal(width int) string {
	bodyW := modalBodyWidth(width)
	switch m.modal {
	case modalJoin:
		return renderModalBox(width, "Join board", strings.Join([]string{
			renderInputLine(bodyW, m.inputs[0].View()),
			"",
			styleMuted().Render("enter: join   esc: cancel   empty code leaves the board"),
		}, "\n"))

	case modalName:
		return renderModalBox(width, "Display name", strings.Join([]string{
			renderInputLine(bodyW, m.inputs[0].View()),
			"",
			styleMuted().Render("enter: save   esc: cancel"),
		}, "\n"))

	case modalAddTask:
		labels := []string{"Title", "Assignee", "Due date", "Priority"}
		lines := make([]string, 0, len(labels)*2+2)
		for i, label := range labels {
			l := label
			if i == m.inputFocus {
				l = lipgloss.NewStyle().Bold(true).Render(label)
			}
			lines = append(lines, l, renderInputLine(bodyW, m.inputs[i].View()))
		}
		lines = append(lines, "", styleMuted().Render("tab: next field   enter: add   esc: cancel"))
		return renderModalBox(width, "Add task to "+m.view.Board, strings.Join(lines, "\n"))

	case modalConfirmDelete:
		return renderConfirmModal(width, "Delete task",
			fmt.Sprintf("Delete %q?", m.pendingTask.Title), "Delete", "Cancel", m.confirmFocus)

	case modalConfirmClearDone:
		return renderConfirmModal(width, "Clear done",
			"Delete every done task on "+m.view.Board+"?", "Clear", "Cancel", m.confirmFocus)
	}
	return ""
}
