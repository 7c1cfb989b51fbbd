package tui

import (
	"errors"
	"time"

	"famjam-cli/internal/dispatch"
	"famjam-cli/internal/model"
	"famjam-cli/internal/store"

	tea "github.com/charmbracelet/bubbletea"
)

const noteTTL = 4 * time.Second

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeList()
		return m, nil

	case feedEventMsg:
		m.ctrl.Handle(msg.ev)
		m.syncView()
		// Keep waiting only on the live subscription; a stale wait chain just ends here.
		if sub := m.ctrl.State().SubID; sub != 0 && msg.ev.SubID == sub {
			return m, waitForFeed(m.ctrl.Events())
		}
		return m, nil

	case feedClosedMsg:
		return m, nil

	case actionDoneMsg:
		return m, m.showNote(msg.outcome)

	case noteExpiredMsg:
		if msg.seq == m.noteSeq {
			m.note = ""
			m.noteIsErr = false
		}
		return m, nil

	case tea.KeyMsg:
		if m.modal != modalNone {
			return m.updateModal(msg)
		}
		return m.updateBoard(msg)
	}

	return m, nil
}

func (m appModel) updateBoard(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		m.ctrl.Close()
		return m, tea.Quit

	case "b":
		m.openModal(modalJoin, newInput("Board code", m.ctrl.Board(), 64))
		return m, nil

	case "n":
		m.openModal(modalName, newInput(model.DefaultCreatedBy, m.name, 40))
		return m, nil

	case "a":
		if m.ctrl.Board() == "" {
			return m, m.showNote(dispatch.Outcome{Action: dispatch.ActionCreate, Err: dispatch.EmptyInputError{Field: "board"}})
		}
		m.openModal(modalAddTask,
			newInput("Title (required)", "", 200),
			newInput("Assignee", "", 40),
			newInput("Due date YYYY-MM-DD", "", 10),
			newInput("Priority high|med|low", "", 6),
		)
		return m, nil

	case "o", "i", "d":
		status := map[string]model.Status{"o": model.StatusOpen, "i": model.StatusDoing, "d": model.StatusDone}[msg.String()]
		t, ok := selectedTask(m.list)
		if !ok {
			return m, nil
		}
		return m, m.setStatusCmd(t.ID, status)

	case "x":
		t, ok := selectedTask(m.list)
		if !ok {
			return m, nil
		}
		m.openModal(modalConfirmDelete)
		m.pendingTask = t
		return m, nil

	case "C":
		if m.ctrl.Board() == "" {
			return m, m.showNote(dispatch.Outcome{Action: dispatch.ActionClearDone, Err: dispatch.EmptyInputError{Field: "board"}})
		}
		m.openModal(modalConfirmClearDone)
		return m, nil

	case "f":
		m.ctrl.SetView(m.ctrl.Filter().Next(), m.ctrl.Sort())
		m.syncView()
		return m, nil

	case "s":
		m.ctrl.SetView(m.ctrl.Filter(), m.ctrl.Sort().Next())
		m.syncView()
		return m, nil

	case "r":
		if m.ctrl.Board() == "" {
			return m, nil
		}
		m.ctrl.Rejoin()
		m.syncView()
		return m, waitForFeed(m.ctrl.Events())
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m appModel) updateModal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.modal {
	case modalConfirmDelete, modalConfirmClearDone:
		return m.updateConfirm(msg)
	}

	switch msg.String() {
	case "esc", "ctrl+g":
		m.closeModal()
		return m, nil
	case "tab", "down":
		if len(m.inputs) > 1 {
			m.inputFocus = (m.inputFocus + 1) % len(m.inputs)
			m.focusInput()
		}
		return m, nil
	case "shift+tab", "up":
		if len(m.inputs) > 1 {
			m.inputFocus = (m.inputFocus - 1 + len(m.inputs)) % len(m.inputs)
			m.focusInput()
		}
		return m, nil
	case "enter":
		return m.submitModal()
	}

	var cmd tea.Cmd
	m.inputs[m.inputFocus], cmd = m.inputs[m.inputFocus].Update(msg)
	return m, cmd
}

func (m appModel) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "ctrl+g", "n":
		m.closeModal()
		return m, nil
	case "tab", "shift+tab", "left", "right":
		m.confirmFocus = m.confirmFocus.toggle()
		return m, nil
	case "y":
		m.confirmFocus = confirmFocusConfirm
		return m.submitModal()
	case "enter":
		if m.confirmFocus == confirmFocusCancel {
			m.closeModal()
			return m, nil
		}
		return m.submitModal()
	}
	return m, nil
}

func (m appModel) submitModal() (tea.Model, tea.Cmd) {
	kind := m.modal
	inputs := m.inputs
	pending := m.pendingTask
	value := func(i int) string {
		if i < len(inputs) {
			return inputs[i].Value()
		}
		return ""
	}

	switch kind {
	case modalJoin:
		m.closeModal()
		m.ctrl.Join(value(0))
		m.syncView()
		return m, waitForFeed(m.ctrl.Events())

	case modalName:
		m.closeModal()
		m.name = value(0)
		name := m.name
		if err := m.prefs.Update(func(p *store.Prefs) { p.Name = name }); err != nil {
			m.logger.WithError(err).Warn("save display name")
		}
		return m, nil

	case modalAddTask:
		in := dispatch.NewTask{
			Title:     value(fieldTitle),
			Assignee:  value(fieldAssignee),
			DueDate:   value(fieldDueDate),
			Priority:  value(fieldPriority),
			CreatedBy: m.name,
		}
		// Validate before closing so the form keeps what the user typed.
		if err := in.Validate(); err != nil {
			return m, m.showNote(dispatch.Outcome{Action: dispatch.ActionCreate, Err: err})
		}
		m.closeModal()
		return m, m.createTaskCmd(in)

	case modalConfirmDelete:
		m.closeModal()
		return m, m.deleteTaskCmd(pending.ID)

	case modalConfirmClearDone:
		m.closeModal()
		return m, m.clearDoneCmd()
	}
	m.closeModal()
	return m, nil
}

func (m *appModel) showNote(o dispatch.Outcome) tea.Cmd {
	m.noteSeq++
	seq := m.noteSeq
	m.note = o.Note()
	m.noteIsErr = o.Err != nil && !errors.Is(o.Err, dispatch.ErrNothingToClear)
	return tea.Tick(noteTTL, func(time.Time) tea.Msg { return noteExpiredMsg{seq: seq} })
}

func (m appModel) createTaskCmd(in dispatch.NewTask) tea.Cmd {
	ctx, d, board := m.ctx, m.disp, m.ctrl.Board()
	return func() tea.Msg {
		_, err := d.CreateTask(ctx, board, in)
		return actionDoneMsg{outcome: dispatch.Outcome{Action: dispatch.ActionCreate, Err: err}}
	}
}

func (m appModel) setStatusCmd(id string, status model.Status) tea.Cmd {
	ctx, d, board := m.ctx, m.disp, m.ctrl.Board()
	return func() tea.Msg {
		err := d.SetStatus(ctx, board, id, status)
		return actionDoneMsg{outcome: dispatch.Outcome{Action: dispatch.ActionSetStatus, Status: status, Err: err}}
	}
}

func (m appModel) deleteTaskCmd(id string) tea.Cmd {
	ctx, d, board := m.ctx, m.disp, m.ctrl.Board()
	return func() tea.Msg {
		err := d.DeleteTask(ctx, board, id)
		return actionDoneMsg{outcome: dispatch.Outcome{Action: dispatch.ActionDelete, Err: err}}
	}
}

func (m appModel) clearDoneCmd() tea.Cmd {
	ctx, d, board := m.ctx, m.disp, m.ctrl.Board()
	return func() tea.Msg {
		res, err := d.ClearDone(ctx, board)
		return actionDoneMsg{outcome: dispatch.Outcome{Action: dispatch.ActionClearDone, Removed: res.Removed, Err: err}}
	}
}
