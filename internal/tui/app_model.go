package tui

import (
	"context"
	"strings"

	"famjam-cli/internal/dispatch"
	"famjam-cli/internal/feed"
	"famjam-cli/internal/model"
	"famjam-cli/internal/projection"
	"famjam-cli/internal/session"
	"famjam-cli/internal/store"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	log "github.com/sirupsen/logrus"
)

type appModel struct {
	ctx    context.Context
	ctrl   *session.Controller
	disp   *dispatch.Dispatcher
	prefs  store.PrefsStore
	logger log.FieldLogger

	// name is the display name written as createdBy.
	name string

	width  int
	height int

	list list.Model
	view session.View

	modal        modalKind
	inputs       []textinput.Model
	inputFocus   int
	confirmFocus confirmModalFocus
	// pendingTask is the task a delete confirmation applies to.
	pendingTask model.Task

	note      string
	noteIsErr bool
	noteSeq   int
}

func newAppModel(ctx context.Context, opts Options) appModel {
	logger := opts.Logger
	if logger == nil {
		logger = log.StandardLogger()
	}
	p, err := opts.Prefs.Load()
	if err != nil {
		logger.WithError(err).Warn("load preferences")
		p = &store.Prefs{}
	}

	m := appModel{
		ctx:    ctx,
		disp:   dispatch.New(opts.Store, logger),
		prefs:  opts.Prefs,
		logger: logger,
		name:   p.Name,
		list:   newTaskList(),
	}
	m.ctrl = session.New(opts.Store, nil, session.Options{
		Prefs:  opts.Prefs,
		Logger: logger,
		Filter: projection.Filter(p.StatusFilter),
		Sort:   projection.Sort(p.SortBy),
	})

	board := p.Board
	if strings.TrimSpace(opts.Board) != "" {
		board = opts.Board
	}
	// Join on startup when a board is remembered; otherwise render the idle placeholder.
	m.ctrl.Join(board)
	m.syncView()
	return m
}

func (m appModel) Init() tea.Cmd {
	return waitForFeed(m.ctrl.Events())
}

// waitForFeed blocks on the subscription channel inside a tea.Cmd goroutine.
func waitForFeed(ch <-chan feed.Event) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return feedClosedMsg{}
		}
		return feedEventMsg{ev: ev}
	}
}

func (m *appModel) syncView() {
	m.view = m.ctrl.LastView()
	setTasks(&m.list, m.view.Tasks)
}

func (m *appModel) resizeList() {
	// header(2) + footer(1) + note(1) + help(1) + spacing
	h := m.height - 6
	if h < 3 {
		h = 3
	}
	m.list.SetSize(m.width, h)
}

func newInput(placeholder, value string, limit int) textinput.Model {
	in := textinput.New()
	in.Prompt = ""
	in.Placeholder = placeholder
	in.CharLimit = limit
	in.SetValue(value)
	return in
}

func (m *appModel) openModal(kind modalKind, inputs ...textinput.Model) {
	m.modal = kind
	m.inputs = inputs
	m.inputFocus = 0
	m.confirmFocus = confirmFocusConfirm
	m.focusInput()
}

func (m *appModel) focusInput() {
	for i := range m.inputs {
		if i == m.inputFocus {
			m.inputs[i].Focus()
		} else {
			m.inputs[i].Blur()
		}
	}
}

func (m *appModel) closeModal() {
	m.modal = modalNone
	m.inputs = nil
	m.pendingTask = model.Task{}
}
