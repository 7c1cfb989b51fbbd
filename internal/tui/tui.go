package tui

import (
	"context"

	"famjam-cli/internal/remote"
	"famjam-cli/internal/store"

	tea "github.com/charmbracelet/bubbletea"
	log "github.com/sirupsen/logrus"
)

type Options struct {
	Store  remote.Store
	Prefs  store.PrefsStore
	Logger log.FieldLogger
	// Board overrides the remembered board on startup.
	Board string
}

// Run starts the interactive board UI and blocks until the user quits.
func Run(ctx context.Context, opts Options) error {
	applyThemePreference()
	applyColorProfilePreference()

	m := newAppModel(ctx, opts)
	defer m.ctrl.Close()
	_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}
