package cli

import (
	"strings"

	"famjam-cli/internal/boardid"
	"famjam-cli/internal/store"

	"github.com/spf13/cobra"
)

func newPrefsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prefs",
		Short: "Show or change remembered preferences (board, name, filter, sort)",
	}
	cmd.AddCommand(newPrefsShowCmd(app))
	cmd.AddCommand(newPrefsSetCmd(app))
	return cmd
}

func newPrefsShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print remembered preferences",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := app.prefsStore().Load()
			if err != nil {
				return writeErr(cmd, err)
			}
			hints := []string{}
			if p.Board == "" {
				hints = append(hints, "famjam watch <board>")
			}
			if p.Name == "" {
				hints = append(hints, "famjam prefs set --name \"...\"")
			}
			return writeOut(cmd, app, map[string]any{"data": p, "_hints": hints})
		},
	}
}

func newPrefsSetCmd(app *App) *cobra.Command {
	var board, name, filter, sortBy string

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Change remembered preferences",
		Example: strings.TrimSpace(`
famjam prefs set --name Alex
famjam prefs set --filter open --sort priority
famjam prefs set --board ""   # forget the board
`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			f, err := parseFilterFlag(filter)
			if err != nil {
				return writeErr(cmd, err)
			}
			s, err := parseSortFlag(sortBy)
			if err != nil {
				return writeErr(cmd, err)
			}

			ps := app.prefsStore()
			err = ps.Update(func(p *store.Prefs) {
				if flags.Changed("board") {
					p.Board = boardid.Normalize(board)
				}
				if flags.Changed("name") {
					p.Name = strings.TrimSpace(name)
				}
				if flags.Changed("filter") {
					p.StatusFilter = string(f)
				}
				if flags.Changed("sort") {
					p.SortBy = string(s)
				}
			})
			if err != nil {
				return writeErr(cmd, err)
			}
			p, err := ps.Load()
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": p})
		},
	}
	cmd.Flags().StringVar(&board, "board", "", "Board to join on next start")
	cmd.Flags().StringVar(&name, "name", "", "Display name recorded on new tasks")
	cmd.Flags().StringVar(&filter, "filter", "", "Status filter (all|open|doing|done)")
	cmd.Flags().StringVar(&sortBy, "sort", "", "Sort order (created|dueDate|priority)")
	return cmd
}
