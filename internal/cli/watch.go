package cli

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"famjam-cli/internal/boardid"
	"famjam-cli/internal/format"
	"famjam-cli/internal/session"

	"github.com/spf13/cobra"
)

func newWatchCmd(app *App) *cobra.Command {
	var filter string
	var sortBy string
	var once bool

	cmd := &cobra.Command{
		Use:   "watch [board]",
		Short: "Join a board and print one JSON view per change",
		Long: strings.TrimSpace(`
Join a board and stream its projected view as JSON lines until interrupted.

Every line is a complete view (state, filter, sort, tasks, footer). The joined board,
filter and sort are remembered the same way the TUI remembers them.
`),
		Example: strings.TrimSpace(`
famjam watch smith-family
famjam watch --filter open --sort dueDate
famjam @SMITH-FAMILY --once
`),
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ps := app.prefsStore()
			p, err := ps.Load()
			if err != nil {
				return writeErr(cmd, err)
			}
			board := p.Board
			if len(args) == 1 {
				board = args[0]
			}
			if boardid.Normalize(board) == "" {
				return writeErr(cmd, errNoBoard)
			}
			if !cmd.Flags().Changed("filter") {
				filter = p.StatusFilter
			}
			if !cmd.Flags().Changed("sort") {
				sortBy = p.SortBy
			}
			f, err := parseFilterFlag(filter)
			if err != nil {
				return writeErr(cmd, err)
			}
			s, err := parseSortFlag(sortBy)
			if err != nil {
				return writeErr(cmd, err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			st, err := app.openStore(ctx)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer st.Close()

			ctx, cancel := context.WithCancel(ctx)
			defer cancel()

			lw := format.NewLineWriter(cmd.OutOrStdout())
			var ctrl *session.Controller
			var outErr, failed error
			render := session.RendererFunc(func(v session.View) {
				switch {
				case v.State == session.Failed:
					failed = watchFailedError{board: v.Board, err: ctrl.State().Err}
					cancel()
					return
				case once && v.State == session.Connecting:
					// Connecting frames are noise for --once consumers.
					return
				}
				if outErr == nil {
					outErr = lw.Write(v)
				}
				if outErr != nil || (once && v.State == session.Connected) {
					cancel()
				}
			})
			ctrl = session.New(st, render, session.Options{
				Prefs:  ps,
				Logger: app.logger,
				Filter: f,
				Sort:   s,
			})
			ctrl.Join(board)
			_ = ctrl.Run(ctx, nil)

			switch {
			case failed != nil:
				return writeErr(cmd, failed)
			case outErr != nil:
				return outErr
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&filter, "filter", "", "Status filter (all|open|doing|done); default: remembered")
	cmd.Flags().StringVar(&sortBy, "sort", "", "Sort order (created|dueDate|priority); default: remembered")
	cmd.Flags().BoolVar(&once, "once", false, "Exit after the first snapshot")
	return cmd
}
