package cli

import (
	"errors"
	"strings"

	"famjam-cli/internal/boardid"
	"famjam-cli/internal/dispatch"
	"famjam-cli/internal/model"
	"famjam-cli/internal/projection"
	"famjam-cli/internal/remote"

	"github.com/spf13/cobra"
)

func newTasksCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tasks",
		Aliases: []string{"task"},
		Short:   "Read and change tasks on a board",
	}
	cmd.AddCommand(newTasksListCmd(app))
	cmd.AddCommand(newTasksAddCmd(app))
	cmd.AddCommand(newTasksStatusCmd(app))
	cmd.AddCommand(newTasksRmCmd(app))
	cmd.AddCommand(newTasksClearDoneCmd(app))
	return cmd
}

// resolveBoard returns the normalized --board value, or the remembered board.
func resolveBoard(app *App, flag string) (string, error) {
	if b := boardid.Normalize(flag); b != "" {
		return b, nil
	}
	p, err := app.prefsStore().Load()
	if err != nil {
		return "", err
	}
	if b := boardid.Normalize(p.Board); b != "" {
		return b, nil
	}
	return "", errNoBoard
}

func addBoardFlag(cmd *cobra.Command, board *string) {
	cmd.Flags().StringVar(board, "board", "", "Board code (default: last joined board)")
}

func newTasksListCmd(app *App) *cobra.Command {
	var board, filter, sortBy string

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List the tasks of a board",
		Example: strings.TrimSpace(`
famjam tasks list --board smith-family
famjam tasks list --filter done --sort priority --pretty
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := resolveBoard(app, board)
			if err != nil {
				return writeErr(cmd, err)
			}
			f, err := parseFilterFlag(filter)
			if err != nil {
				return writeErr(cmd, err)
			}
			s, err := parseSortFlag(sortBy)
			if err != nil {
				return writeErr(cmd, err)
			}

			st, err := app.openStore(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			defer st.Close()

			docs, err := st.Query(cmd.Context(), b, remote.Where{})
			if err != nil {
				return writeErr(cmd, err)
			}
			tasks := make([]model.Task, 0, len(docs))
			for _, d := range docs {
				tasks = append(tasks, model.Decode(d.ID, d.Fields))
			}
			shown := projection.Project(tasks, f, s)

			hints := []string{"famjam tasks add --board " + b + " --title \"...\""}
			if len(shown) > 0 {
				hints = append(hints, "famjam tasks status "+shown[0].ID+" doing --board "+b)
			}
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{
					"board":  b,
					"filter": f,
					"sort":   s,
					"total":  len(tasks),
					"tasks":  shown,
				},
				"_hints": hints,
			})
		},
	}
	addBoardFlag(cmd, &board)
	cmd.Flags().StringVar(&filter, "filter", "", "Status filter (all|open|doing|done)")
	cmd.Flags().StringVar(&sortBy, "sort", "", "Sort order (created|dueDate|priority)")
	return cmd
}

func newTasksAddCmd(app *App) *cobra.Command {
	var board string
	var in dispatch.NewTask

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a task",
		Example: strings.TrimSpace(`
famjam tasks add --title "Buy milk"
famjam tasks add --board smith-family --title "Mow lawn" --assignee Sam --due 2025-06-01 --priority high
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := resolveBoard(app, board)
			if err != nil {
				return writeErr(cmd, err)
			}
			if !cmd.Flags().Changed("by") {
				p, err := app.prefsStore().Load()
				if err != nil {
					return writeErr(cmd, err)
				}
				in.CreatedBy = p.Name
			}
			// Bad input never needs a store connection.
			if err := in.Validate(); err != nil {
				return writeErr(cmd, errAction(dispatch.ActionCreate, err))
			}

			st, err := app.openStore(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			defer st.Close()

			id, err := dispatch.New(st, app.logger).CreateTask(cmd.Context(), b, in)
			if err != nil {
				return writeErr(cmd, errAction(dispatch.ActionCreate, err))
			}
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{
					"id":    id,
					"board": b,
					"note":  dispatch.Outcome{Action: dispatch.ActionCreate}.Note(),
				},
				"_hints": []string{
					"famjam tasks list --board " + b,
					"famjam tasks status " + id + " doing --board " + b,
				},
			})
		},
	}
	addBoardFlag(cmd, &board)
	cmd.Flags().StringVar(&in.Title, "title", "", "Task title (required)")
	cmd.Flags().StringVar(&in.Assignee, "assignee", "", "Who should do it")
	cmd.Flags().StringVar(&in.DueDate, "due", "", "Due date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&in.Priority, "priority", "", "Priority (high|med|low); default med")
	cmd.Flags().StringVar(&in.CreatedBy, "by", "", "Display name recorded as creator (default: remembered name)")
	return cmd
}

func newTasksStatusCmd(app *App) *cobra.Command {
	var board string

	cmd := &cobra.Command{
		Use:   "status <task-id> <open|doing|done>",
		Short: "Set a task's status",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := resolveBoard(app, board)
			if err != nil {
				return writeErr(cmd, err)
			}
			id := strings.TrimSpace(args[0])
			status, ok := model.ParseStatus(args[1])
			if !ok {
				return writeErr(cmd, errAction(dispatch.ActionSetStatus, dispatch.InvalidInputError{Field: "status", Value: args[1]}))
			}

			st, err := app.openStore(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			defer st.Close()

			if err := dispatch.New(st, app.logger).SetStatus(cmd.Context(), b, id, status); err != nil {
				if errors.Is(err, remote.ErrNotFound) {
					return writeErr(cmd, taskNotFoundError{board: b, id: id})
				}
				return writeErr(cmd, errAction(dispatch.ActionSetStatus, err))
			}
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{
					"id":     id,
					"board":  b,
					"status": status,
					"note":   dispatch.Outcome{Action: dispatch.ActionSetStatus, Status: status}.Note(),
				},
				"_hints": []string{"famjam tasks list --board " + b},
			})
		},
	}
	addBoardFlag(cmd, &board)
	return cmd
}

func newTasksRmCmd(app *App) *cobra.Command {
	var board string

	cmd := &cobra.Command{
		Use:     "rm <task-id>",
		Aliases: []string{"delete"},
		Short:   "Delete a task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := resolveBoard(app, board)
			if err != nil {
				return writeErr(cmd, err)
			}
			id := strings.TrimSpace(args[0])

			st, err := app.openStore(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			defer st.Close()

			if err := dispatch.New(st, app.logger).DeleteTask(cmd.Context(), b, id); err != nil {
				return writeErr(cmd, errAction(dispatch.ActionDelete, err))
			}
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{
					"id":    id,
					"board": b,
					"note":  dispatch.Outcome{Action: dispatch.ActionDelete}.Note(),
				},
			})
		},
	}
	addBoardFlag(cmd, &board)
	return cmd
}

func newTasksClearDoneCmd(app *App) *cobra.Command {
	var board string

	cmd := &cobra.Command{
		Use:   "clear-done",
		Short: "Delete every done task on a board",
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := resolveBoard(app, board)
			if err != nil {
				return writeErr(cmd, err)
			}

			st, err := app.openStore(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			defer st.Close()

			res, err := dispatch.New(st, app.logger).ClearDone(cmd.Context(), b)
			if err != nil && !errors.Is(err, dispatch.ErrNothingToClear) {
				return writeErr(cmd, errAction(dispatch.ActionClearDone, err))
			}
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{
					"board":   b,
					"removed": res.Removed,
					"note":    dispatch.Outcome{Action: dispatch.ActionClearDone, Removed: res.Removed, Err: err}.Note(),
				},
			})
		},
	}
	addBoardFlag(cmd, &board)
	return cmd
}
