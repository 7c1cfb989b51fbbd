package cli

import (
	"famjam-cli/internal/boardid"

	"github.com/spf13/cobra"
)

func newNormalizeCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "normalize <code>",
		Short: "Print the canonical form of a board code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b := boardid.Normalize(args[0])
			hints := []string{}
			if b != "" {
				hints = append(hints, "famjam watch "+b)
			}
			return writeOut(cmd, app, map[string]any{
				"data":   map[string]any{"input": args[0], "board": b},
				"_hints": hints,
			})
		},
	}
}
