package main

import (
	"os"
	"strings"

	"famjam-cli/internal/cli"
)

// boardShortcut reports whether s is an "@BOARD" token and returns the board part.
func boardShortcut(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "@") {
		return "", false
	}
	b := strings.TrimPrefix(s, "@")
	return b, strings.TrimSpace(b) != ""
}

func rewriteBoardShortcutArgs(argv []string) []string {
	// Convenience: `famjam @SMITH-FAMILY` works like `famjam watch SMITH-FAMILY`.
	//
	// Persistent flags may come first (`famjam --backend redis @X`), so look for the first
	// positional token rather than argv[1].
	if len(argv) < 2 {
		return argv
	}

	valueFlags := map[string]bool{
		"--config":     true,
		"--backend":    true,
		"--redis-addr": true,
		"--sqlite":     true,
		"--log-level":  true,
	}

	for i := 1; i < len(argv); i++ {
		a := strings.TrimSpace(argv[i])
		if a == "" {
			continue
		}
		if a == "--" {
			// Cobra stops looking for subcommands after "--".
			return argv
		}
		if strings.HasPrefix(a, "-") {
			if !strings.Contains(a, "=") && valueFlags[a] {
				i++
			}
			continue
		}

		board, ok := boardShortcut(a)
		if !ok {
			return argv
		}
		out := make([]string, 0, len(argv)+1)
		out = append(out, argv[:i]...)
		out = append(out, "watch", board)
		out = append(out, argv[i+1:]...)
		return out
	}

	return argv
}

func main() {
	os.Args = rewriteBoardShortcutArgs(os.Args)

	cmd := cli.NewRootCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
