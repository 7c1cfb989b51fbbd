package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
)

func renderInputLine(bodyW int, inputView string) string {
	if bodyW < 10 {
		bodyW = 10
	}

	// A text input must stay on one visual line inside a modal; a stray newline or an overflow
	// from cursor styling would wrap and look like the input grew a line.
	inputView = strings.ReplaceAll(inputView, "\n", " ")
	inputView = strings.ReplaceAll(inputView, "\r", " ")

	line := lipgloss.PlaceHorizontal(
		bodyW,
		lipgloss.Left,
		" "+inputView+" ",
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceBackground(colorInputBg),
	)
	if xansi.StringWidth(line) > bodyW {
		// Terminate ANSI styling so a cut sequence cannot bleed into the border.
		line = xansi.Cut(line, 0, bodyW) + "\x1b[0m"
	}
	return line
}

// fitWidth pads or cuts s to exactly w cells.
func fitWidth(s string, w int) string {
	if w <= 0 {
		return ""
	}
	sw := xansi.StringWidth(s)
	switch {
	case sw < w:
		return s + strings.Repeat(" ", w-sw)
	case sw > w:
		return xansi.Truncate(s, w, "…")
	default:
		return s
	}
}
