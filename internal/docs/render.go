package docs

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/styles"
)

// Styles accepted by Render.
var Styles = []string{styles.DarkStyle, styles.LightStyle, styles.NoTTYStyle, styles.AsciiStyle}

// Render formats markdown for a terminal of the given width.
// A fixed style is used; auto-detection can block on terminal queries.
func Render(md string, style string, width int) (string, error) {
	if width < 20 {
		width = 20
	}
	style = strings.ToLower(strings.TrimSpace(style))
	if style == "" {
		style = styles.DarkStyle
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", err
	}
	out, err := r.Render(md)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(out, "\n") + "\n", nil
}
