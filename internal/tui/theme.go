package tui

import (
	"os"
	"strconv"
	"strings"

	"famjam-cli/internal/model"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// The TUI must remain readable on both light and dark terminal backgrounds, so colors are
// adaptive and "faint" is only applied on dark backgrounds.

func ac(light, dark string) lipgloss.AdaptiveColor {
	return lipgloss.AdaptiveColor{Light: light, Dark: dark}
}

func faintIfDark(st lipgloss.Style) lipgloss.Style {
	if lipgloss.HasDarkBackground() {
		return st.Faint(true)
	}
	return st
}

var (
	colorMuted       lipgloss.TerminalColor = ac("240", "243")
	colorSelectedBg  lipgloss.TerminalColor = ac("#e9e9e9", "#262626")
	colorSelectedFg  lipgloss.TerminalColor = ac("235", "255")
	colorSurfaceBg   lipgloss.TerminalColor = ac("255", "235")
	colorSurfaceFg   lipgloss.TerminalColor = ac("235", "252")
	colorControlBg   lipgloss.TerminalColor = ac("252", "235")
	colorInputBg     lipgloss.TerminalColor = ac("254", "234")
	colorAccent      lipgloss.TerminalColor = ac("27", "62")
	colorAccentFg    lipgloss.TerminalColor = ac("255", "235")
	colorError       lipgloss.TerminalColor = ac("160", "203")
	colorStatusOpen  lipgloss.TerminalColor = ac("27", "75")
	colorStatusDoing lipgloss.TerminalColor = ac("130", "214")
	colorStatusDone  lipgloss.TerminalColor = ac("28", "114")
	colorPrioHigh    lipgloss.TerminalColor = ac("160", "203")
)

func styleMuted() lipgloss.Style {
	return faintIfDark(lipgloss.NewStyle().Foreground(colorMuted))
}

func styleHeader() lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
}

func styleError() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(colorError)
}

func styleStatus(s model.Status) lipgloss.Style {
	st := lipgloss.NewStyle().Bold(true)
	switch s {
	case model.StatusDoing:
		return st.Foreground(colorStatusDoing)
	case model.StatusDone:
		return st.Foreground(colorStatusDone)
	default:
		return st.Foreground(colorStatusOpen)
	}
}

func stylePriority(p model.Priority) lipgloss.Style {
	if p == model.PriorityHigh {
		return lipgloss.NewStyle().Foreground(colorPrioHigh).Bold(true)
	}
	return styleMuted()
}

// applyColorProfilePreference sets Lip Gloss's color profile for the interactive TUI.
//
// termenv.EnvColorProfile respects CLICOLOR/CLICOLOR_FORCE, which can disable colors in a TUI.
// Here only NO_COLOR is honored; otherwise the terminal's capabilities are followed.
func applyColorProfilePreference() {
	if strings.TrimSpace(os.Getenv("NO_COLOR")) != "" {
		lipgloss.SetColorProfile(termenv.Ascii)
		return
	}

	profile := termenv.ColorProfile()

	// Trust TERM/COLORTERM when they claim more than the detector found.
	term := strings.ToLower(strings.TrimSpace(os.Getenv("TERM")))
	colorterm := strings.ToLower(strings.TrimSpace(os.Getenv("COLORTERM")))
	if strings.Contains(colorterm, "truecolor") || strings.Contains(colorterm, "24bit") {
		if profile != termenv.Ascii {
			profile = termenv.TrueColor
		}
	} else if strings.Contains(term, "256color") && (profile == termenv.Ascii || profile == termenv.ANSI) {
		profile = termenv.ANSI256
	}

	lipgloss.SetColorProfile(profile)
}

// applyThemePreference configures background detection.
//
// Priority:
// 1) FAMJAM_TUI_THEME=light|dark|auto
// 2) COLORFGBG heuristic ("fg;bg")
func applyThemePreference() {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("FAMJAM_TUI_THEME"))) {
	case "light":
		lipgloss.SetHasDarkBackground(false)
		return
	case "dark":
		lipgloss.SetHasDarkBackground(true)
		return
	}

	if v := strings.TrimSpace(os.Getenv("COLORFGBG")); v != "" {
		parts := strings.Split(v, ";")
		if bg, err := strconv.Atoi(strings.TrimSpace(parts[len(parts)-1])); err == nil {
			lipgloss.SetHasDarkBackground(bg < 7)
		}
	}
}
