package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// ApplyTheme adjusts the renderer for the configured theme. "mono" drops all
// color, "dark" and "light" pin the background detection, anything else
// leaves terminal detection alone.
func ApplyTheme(theme string) {
	switch theme {
	case "mono":
		lipgloss.SetColorProfile(termenv.Ascii)
	case "dark":
		lipgloss.SetHasDarkBackground(true)
	case "light":
		lipgloss.SetHasDarkBackground(false)
	}
}
