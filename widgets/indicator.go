package widgets

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// RenderLED renders a single colored indicator
func RenderLED(symbol rune, color lipgloss.Color) string {
	return lipgloss.NewStyle().Foreground(color).Render(string(symbol))
}

// RenderBar renders value/max as a horizontal bar width cells wide
func RenderBar(value, max, width int, full, empty rune, color lipgloss.Color) string {
	if width <= 0 {
		return ""
	}
	filled := 0
	if max > 0 {
		filled = value * width / max
	}
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}

	bar := lipgloss.NewStyle().Foreground(color).Render(strings.Repeat(string(full), filled))
	return bar + strings.Repeat(string(empty), width-filled)
}
