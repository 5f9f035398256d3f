package tui

import (
	"strings"

	"orders_console/internal/orders"

	"github.com/charmbracelet/lipgloss"
)

var (
	brandColor  = lipgloss.Color("#2471C8")
	mutedColor  = lipgloss.Color("#7D7D7D")
	errorColor  = lipgloss.Color("#EF4444")
	headerColor = lipgloss.Color("#E8EAED")

	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(brandColor)
	mutedStyle   = lipgloss.NewStyle().Foreground(mutedColor)
	errorStyle   = lipgloss.NewStyle().Foreground(errorColor)
	labelStyle   = lipgloss.NewStyle().Bold(true)
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(mutedColor).Background(headerColor)
	panelStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(brandColor).Padding(1, 2)
)

func badge(code string) string {
	b := orders.StatusBadge(code)
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(lipgloss.Color(b.Color)).
		Bold(true).
		Padding(0, 1).
		Render(b.Label)
}

// cell pads or truncates s to exactly width columns.
func cell(s string, width int) string {
	if lipgloss.Width(s) > width {
		runes := []rune(s)
		for len(runes) > 0 && lipgloss.Width(string(runes))+1 > width {
			runes = runes[:len(runes)-1]
		}
		s = string(runes) + "…"
	}
	return s + strings.Repeat(" ", max(width-lipgloss.Width(s), 0))
}
