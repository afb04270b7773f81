package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	appStyle      = lipgloss.NewStyle().Padding(1, 2)
	titleStyle    = lipgloss.NewStyle().Bold(true)
	helpStyle     = lipgloss.NewStyle().Faint(true)
	errorStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	okStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	selectedStyle = lipgloss.NewStyle().Bold(true).Reverse(true)
)

const divider = "──────────────────────────────────────────"

// renderPage frames a screen body with its title and key help.
func renderPage(title, body, help string) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n")
	b.WriteString(divider)
	b.WriteString("\n\n")
	if strings.TrimSpace(body) == "" {
		body = "-"
	}
	b.WriteString(body)
	b.WriteString("\n\n")
	b.WriteString(divider)
	b.WriteString("\n")
	if help != "" {
		b.WriteString(helpStyle.Render(help + " │ ctrl+o: menu │ ctrl+c: quit"))
	} else {
		b.WriteString(helpStyle.Render("ctrl+o: menu │ ctrl+c: quit"))
	}
	return b.String()
}
