package widgets

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

var (
	paneBorder  = lipgloss.Color("#6c7086")
	paneFocused = lipgloss.Color("#89b4fa")
	paneText    = lipgloss.Color("#cdd6f4")
)

// Pane is a titled rounded box. Content is clipped to the inner area.
type Pane struct {
	Title   string
	Content string
	Focused bool
}

func (p Pane) Render(width, height int) string {
	if width <= 0 || height <= 0 {
		return ""
	}
	width = max(width, 4)
	height = max(height, 3)

	border := paneBorder
	if p.Focused {
		border = paneFocused
	}
	borderStyle := lipgloss.NewStyle().Foreground(border)
	titleStyle := lipgloss.NewStyle().Foreground(paneText).Bold(true)

	innerWidth := width - 2
	contentWidth := max(1, innerWidth-2)

	titleText := ""
	if t := strings.TrimSpace(p.Title); t != "" {
		titleText = " " + ansi.Truncate(t, max(1, innerWidth-3), "") + " "
	}
	dashes := max(0, innerWidth-ansi.StringWidth(titleText))
	leftDash := min(1, dashes)

	v := borderStyle.Render("│")
	top := borderStyle.Render("╭") +
		borderStyle.Render(strings.Repeat("─", leftDash)) +
		titleStyle.Render(titleText) +
		borderStyle.Render(strings.Repeat("─", dashes-leftDash)) +
		borderStyle.Render("╮")

	lines := splitLines(p.Content)
	rows := make([]string, 0, height)
	rows = append(rows, top)
	for i := 0; i < height-2; i++ {
		line := ""
		if i < len(lines) {
			line = lines[i]
		}
		rows = append(rows, v+" "+padRight(line, contentWidth)+" "+v)
	}
	rows = append(rows, borderStyle.Render("╰"+strings.Repeat("─", innerWidth)+"╯"))
	return strings.Join(rows, "\n")
}

func splitLines(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return strings.Split(s, "\n")
}
