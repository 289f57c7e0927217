package widgets

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

var (
	tableHeader   = lipgloss.NewStyle().Foreground(lipgloss.Color("#a6adc8")).Bold(true)
	tableSelected = lipgloss.NewStyle().Background(lipgloss.Color("#313244")).Foreground(lipgloss.Color("#89b4fa")).Bold(true)
)

// Column describes one table column. Width 0 shares the remaining space.
type Column struct {
	Title string
	Width int
	Right bool
}

// Table renders rows under a header, scrolled so Cursor stays visible.
// Cursor < 0 disables the highlight.
type Table struct {
	Columns []Column
	Rows    [][]string
	Cursor  int
	Empty   string
}

func (t Table) Render(width, height int) string {
	if width <= 0 || height <= 0 || len(t.Columns) == 0 {
		return ""
	}
	widths := t.columnWidths(width)
	header := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		header[i] = cell(c.Title, widths[i], c.Right)
	}
	lines := []string{tableHeader.Render(strings.Join(header, " "))}
	if len(t.Rows) == 0 {
		if t.Empty != "" {
			lines = append(lines, t.Empty)
		}
		return clip(strings.Join(lines, "\n"), width, height)
	}

	visible := max(1, height-1)
	start := 0
	if t.Cursor >= visible {
		start = t.Cursor - visible + 1
	}
	for r := start; r < len(t.Rows) && r < start+visible; r++ {
		parts := make([]string, len(t.Columns))
		for i, c := range t.Columns {
			v := ""
			if i < len(t.Rows[r]) {
				v = t.Rows[r][i]
			}
			parts[i] = cell(v, widths[i], c.Right)
		}
		line := strings.Join(parts, " ")
		if r == t.Cursor {
			line = tableSelected.Render(ansi.Strip(line))
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func (t Table) columnWidths(width int) []int {
	widths := make([]int, len(t.Columns))
	fixed, flex := len(t.Columns)-1, 0
	for i, c := range t.Columns {
		if c.Width > 0 {
			widths[i] = c.Width
			fixed += c.Width
		} else {
			flex++
		}
	}
	if flex > 0 {
		share := max(4, (width-fixed)/flex)
		for i, c := range t.Columns {
			if c.Width == 0 {
				widths[i] = share
			}
		}
	}
	return widths
}

func cell(s string, width int, right bool) string {
	s = ansi.Truncate(s, width, "…")
	pad := width - ansi.StringWidth(s)
	if pad <= 0 {
		return s
	}
	if right {
		return strings.Repeat(" ", pad) + s
	}
	return s + strings.Repeat(" ", pad)
}
