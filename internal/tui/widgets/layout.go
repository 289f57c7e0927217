package widgets

import (
	"math"
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// VStack splits the height between its children, by ratio when given.
type VStack struct {
	Widgets []Widget
	Ratios  []float64
}

func (v VStack) Render(width, height int) string {
	if len(v.Widgets) == 0 || width <= 0 || height <= 0 {
		return ""
	}
	heights := splitSizes(height, len(v.Widgets), v.Ratios)
	parts := make([]string, 0, len(v.Widgets))
	for i, w := range v.Widgets {
		if heights[i] <= 0 {
			continue
		}
		parts = append(parts, fit(w.Render(width, heights[i]), width, heights[i]))
	}
	return strings.Join(parts, "\n")
}

// HStack places its children side by side.
type HStack struct {
	Widgets []Widget
	Ratios  []float64
	Gap     int
}

func (h HStack) Render(width, height int) string {
	if len(h.Widgets) == 0 || width <= 0 || height <= 0 {
		return ""
	}
	gapTotal := max(0, h.Gap*(len(h.Widgets)-1))
	widths := splitSizes(max(1, width-gapTotal), len(h.Widgets), h.Ratios)
	cols := make([][]string, len(h.Widgets))
	for i, w := range h.Widgets {
		cols[i] = strings.Split(fit(w.Render(max(1, widths[i]), height), widths[i], height), "\n")
	}
	out := make([]string, height)
	gap := strings.Repeat(" ", h.Gap)
	for line := 0; line < height; line++ {
		row := make([]string, len(cols))
		for i := range cols {
			row[i] = cols[i][line]
		}
		out[line] = strings.Join(row, gap)
	}
	return strings.Join(out, "\n")
}

func splitSizes(total, n int, ratios []float64) []int {
	if n <= 0 {
		return nil
	}
	out := make([]int, n)
	if len(ratios) != n {
		for i := range out {
			out[i] = total / n
		}
		for i := 0; i < total%n; i++ {
			out[i]++
		}
		return out
	}
	sum := 0.0
	for _, r := range ratios {
		sum += math.Max(r, 0)
	}
	if sum == 0 {
		return splitSizes(total, n, nil)
	}
	used := 0
	for i, r := range ratios {
		out[i] = int(math.Floor(math.Max(r, 0) / sum * float64(total)))
		used += out[i]
	}
	for i := 0; used < total; i = (i + 1) % n {
		out[i]++
		used++
	}
	return out
}

func padRight(s string, width int) string {
	if width <= 0 {
		return ""
	}
	s = ansi.Truncate(s, width, "")
	if w := ansi.StringWidth(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}

func clip(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return ""
	}
	lines := strings.Split(s, "\n")
	if len(lines) > height {
		lines = lines[:height]
	}
	for i := range lines {
		lines[i] = ansi.Truncate(lines[i], width, "")
	}
	return strings.Join(lines, "\n")
}

// fit pads or clips s to exactly width x height cells.
func fit(s string, width, height int) string {
	lines := strings.Split(s, "\n")
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, "")
	}
	for i := range lines {
		lines[i] = padRight(lines[i], width)
	}
	return strings.Join(lines, "\n")
}
