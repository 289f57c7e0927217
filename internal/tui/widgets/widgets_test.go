package widgets

import (
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaneRendersExactSize(t *testing.T) {
	out := Pane{Title: "Conti", Content: "Checking  500,00 €"}.Render(30, 5)
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 5)
	for _, l := range lines {
		assert.Equal(t, 30, ansi.StringWidth(l))
	}
	assert.Contains(t, ansi.Strip(out), "Conti")
	assert.Contains(t, ansi.Strip(out), "Checking")
}

func TestStacksSplitSpace(t *testing.T) {
	assert.Equal(t, []int{4, 3, 3}, splitSizes(10, 3, nil))
	assert.Equal(t, []int{8, 2}, splitSizes(10, 2, []float64{4, 1}))

	out := HStack{Widgets: []Widget{Text("a"), Text("b")}, Gap: 1}.Render(9, 2)
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "a    b   ", lines[0])

	v := VStack{Widgets: []Widget{Text("top"), Text("bottom")}}.Render(10, 4)
	assert.Len(t, strings.Split(v, "\n"), 4)
}

func TestTableScrollsToCursor(t *testing.T) {
	tbl := Table{
		Columns: []Column{{Title: "Nome"}, {Title: "Saldo", Width: 8, Right: true}},
		Cursor:  5,
	}
	for i := 0; i < 6; i++ {
		tbl.Rows = append(tbl.Rows, []string{string(rune('a' + i)), "1"})
	}
	out := ansi.Strip(tbl.Render(30, 3))
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[1], "e"))
	assert.True(t, strings.HasPrefix(lines[2], "f"))

	empty := Table{Columns: tbl.Columns, Empty: "Nessun conto"}.Render(30, 3)
	assert.Contains(t, empty, "Nessun conto")
}

func TestRenderPopupKeepsBaseAround(t *testing.T) {
	base := strings.Repeat(strings.Repeat("x", 20)+"\n", 9) + strings.Repeat("x", 20)
	out := ansi.Strip(RenderPopup(base, "ok", 20, 10))
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 10)
	assert.Equal(t, strings.Repeat("x", 20), lines[0])
	assert.Contains(t, out, "ok")
}
