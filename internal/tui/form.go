package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// field is one labelled text input of a form.
type field struct {
	key   string
	label string
	input textinput.Model
}

func newField(key, label, value, placeholder string) field {
	in := textinput.New()
	in.Prompt = ""
	in.Placeholder = placeholder
	in.CharLimit = 120
	in.Cursor.SetMode(cursor.CursorStatic)
	in.SetValue(value)
	return field{key: key, label: label, input: in}
}

func newPasswordField(key, label string) field {
	f := newField(key, label, "", "")
	f.input.EchoMode = textinput.EchoPassword
	f.input.EchoCharacter = '•'
	return f
}

func (f field) value() string { return strings.TrimSpace(f.input.Value()) }

// fieldSet moves focus between inputs.
type fieldSet struct {
	fields []field
	focus  int
}

func newFieldSet(fields ...field) fieldSet {
	fs := fieldSet{fields: fields}
	fs.setFocus(0)
	return fs
}

func (fs *fieldSet) setFocus(i int) {
	if len(fs.fields) == 0 {
		return
	}
	fs.focus = (i + len(fs.fields)) % len(fs.fields)
	for j := range fs.fields {
		if j == fs.focus {
			fs.fields[j].input.Focus()
		} else {
			fs.fields[j].input.Blur()
		}
	}
}

func (fs *fieldSet) next() { fs.setFocus(fs.focus + 1) }
func (fs *fieldSet) prev() { fs.setFocus(fs.focus - 1) }

func (fs *fieldSet) update(msg tea.Msg) tea.Cmd {
	if len(fs.fields) == 0 {
		return nil
	}
	var cmd tea.Cmd
	fs.fields[fs.focus].input, cmd = fs.fields[fs.focus].input.Update(msg)
	return cmd
}

func (fs fieldSet) value(key string) string {
	for _, f := range fs.fields {
		if f.key == key {
			return f.value()
		}
	}
	return ""
}

func (fs fieldSet) focused() string {
	if len(fs.fields) == 0 {
		return ""
	}
	return fs.fields[fs.focus].key
}

func (fs fieldSet) view(errs map[string]string) []string {
	lines := make([]string, 0, len(fs.fields)*2)
	for i, f := range fs.fields {
		label := labelStyle.Render(f.label)
		if i == fs.focus && f.input.Focused() {
			label = focusStyle.Render(f.label)
		}
		lines = append(lines, label+" "+f.input.View())
		if msg := errs[f.key]; msg != "" {
			lines = append(lines, strings.Repeat(" ", 15)+errorStyle.Render(msg))
		}
	}
	return lines
}

// choice is a cycling selector over fetched options.
type choice struct {
	label   string
	options []option
	index   int
}

type option struct {
	id   int64
	name string
}

func newChoice(label string, opts []option, selected int64) choice {
	c := choice{label: label, options: opts}
	c.selectID(selected)
	return c
}

func (c *choice) selectID(id int64) {
	for i, o := range c.options {
		if o.id == id {
			c.index = i
			return
		}
	}
	c.index = 0
}

func (c *choice) move(delta int) {
	if len(c.options) == 0 {
		return
	}
	c.index = (c.index + delta + len(c.options)) % len(c.options)
}

func (c choice) selected() option {
	if len(c.options) == 0 {
		return option{}
	}
	return c.options[c.index]
}

func (c choice) view(focused bool) string {
	label := labelStyle.Render(c.label)
	if focused {
		label = focusStyle.Render(c.label)
	}
	name := c.selected().name
	if name == "" {
		name = "-"
	}
	return label + " ‹ " + name + " ›"
}
