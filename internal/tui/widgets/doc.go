// Package widgets contains dumb render primitives.
//
// Allowed here:
// - stateless drawing/composition helpers (pane chrome, stacks, tables, popup overlay compositor)
//
// Not allowed here:
// - key handling, fetching, scope logic, or tab policy
package widgets

// Widget renders itself into a width x height cell area.
type Widget interface {
	Render(width, height int) string
}

// Text is a pre-rendered block.
type Text string

func (t Text) Render(width, height int) string {
	return clip(string(t), width, height)
}
