package report

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// Align is the side a cell is padded away from
type Align int

const (
	AlignLeft Align = iota
	AlignRight
)

// ColumnSpec defines a column's properties
type ColumnSpec struct {
	Header string
	Width  int    // Minimum width, cells are never truncated
	Align  Align  // Side the text sticks to
	Lead   string // Written before the cell
}

// Layout is the set of column specs for one tick
type Layout struct {
	Port    ColumnSpec
	Program ColumnSpec
	PID     ColumnSpec

	// Trailing cells, one of which is picked per row
	ServiceAndPeer []ColumnSpec
	ServiceOnly    []ColumnSpec
	PeerOnly       []ColumnSpec
	Bare           []ColumnSpec
	Header         []ColumnSpec
}

const (
	portWidth = 6
	pidWidth  = 6
)

// newLayout builds the column specs for the given program column width
func newLayout(programWidth int) Layout {
	return Layout{
		Port:    ColumnSpec{Header: "Port:", Width: portWidth},
		Program: ColumnSpec{Header: "Program", Width: programWidth, Lead: " "},
		PID:     ColumnSpec{Header: "PID", Width: pidWidth, Lead: " "},

		ServiceAndPeer: []ColumnSpec{
			{Width: 10},
			{Width: 40, Align: AlignRight, Lead: " "},
		},
		ServiceOnly: []ColumnSpec{{Width: 20}},
		PeerOnly:    []ColumnSpec{{Width: 40, Align: AlignRight}},
		Bare:        []ColumnSpec{{Lead: " "}},
		Header:      []ColumnSpec{{Header: "Svc Name / Foreign Addr", Width: 20, Align: AlignRight, Lead: " "}},
	}
}

// leading returns the port, program and pid specs
func (l Layout) leading() []ColumnSpec {
	return []ColumnSpec{l.Port, l.Program, l.PID}
}

// headerRow renders the column titles
func (l Layout) headerRow() string {
	specs := append(l.leading(), l.Header...)
	values := make([]string, len(specs))
	for i, spec := range specs {
		values[i] = spec.Header
	}
	return formatRow(specs, values)
}

// formatRow pads each value to its column and joins them
func formatRow(specs []ColumnSpec, values []string) string {
	var b strings.Builder
	for i, spec := range specs {
		b.WriteString(spec.Lead)
		if i < len(values) {
			b.WriteString(pad(values[i], spec))
		} else {
			b.WriteString(pad("", spec))
		}
	}
	return b.String()
}

// pad pads a string to the column width by display width
func pad(s string, spec ColumnSpec) string {
	if spec.Align == AlignRight {
		return runewidth.FillLeft(s, spec.Width)
	}
	return runewidth.FillRight(s, spec.Width)
}

// center pads s on both sides with fill up to width. When the padding is odd
// the extra cell goes where Python's str.center puts it, so output matches
// the tool this report replaces.
func center(s string, width int, fill string) string {
	marg := width - runewidth.StringWidth(s)
	if marg <= 0 {
		return s
	}
	left := marg/2 + (marg & width & 1)
	return strings.Repeat(fill, left) + s + strings.Repeat(fill, marg-left)
}
