package report

import "github.com/mattn/go-runewidth"

// MinProgramWidth is the floor of the program column
const MinProgramWidth = 30

// State carries formatting decisions across every tick of one run so the
// columns do not jump between refreshes and the column header is printed
// only once. Its fields only grow or flip once.
type State struct {
	programWidth  int
	headerPrinted bool
	bare          bool
}

// NewState creates the state for a run
func NewState(bare bool) *State {
	return &State{
		programWidth: MinProgramWidth,
		bare:         bare,
	}
}

// ObserveProgramName widens the program column to fit name
func (s *State) ObserveProgramName(name string) {
	if w := runewidth.StringWidth(sanitize(name)); w > s.programWidth {
		s.programWidth = w
	}
}

// ProgramWidth returns the current width of the program column
func (s *State) ProgramWidth() int {
	return s.programWidth
}

// HeaderPrinted reports whether the column header has been written in this run
func (s *State) HeaderPrinted() bool {
	return s.headerPrinted
}

// Bare reports whether the run renders machine-friendly output
func (s *State) Bare() bool {
	return s.bare
}

// claimHeader returns true exactly once per run
func (s *State) claimHeader() bool {
	if s.headerPrinted {
		return false
	}
	s.headerPrinted = true
	return true
}
