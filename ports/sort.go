package ports

import (
	"sort"
	"strings"
)

// SortKey selects the primary ordering of a section
type SortKey string

const (
	SortPID     SortKey = "PID"
	SortPort    SortKey = "Port"
	SortProgram SortKey = "Program"
)

// SortKeys lists the accepted keys in display order
var SortKeys = []SortKey{SortPID, SortPort, SortProgram}

// ParseSortKey matches s case-insensitively against the known keys
func ParseSortKey(s string) (SortKey, bool) {
	for _, k := range SortKeys {
		if strings.EqualFold(s, string(k)) {
			return k, true
		}
	}
	return "", false
}

// Sorted holds both sections in display order
type Sorted struct {
	Listening    []Entry
	NonListening []Entry
}

// Sort orders both buckets by key, breaking ties by ascending port. An
// unrecognised key sorts by port.
func Sort(r Result, key SortKey) Sorted {
	return Sorted{
		Listening:    sortEntries(r.Listening, key),
		NonListening: sortEntries(r.NonListening, key),
	}
}

func sortEntries(m map[uint16]Entry, key SortKey) []Entry {
	out := make([]Entry, 0, len(m))
	for _, e := range m {
		out = append(out, e)
	}

	var primary func(a, b Entry) int
	switch key {
	case SortPID:
		primary = func(a, b Entry) int { return int(a.PID) - int(b.PID) }
	case SortProgram:
		// unresolved names compare as "" and so come first
		primary = func(a, b Entry) int { return strings.Compare(a.Program, b.Program) }
	default:
		primary = func(a, b Entry) int { return 0 }
	}

	sort.Slice(out, func(i, j int) bool {
		if c := primary(out[i], out[j]); c != 0 {
			return c < 0
		}
		return out[i].Port < out[j].Port
	})
	return out
}
