package report

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// sanitize makes a string we don't control (process names) safe to print to
// a terminal and to measure: control characters and invalid bytes become '?'.
func sanitize(s string) string {
	clean := true
	for _, r := range s {
		if r == utf8.RuneError || unicode.IsControl(r) {
			clean = false
			break
		}
	}
	if clean {
		return s
	}
	return strings.Map(func(r rune) rune {
		if r == utf8.RuneError || unicode.IsControl(r) {
			return '?'
		}
		return r
	}, s)
}
