// Package ports turns raw connection records into the listening and
// non-listening buckets of the report, filtered and sorted.
package ports

import (
	"openports/netstat"
	"openports/process"
)

// UnknownProgram is displayed in place of a name that could not be resolved
const UnknownProgram = "<unknown>"

// Status is the report bucket of a connection. Every OS state other than
// LISTEN collapses into StatusOther.
type Status int

const (
	StatusOther Status = iota
	StatusListening
)

func (s Status) String() string {
	if s == StatusListening {
		return "LISTENING"
	}
	return "NON-LISTENING"
}

// Entry is one report row
type Entry struct {
	Port    uint16
	PID     process.ProcessID
	Program string // empty when unresolved
	Status  Status
	Foreign *netstat.Addr // only set for non-listening connections with a peer
}

// ProgramName returns the program name, or UnknownProgram if it was not resolved
func (e Entry) ProgramName() string {
	return displayName(e.Program)
}

func displayName(program string) string {
	if program == "" {
		return UnknownProgram
	}
	return program
}

func newEntry(c netstat.Connection, program string) Entry {
	e := Entry{
		Port:    c.Local.Port,
		PID:     c.PID,
		Program: program,
		Status:  StatusOther,
	}
	if c.Listening() {
		e.Status = StatusListening
		return e
	}
	if c.Remote != nil {
		foreign := *c.Remote
		e.Foreign = &foreign
	}
	return e
}
