package ports

import (
	"context"
	"fmt"
	"regexp"

	"openports/netstat"
	"openports/process"
)

// FilterPolicy decides what a malformed filter expression does to a run
type FilterPolicy int

const (
	// FilterPermissive reports the error and renders the tick unfiltered
	FilterPermissive FilterPolicy = iota
	// FilterStrict aborts the run
	FilterStrict
)

// FilterError is returned for a filter expression that does not compile
type FilterError struct {
	Expr string
	Err  error
}

func (e *FilterError) Error() string {
	return fmt.Sprintf("invalid filter expression %q: %v", e.Expr, e.Err)
}

func (e *FilterError) Unwrap() error {
	return e.Err
}

// CompileFilter compiles expr. An empty expression means no filter and yields (nil, nil).
func CompileFilter(expr string) (*regexp.Regexp, error) {
	if expr == "" {
		return nil, nil
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, &FilterError{Expr: expr, Err: err}
	}
	return re, nil
}

// NameObserver is told about every program name the classifier sees so the
// renderer can size the program column
type NameObserver interface {
	ObserveProgramName(name string)
}

// Options control classification
type Options struct {
	Filter        string // case-sensitive regular expression; empty disables filtering
	ListeningOnly bool
}

// Result holds both buckets keyed by local port
type Result struct {
	Listening    map[uint16]Entry
	NonListening map[uint16]Entry
}

// Len returns the number of entries in both buckets
func (r Result) Len() int {
	return len(r.Listening) + len(r.NonListening)
}

// Classify resolves the owning program of each connection and routes it to
// the listening or non-listening bucket.
//
// With ListeningOnly set, non-listening connections are dropped before
// anything else happens. Every remaining connection is reported to observer,
// including ones the filter will then exclude. A connection passes the filter
// when the expression matches its String() rendering or its resolved program
// name.
//
// A malformed filter returns a *FilterError together with the unfiltered
// result, leaving the caller to decide whether to use it.
func Classify(ctx context.Context, conns []netstat.Connection, names process.NameResolver, opts Options, observer NameObserver) (Result, error) {
	re, filterErr := CompileFilter(opts.Filter)

	entries := make([]Entry, 0, len(conns))
	for _, c := range conns {
		if opts.ListeningOnly && !c.Listening() {
			continue
		}

		program := resolveName(ctx, names, c.PID)
		if observer != nil {
			observer.ObserveProgramName(displayName(program))
		}

		if re != nil && !re.MatchString(c.String()) && (program == "" || !re.MatchString(program)) {
			continue
		}
		entries = append(entries, newEntry(c, program))
	}

	return reduce(entries), filterErr
}

// reduce builds the port-keyed buckets. When a port occurs more than once in
// a bucket the entry observed last wins.
func reduce(entries []Entry) Result {
	r := Result{
		Listening:    make(map[uint16]Entry),
		NonListening: make(map[uint16]Entry),
	}
	for _, e := range entries {
		if e.Status == StatusListening {
			r.Listening[e.Port] = e
		} else {
			r.NonListening[e.Port] = e
		}
	}
	return r
}

func resolveName(ctx context.Context, names process.NameResolver, pid process.ProcessID) string {
	if names == nil || !pid.Valid() {
		return ""
	}
	name, err := names.ProcessName(ctx, pid)
	if err != nil {
		return ""
	}
	return name
}
