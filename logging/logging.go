// Package logging hands out component loggers.
//
// The report itself is written to stdout and consumed by scripts, so
// diagnostics are only emitted when verbose output was requested.
package logging

import (
	"github.com/Moonlight-Companies/gologger/coloransi"
	"github.com/Moonlight-Companies/gologger/logger"
)

// Logger is the subset of *logger.Logger the components use
type Logger interface {
	Infoln(args ...interface{})
	Debugln(args ...interface{})
	Warn(args ...interface{})
}

var verbose bool

// SetVerbose switches New between real and silent loggers. Call it before
// constructing components.
func SetVerbose(v bool) {
	verbose = v
}

// New returns a named logger for a component
func New(name string) Logger {
	if !verbose {
		return Nop()
	}
	return logger.NewLogger(coloransi.Color(coloransi.ColorPurple, coloransi.ColorOrange, name))
}

// Nop returns a logger that discards everything
func Nop() Logger {
	return nopLogger{}
}

type nopLogger struct{}

func (nopLogger) Infoln(args ...interface{})  {}
func (nopLogger) Debugln(args ...interface{}) {}
func (nopLogger) Warn(args ...interface{})    {}
