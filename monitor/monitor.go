// Package monitor drives the report pipeline once or on a fixed interval.
package monitor

import (
	"context"
	"errors"
	"time"

	"openports/logging"
	"openports/netstat"
	"openports/ports"
	"openports/process"
	"openports/report"
)

// DefaultInterval is used when continuous mode is requested without a value
const DefaultInterval = 10 * time.Second

// State is the lifecycle state of a Loop
type State int

const (
	Stopped State = iota
	Running
)

func (s State) String() string {
	if s == Running {
		return "running"
	}
	return "stopped"
}

// Config controls what each tick renders and how often it runs
type Config struct {
	Sort         ports.SortKey
	Classify     ports.Options
	FilterPolicy ports.FilterPolicy

	// Continuous repeats the tick every Interval until the context is cancelled
	Continuous bool
	Interval   time.Duration
}

// Loop runs the pipeline: source, name resolution, classification, sorting
// and rendering. Ticks never overlap and always run to completion.
type Loop struct {
	source   netstat.Source
	names    process.NameResolver
	renderer *report.Renderer
	cfg      Config
	log      logging.Logger

	// OnFilterError is called with a malformed filter under the permissive policy
	OnFilterError func(err error)

	state     State
	ticks     int
	filterErr error
}

// New creates a stopped loop
func New(source netstat.Source, names process.NameResolver, renderer *report.Renderer, cfg Config) *Loop {
	return &Loop{
		source:   source,
		names:    names,
		renderer: renderer,
		cfg:      cfg,
		log:      logging.New("monitor"),
		state:    Stopped,
	}
}

// State returns the current lifecycle state
func (l *Loop) State() State {
	return l.state
}

// Ticks returns the number of completed ticks
func (l *Loop) Ticks() int {
	return l.ticks
}

// FilterError returns the first malformed-filter error the permissive policy absorbed
func (l *Loop) FilterError() error {
	return l.filterErr
}

// Run ticks once, or forever in continuous mode. Cancellation is only
// observed while waiting between ticks; Run then returns ctx.Err().
func (l *Loop) Run(ctx context.Context) error {
	l.state = Running
	l.log.Infoln("Loop running, continuous:", l.cfg.Continuous, "interval:", l.cfg.Interval)
	defer func() {
		l.state = Stopped
		l.log.Infoln("Loop stopped after", l.ticks, "ticks")
	}()

	// a tick must not be cut short by cancellation
	tickCtx := context.WithoutCancel(ctx)

	for {
		if err := l.Tick(tickCtx); err != nil {
			return err
		}
		if !l.cfg.Continuous {
			return nil
		}
		// a zero-interval timer is ready at once and would race a pending cancel
		if err := ctx.Err(); err != nil {
			return err
		}

		timer := time.NewTimer(l.cfg.Interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// Tick produces one full report
func (l *Loop) Tick(ctx context.Context) error {
	if r, ok := l.names.(interface{ Reset() }); ok {
		r.Reset()
	}

	conns, err := l.source.Connections(ctx)
	if err != nil {
		return err
	}

	result, err := ports.Classify(ctx, conns, l.names, l.cfg.Classify, l.renderer.State())
	if err != nil {
		var fe *ports.FilterError
		if !errors.As(err, &fe) || l.cfg.FilterPolicy == ports.FilterStrict {
			return err
		}
		if l.filterErr == nil {
			l.filterErr = err
		}
		if l.OnFilterError != nil {
			l.OnFilterError(err)
		}
	}

	sorted := ports.Sort(result, l.cfg.Sort)
	sections := []report.Section{
		{Title: ports.StatusListening.String(), Entries: sorted.Listening},
	}
	if !l.cfg.Classify.ListeningOnly {
		sections = append(sections, report.Section{Title: ports.StatusOther.String(), Entries: sorted.NonListening})
	}

	if err := l.renderer.Render(ctx, sections...); err != nil {
		return err
	}

	l.ticks++
	l.log.Debugln("Tick", l.ticks, "connections:", len(conns),
		"listening:", len(sorted.Listening), "non-listening:", len(sorted.NonListening))
	return nil
}
