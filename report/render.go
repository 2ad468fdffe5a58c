// Package report renders the sections of the open ports report as aligned text.
package report

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"

	"openports/logging"
	"openports/lookup"
	"openports/ports"
)

// TimestampLayout formats the title timestamp with an explicit UTC offset
const TimestampLayout = "06.01.02 15:04:05 (-07:00)"

// Section is a titled group of rows
type Section struct {
	Title   string
	Entries []ports.Entry
}

// Options configure a Renderer
type Options struct {
	// Services annotates rows with well-known service names. Ignored in bare mode.
	Services lookup.ServiceLookup
	// DNS suffixes peers with their reverse name; nil disables it
	DNS lookup.ReverseResolver
	// Now returns the time shown in section titles
	Now func() time.Time
}

// Renderer writes report sections to an io.Writer
type Renderer struct {
	w     io.Writer
	state *State
	opts  Options
	log   logging.Logger
}

// NewRenderer creates a renderer writing to w. state must be shared by every
// render of the run.
func NewRenderer(w io.Writer, state *State, opts Options) *Renderer {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Renderer{
		w:     w,
		state: state,
		opts:  opts,
		log:   logging.New("report"),
	}
}

// State returns the run state the renderer formats with
func (r *Renderer) State() *State {
	return r.state
}

// Render writes every non-empty section.
//
// Rendering happens in two passes. The first formats every row of every
// section without DNS names to measure the widest line, which sizes the
// section titles and the separator rule. The second writes the rows, now with
// DNS names when enabled.
func (r *Renderer) Render(ctx context.Context, sections ...Section) error {
	layout := newLayout(r.state.ProgramWidth())

	lineWidth := 0
	for _, s := range sections {
		for _, e := range s.Entries {
			lineWidth = max(lineWidth, runewidth.StringWidth(r.formatEntry(ctx, layout, e, false)))
		}
	}

	out := &errWriter{w: r.w}
	for _, s := range sections {
		if len(s.Entries) == 0 {
			continue
		}

		withHeader := r.state.claimHeader()
		if !withHeader {
			out.println("")
		}
		if !r.state.Bare() {
			out.println(center(r.title(s.Title), lineWidth, "-"))
			if withHeader {
				out.println(layout.headerRow())
				out.println(strings.Repeat("-", lineWidth))
			}
		}

		for _, e := range s.Entries {
			out.println(r.formatEntry(ctx, layout, e, r.opts.DNS != nil))
		}
		r.log.Debugln("Rendered", len(s.Entries), "rows for", s.Title)
	}
	return out.err
}

func (r *Renderer) title(name string) string {
	return fmt.Sprintf("%s (%s)", name, r.opts.Now().Format(TimestampLayout))
}

// formatEntry renders one row
func (r *Renderer) formatEntry(ctx context.Context, layout Layout, e ports.Entry, dns bool) string {
	values := []string{
		strconv.Itoa(int(e.Port)),
		sanitize(e.ProgramName()),
		e.PID.String(),
	}
	peer := r.peer(ctx, e, dns)

	if r.state.Bare() {
		specs := append(layout.leading(), layout.Bare...)
		return strings.TrimRight(formatRow(specs, append(values, peer)), " ")
	}

	service, hasService := r.serviceName(e.Port)
	var trailing []ColumnSpec
	switch {
	case hasService && peer != "":
		trailing = layout.ServiceAndPeer
		values = append(values, "SVC: "+service, peer)
	case hasService:
		trailing = layout.ServiceOnly
		values = append(values, "SVC: "+service)
	default:
		trailing = layout.PeerOnly
		values = append(values, peer)
	}
	return formatRow(append(layout.leading(), trailing...), values)
}

// peer formats the foreign address, with its reverse name when dns is set
func (r *Renderer) peer(ctx context.Context, e ports.Entry, dns bool) string {
	if e.Foreign == nil {
		return ""
	}
	addr := e.Foreign.String()
	if dns && r.opts.DNS != nil {
		if name, ok := r.opts.DNS.ReverseName(ctx, e.Foreign.IP); ok {
			addr += " (" + sanitize(name) + ")"
		}
	}
	return addr
}

func (r *Renderer) serviceName(port uint16) (string, bool) {
	if r.opts.Services == nil {
		return "", false
	}
	return r.opts.Services.ServiceName(port)
}

// errWriter keeps the first write error and drops everything after it
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) println(line string) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintln(ew.w, line)
}
