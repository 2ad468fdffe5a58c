// Package netstat enumerates the host's open sockets together with the
// process that owns each one.
package netstat

import (
	"context"
	"fmt"
	"strings"

	"openports/process"
)

// StateListen is the OS state of a bound server socket
const StateListen = "LISTEN"

// Addr is an IP and port pair
type Addr struct {
	IP   string
	Port uint16
}

// String formats the address as "<ip>:<port>". IPv6 addresses are not bracketed.
func (a Addr) String() string {
	return fmt.Sprintf("%s:%d", a.IP, a.Port)
}

// Connection is one raw socket record as reported by the OS
type Connection struct {
	Proto  string // tcp, tcp6, udp or udp6
	Local  Addr
	Remote *Addr // nil when the socket has no peer
	State  string
	PID    process.ProcessID
}

// Listening reports whether the socket is a bound server socket awaiting connections
func (c Connection) Listening() bool {
	return c.State == StateListen
}

// String renders the record for humans and for filter matching, e.g.
// "tcp 10.0.0.2:51000 -> 93.184.216.34:80 ESTABLISHED pid=200".
func (c Connection) String() string {
	var b strings.Builder
	b.WriteString(c.Proto)
	b.WriteByte(' ')
	b.WriteString(c.Local.String())
	b.WriteString(" -> ")
	if c.Remote != nil {
		b.WriteString(c.Remote.String())
	} else {
		b.WriteString(":0")
	}
	if c.State != "" {
		b.WriteByte(' ')
		b.WriteString(c.State)
	}
	b.WriteString(" pid=")
	b.WriteString(c.PID.String())
	return b.String()
}

// Source lists the connections currently open on the host
type Source interface {
	Connections(ctx context.Context) ([]Connection, error)
}

// SourceFunc adapts a plain function to Source
type SourceFunc func(ctx context.Context) ([]Connection, error)

func (f SourceFunc) Connections(ctx context.Context) ([]Connection, error) {
	return f(ctx)
}
