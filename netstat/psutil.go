package netstat

import (
	"context"
	"syscall"

	gopsNet "github.com/shirou/gopsutil/v4/net"

	"openports/logging"
	"openports/process"
)

// PsutilSource lists connections through gopsutil
type PsutilSource struct {
	// Kind is passed to gopsutil: inet, inet4, inet6, tcp, tcp4, tcp6, udp, udp4, udp6 or all
	Kind string

	list func(ctx context.Context, kind string) ([]gopsNet.ConnectionStat, error)
	log  logging.Logger
}

// NewPsutilSource creates a source over every IPv4 and IPv6 TCP/UDP socket
func NewPsutilSource() *PsutilSource {
	return &PsutilSource{
		Kind: "inet",
		list: gopsNet.ConnectionsWithContext,
		log:  logging.New("netstat"),
	}
}

func (s *PsutilSource) Connections(ctx context.Context) ([]Connection, error) {
	stats, err := s.list(ctx, s.Kind)
	if err != nil {
		return nil, &EnumerationError{Kind: s.Kind, Err: err}
	}

	out := make([]Connection, 0, len(stats))
	for _, st := range stats {
		out = append(out, fromStat(st))
	}
	s.log.Debugln("Listed", len(out), "connections")
	return out, nil
}

func fromStat(st gopsNet.ConnectionStat) Connection {
	c := Connection{
		Proto: protoName(st.Type, st.Family),
		Local: Addr{IP: st.Laddr.IP, Port: uint16(st.Laddr.Port)},
		State: st.Status,
		PID:   process.ProcessID(st.Pid),
	}
	if st.Raddr.IP != "" && st.Raddr.Port != 0 {
		c.Remote = &Addr{IP: st.Raddr.IP, Port: uint16(st.Raddr.Port)}
	}
	return c
}

func protoName(sockType, family uint32) string {
	name := "net"
	switch sockType {
	case syscall.SOCK_STREAM:
		name = "tcp"
	case syscall.SOCK_DGRAM:
		name = "udp"
	}
	if family == syscall.AF_INET6 {
		name += "6"
	}
	return name
}
