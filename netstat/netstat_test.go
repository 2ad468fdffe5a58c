package netstat

import (
	"context"
	"errors"
	"os"
	"syscall"
	"testing"

	gopsNet "github.com/shirou/gopsutil/v4/net"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"openports/logging"
	"openports/process"
)

func TestConnectionString(t *testing.T) {
	tests := []struct {
		name string
		conn Connection
		want string
	}{
		{
			name: "listening",
			conn: Connection{Proto: "tcp", Local: Addr{IP: "0.0.0.0", Port: 80}, State: StateListen, PID: 100},
			want: "tcp 0.0.0.0:80 -> :0 LISTEN pid=100",
		},
		{
			name: "established",
			conn: Connection{
				Proto:  "tcp",
				Local:  Addr{IP: "10.0.0.2", Port: 51000},
				Remote: &Addr{IP: "93.184.216.34", Port: 80},
				State:  "ESTABLISHED",
				PID:    200,
			},
			want: "tcp 10.0.0.2:51000 -> 93.184.216.34:80 ESTABLISHED pid=200",
		},
		{
			name: "udp without state or owner",
			conn: Connection{Proto: "udp6", Local: Addr{IP: "::", Port: 5353}},
			want: "udp6 :::5353 -> :0 pid=-",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.conn.String())
		})
	}
}

func TestConnectionListening(t *testing.T) {
	assert.True(t, Connection{State: StateListen}.Listening())
	assert.False(t, Connection{State: "ESTABLISHED"}.Listening())
	assert.False(t, Connection{State: "NONE"}.Listening())
}

func fakeSource(stats []gopsNet.ConnectionStat, err error) *PsutilSource {
	return &PsutilSource{
		Kind: "inet",
		list: func(_ context.Context, kind string) ([]gopsNet.ConnectionStat, error) {
			return stats, err
		},
		log: logging.Nop(),
	}
}

func TestPsutilSourceConnections(t *testing.T) {
	src := fakeSource([]gopsNet.ConnectionStat{
		{
			Family: syscall.AF_INET,
			Type:   syscall.SOCK_STREAM,
			Laddr:  gopsNet.Addr{IP: "0.0.0.0", Port: 22},
			Status: "LISTEN",
			Pid:    1,
		},
		{
			Family: syscall.AF_INET6,
			Type:   syscall.SOCK_STREAM,
			Laddr:  gopsNet.Addr{IP: "::1", Port: 50100},
			Raddr:  gopsNet.Addr{IP: "::1", Port: 5432},
			Status: "ESTABLISHED",
			Pid:    4242,
		},
		{
			Family: syscall.AF_INET,
			Type:   syscall.SOCK_DGRAM,
			Laddr:  gopsNet.Addr{IP: "0.0.0.0", Port: 68},
			Raddr:  gopsNet.Addr{IP: "0.0.0.0", Port: 0},
			Status: "NONE",
		},
	}, nil)

	conns, err := src.Connections(context.Background())
	require.NoError(t, err)
	require.Len(t, conns, 3)

	assert.Equal(t, Connection{Proto: "tcp", Local: Addr{IP: "0.0.0.0", Port: 22}, State: "LISTEN", PID: 1}, conns[0])
	assert.True(t, conns[0].Listening())

	assert.Equal(t, "tcp6", conns[1].Proto)
	require.NotNil(t, conns[1].Remote)
	assert.Equal(t, Addr{IP: "::1", Port: 5432}, *conns[1].Remote)
	assert.Equal(t, process.ProcessID(4242), conns[1].PID)

	assert.Equal(t, "udp", conns[2].Proto)
	assert.Nil(t, conns[2].Remote, "a zero peer port means no peer")
	assert.False(t, conns[2].PID.Valid())
}

func TestPsutilSourceEnumerationError(t *testing.T) {
	_, err := fakeSource(nil, os.ErrPermission).Connections(context.Background())
	require.Error(t, err)

	var enumErr *EnumerationError
	require.True(t, errors.As(err, &enumErr))
	assert.Equal(t, "inet", enumErr.Kind)
	assert.ErrorIs(t, err, os.ErrPermission)
	assert.Equal(t, "list inet connections: permission denied", err.Error())
}

func TestProtoName(t *testing.T) {
	assert.Equal(t, "tcp", protoName(syscall.SOCK_STREAM, syscall.AF_INET))
	assert.Equal(t, "udp6", protoName(syscall.SOCK_DGRAM, syscall.AF_INET6))
	assert.Equal(t, "net", protoName(0, syscall.AF_INET))
}
