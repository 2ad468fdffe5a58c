package lookup

import (
	"context"
	"errors"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const servicesFixture = `# Network services, Internet style
tcpmux		1/tcp				# TCP port service multiplexer
ssh		22/tcp				# SSH Remote Login Protocol
domain		53/tcp
domain		53/udp
http		80/tcp		www		# WorldWideWeb HTTP
www-alt		80/tcp
bootpc		68/udp
syslog		514/udp
shell		514/tcp		cmd		# no passwords used
broken		notaport/tcp
noproto		99
`

func TestParseServices(t *testing.T) {
	table, err := ParseServices(strings.NewReader(servicesFixture))
	require.NoError(t, err)
	assert.Equal(t, 8, table.Len())

	tests := []struct {
		port uint16
		want string
		ok   bool
	}{
		{22, "ssh", true},
		{80, "http", true},    // first entry wins
		{68, "bootpc", true},  // udp only
		{514, "shell", true},  // tcp before udp
		{53, "domain", true},
		{99, "", false},
		{8080, "", false},
	}
	for _, tt := range tests {
		name, ok := table.ServiceName(tt.port)
		assert.Equal(t, tt.ok, ok, "port %d", tt.port)
		assert.Equal(t, tt.want, name, "port %d", tt.port)
	}
}

func TestLoadServices(t *testing.T) {
	path := filepath.Join(t.TempDir(), "services")
	require.NoError(t, os.WriteFile(path, []byte(servicesFixture), 0o644))

	table, fromFile, err := LoadServices(path)
	require.NoError(t, err)
	assert.True(t, fromFile)
	name, _ := table.ServiceName(1)
	assert.Equal(t, "tcpmux", name)
}

func TestLoadServicesMissingFile(t *testing.T) {
	table, fromFile, err := LoadServices(filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, err)
	assert.False(t, fromFile)

	name, ok := table.ServiceName(443)
	assert.True(t, ok)
	assert.Equal(t, "https", name)

	name, ok = table.ServiceName(5353)
	assert.True(t, ok)
	assert.Equal(t, "mdns", name)
}

func TestDNSResolverSkipsUnroutable(t *testing.T) {
	r := NewDNSResolver(0)
	assert.Equal(t, DefaultDNSTimeout, r.Timeout)

	for _, ip := range []string{"0.0.0.0", "::", "", "not-an-ip"} {
		_, ok := r.ReverseName(context.Background(), ip)
		assert.False(t, ok, ip)
	}
}

func TestDNSResolverLookupFailure(t *testing.T) {
	r := NewDNSResolver(50 * time.Millisecond)
	r.Resolver = &net.Resolver{
		PreferGo: true,
		Dial: func(context.Context, string, string) (net.Conn, error) {
			return nil, errors.New("network unreachable")
		},
	}

	_, ok := r.ReverseName(context.Background(), "192.0.2.1")
	assert.False(t, ok)
}
