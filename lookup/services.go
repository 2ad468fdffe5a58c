// Package lookup provides the name lookups the report decorates rows with:
// well-known service names by port and reverse DNS for peers.
package lookup

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"
)

// DefaultServicesFile is the conventional location of the services database
const DefaultServicesFile = "/etc/services"

// ServiceLookup maps a port number to its well-known service name
type ServiceLookup interface {
	ServiceName(port uint16) (string, bool)
}

type servicePort struct {
	port  uint16
	proto string
}

// ServiceTable is an in-memory copy of the services database
type ServiceTable struct {
	names map[servicePort]string
}

// NewServiceTable creates an empty table
func NewServiceTable() *ServiceTable {
	return &ServiceTable{names: make(map[servicePort]string)}
}

// Add records name for port/proto unless the pair already has a name, which
// mirrors getservbyport returning the first matching line.
func (t *ServiceTable) Add(name string, port uint16, proto string) {
	key := servicePort{port: port, proto: proto}
	if _, ok := t.names[key]; ok {
		return
	}
	t.names[key] = name
}

// Len returns the number of port/proto pairs in the table
func (t *ServiceTable) Len() int {
	return len(t.names)
}

// ServiceName looks the port up as TCP first, then as UDP
func (t *ServiceTable) ServiceName(port uint16) (string, bool) {
	if name, ok := t.names[servicePort{port: port, proto: "tcp"}]; ok {
		return name, true
	}
	name, ok := t.names[servicePort{port: port, proto: "udp"}]
	return name, ok
}

// ParseServices reads services(5) formatted data:
//
//	name  port/protocol  [aliases ...]  [# comment]
//
// Malformed lines are skipped.
func ParseServices(r io.Reader) (*ServiceTable, error) {
	t := NewServiceTable()
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		portStr, proto, ok := strings.Cut(fields[1], "/")
		if !ok {
			continue
		}
		port, err := strconv.ParseUint(portStr, 10, 16)
		if err != nil {
			continue
		}
		t.Add(fields[0], uint16(port), strings.ToLower(proto))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read services: %w", err)
	}
	return t, nil
}

// LoadServices parses the services file at path. A missing file is not an
// error: the built-in table is returned instead, with fromFile set to false.
func LoadServices(path string) (t *ServiceTable, fromFile bool, err error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return BuiltinServices(), false, nil
		}
		return nil, false, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	t, err = ParseServices(f)
	if err != nil {
		return nil, false, fmt.Errorf("%s: %w", path, err)
	}
	return t, true, nil
}

// BuiltinServices returns a small table of common services for hosts without
// a services database (containers, Windows)
func BuiltinServices() *ServiceTable {
	t := NewServiceTable()
	for _, s := range builtin {
		t.Add(s.name, s.port, "tcp")
		if s.udp {
			t.Add(s.name, s.port, "udp")
		}
	}
	return t
}

var builtin = []struct {
	name string
	port uint16
	udp  bool
}{
	{"ftp-data", 20, false},
	{"ftp", 21, false},
	{"ssh", 22, false},
	{"telnet", 23, false},
	{"smtp", 25, false},
	{"domain", 53, true},
	{"bootps", 67, true},
	{"bootpc", 68, true},
	{"tftp", 69, true},
	{"http", 80, false},
	{"kerberos", 88, true},
	{"pop3", 110, false},
	{"sunrpc", 111, true},
	{"ntp", 123, true},
	{"epmap", 135, true},
	{"netbios-ns", 137, true},
	{"netbios-dgm", 138, true},
	{"netbios-ssn", 139, false},
	{"imap2", 143, false},
	{"snmp", 161, true},
	{"ldap", 389, false},
	{"https", 443, true},
	{"microsoft-ds", 445, false},
	{"submissions", 465, false},
	{"syslog", 514, true},
	{"submission", 587, false},
	{"ipp", 631, false},
	{"ldaps", 636, false},
	{"imaps", 993, false},
	{"pop3s", 995, false},
	{"ms-sql-s", 1433, false},
	{"openvpn", 1194, true},
	{"mysql", 3306, false},
	{"ms-wbt-server", 3389, false},
	{"mdns", 5353, true},
	{"postgresql", 5432, false},
	{"x11", 6000, false},
}
