package lookup

import (
	"context"
	"net"
	"strings"
	"time"

	"openports/logging"
)

// DefaultDNSTimeout bounds a single reverse lookup
const DefaultDNSTimeout = 2 * time.Second

// ReverseResolver maps an IP address to a host name
type ReverseResolver interface {
	ReverseName(ctx context.Context, ip string) (string, bool)
}

// DNSResolver performs reverse lookups through a net.Resolver
type DNSResolver struct {
	Resolver *net.Resolver
	Timeout  time.Duration

	log logging.Logger
}

// NewDNSResolver creates a resolver using the system configuration
func NewDNSResolver(timeout time.Duration) *DNSResolver {
	if timeout <= 0 {
		timeout = DefaultDNSTimeout
	}
	return &DNSResolver{
		Resolver: net.DefaultResolver,
		Timeout:  timeout,
		log:      logging.New("dns"),
	}
}

// ReverseName returns the first PTR name for ip without its trailing dot.
// Unspecified addresses are never looked up.
func (r *DNSResolver) ReverseName(ctx context.Context, ip string) (string, bool) {
	parsed := net.ParseIP(ip)
	if parsed == nil || parsed.IsUnspecified() {
		return "", false
	}

	ctx, cancel := context.WithTimeout(ctx, r.Timeout)
	defer cancel()

	names, err := r.Resolver.LookupAddr(ctx, ip)
	if err != nil || len(names) == 0 {
		r.log.Debugln("Reverse lookup failed for", ip, err)
		return "", false
	}
	return strings.TrimRight(names[0], "."), true
}
