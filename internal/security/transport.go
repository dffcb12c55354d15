// Package security keeps push webhooks from reaching internal infrastructure.
//
// Webhook targets are user-supplied URLs. Every address a target host
// resolves to is checked against a blocklist of loopback, private, link-local
// (including the cloud metadata endpoint) and reserved ranges, both when
// dialing and when following redirects.
package security

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"
)

// dnsTimeout bounds host resolution for one dial or redirect check.
const dnsTimeout = 500 * time.Millisecond

var (
	// ErrBlockedTarget is returned when a target resolves to a blocked range.
	ErrBlockedTarget = errors.New("security: target resolves to a blocked address")
	// ErrDNS is returned when a target host cannot be resolved in time.
	ErrDNS = errors.New("security: target host could not be resolved")
	// ErrTooManyRedirects is returned past the redirect limit.
	ErrTooManyRedirects = errors.New("security: too many redirects")
)

// BlockedCIDRs are never reachable from a webhook delivery.
var BlockedCIDRs = []string{
	"0.0.0.0/8",
	"10.0.0.0/8",
	"100.64.0.0/10",
	"127.0.0.0/8",
	"169.254.0.0/16",
	"172.16.0.0/12",
	"192.168.0.0/16",
	"198.18.0.0/15",
	"224.0.0.0/4",
	"240.0.0.0/4",
	"::1/128",
	"fc00::/7",
	"fe80::/10",
}

var defaultBlocked = mustParseCIDRs(BlockedCIDRs)

func mustParseCIDRs(cidrs []string) []*net.IPNet {
	nets := make([]*net.IPNet, 0, len(cidrs))
	for _, c := range cidrs {
		_, n, err := net.ParseCIDR(c)
		if err != nil {
			panic(fmt.Sprintf("security: bad CIDR %q: %v", c, err))
		}
		nets = append(nets, n)
	}
	return nets
}

// Resolver abstracts DNS lookups for tests.
type Resolver interface {
	LookupIPAddr(ctx context.Context, host string) ([]net.IPAddr, error)
}

// Guard validates hosts against the blocklist.
type Guard struct {
	resolver Resolver
	blocked  []*net.IPNet
	dialer   *net.Dialer
}

// NewGuard returns a Guard over the default blocklist. A nil resolver uses
// net.DefaultResolver.
func NewGuard(resolver Resolver) *Guard {
	if resolver == nil {
		resolver = net.DefaultResolver
	}
	return &Guard{
		resolver: resolver,
		blocked:  defaultBlocked,
		dialer:   &net.Dialer{Timeout: 5 * time.Second},
	}
}

func (g *Guard) isBlocked(ip net.IP) bool {
	for _, n := range g.blocked {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}

// resolve returns the addresses of host, failing if any of them is blocked.
// Checking every address defeats rebinding answers that mix a public and a
// private record.
func (g *Guard) resolve(ctx context.Context, host string) ([]net.IP, error) {
	if ip := net.ParseIP(host); ip != nil {
		if g.isBlocked(ip) {
			return nil, fmt.Errorf("%w: %s", ErrBlockedTarget, ip)
		}
		return []net.IP{ip}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, dnsTimeout)
	defer cancel()

	addrs, err := g.resolver.LookupIPAddr(ctx, host)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDNS, host, err)
	}
	if len(addrs) == 0 {
		return nil, fmt.Errorf("%w: %s has no addresses", ErrDNS, host)
	}

	ips := make([]net.IP, 0, len(addrs))
	for _, a := range addrs {
		if g.isBlocked(a.IP) {
			return nil, fmt.Errorf("%w: %s (resolved from %s)", ErrBlockedTarget, a.IP, host)
		}
		ips = append(ips, a.IP)
	}
	return ips, nil
}

// DialContext resolves and validates addr, then dials the first address.
// The validated IP is dialed directly so a second lookup cannot swap it.
func (g *Guard) DialContext(ctx context.Context, network, addr string) (net.Conn, error) {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return nil, fmt.Errorf("security: invalid address %q: %w", addr, err)
	}
	ips, err := g.resolve(ctx, host)
	if err != nil {
		return nil, err
	}
	return g.dialer.DialContext(ctx, network, net.JoinHostPort(ips[0].String(), port))
}

// CheckRedirect returns an http.Client CheckRedirect hook that validates
// each redirect target and caps the chain at maxRedirects.
func (g *Guard) CheckRedirect(maxRedirects int) func(req *http.Request, via []*http.Request) error {
	return func(req *http.Request, via []*http.Request) error {
		if len(via) >= maxRedirects {
			return fmt.Errorf("%w: limit is %d", ErrTooManyRedirects, maxRedirects)
		}
		host := req.URL.Hostname()
		if host == "" {
			return fmt.Errorf("%w: redirect has no host", ErrBlockedTarget)
		}
		_, err := g.resolve(req.Context(), host)
		return err
	}
}

// NewHTTPClient returns a client whose dials and redirects go through g.
func (g *Guard) NewHTTPClient(timeout time.Duration, maxRedirects int) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = nil
	transport.DialContext = g.DialContext
	return &http.Client{
		Transport:     transport,
		Timeout:       timeout,
		CheckRedirect: g.CheckRedirect(maxRedirects),
	}
}
