package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"time"
)

const (
	fetchTimeout = 30 * time.Second
	dialTimeout  = 10 * time.Second
	maxRedirects = 10
)

// errBlockedAddress is returned for documents hosted on addresses an agent
// must not reach through the server.
var errBlockedAddress = errors.New("blocked request to private or loopback address")

// blocked reports whether addr is private, loopback, link-local, multicast
// or unspecified. IPv4-mapped IPv6 addresses are judged as IPv4.
func blocked(addr netip.Addr) bool {
	addr = addr.Unmap()
	return addr.IsPrivate() || addr.IsLoopback() || addr.IsLinkLocalUnicast() ||
		addr.IsLinkLocalMulticast() || addr.IsMulticast() || addr.IsUnspecified()
}

// resolver looks up host addresses; net.DefaultResolver in production.
type resolver interface {
	LookupNetIP(ctx context.Context, network, host string) ([]netip.Addr, error)
}

// guard resolves a host and refuses it when any of its addresses is blocked.
type guard struct {
	resolver resolver
}

func (g guard) check(ctx context.Context, host string) ([]netip.Addr, error) {
	addrs, err := g.resolver.LookupNetIP(ctx, "ip", host)
	if err != nil {
		return nil, err
	}
	if len(addrs) == 0 {
		return nil, fmt.Errorf("no addresses found for host %s", host)
	}
	for _, a := range addrs {
		if blocked(a) {
			return nil, fmt.Errorf("%w: %s (%s)", errBlockedAddress, host, a)
		}
	}
	return addrs, nil
}

// newSafeHTTPClient returns the client used to fetch documents from URLs
// supplied by MCP clients. Every dial and every redirect target goes
// through the guard.
func newSafeHTTPClient() *http.Client {
	return newGuardedClient(guard{resolver: net.DefaultResolver})
}

func newGuardedClient(g guard) *http.Client {
	dialer := &net.Dialer{Timeout: dialTimeout}
	return &http.Client{
		Timeout: fetchTimeout,
		Transport: &http.Transport{
			DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
				host, port, err := net.SplitHostPort(addr)
				if err != nil {
					return nil, err
				}
				addrs, err := g.check(ctx, host)
				if err != nil {
					return nil, err
				}
				// dial the checked address, not the name, so a second lookup cannot differ
				return dialer.DialContext(ctx, network, net.JoinHostPort(addrs[0].String(), port))
			},
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return fmt.Errorf("stopped after %d redirects", maxRedirects)
			}
			_, err := g.check(req.Context(), req.URL.Hostname())
			return err
		},
	}
}
