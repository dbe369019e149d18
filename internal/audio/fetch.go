package audio

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"syscall"
	"time"
)

// ErrFetchRefused is returned when a URL points at a host the decoder may not contact.
var ErrFetchRefused = errors.New("fetch refused")

// FetchPolicy bounds remote downloads.
type FetchPolicy struct {
	Timeout time.Duration
	// MaxBytes limits a download; zero means unlimited.
	MaxBytes int64
	// AllowedHosts restricts fetches to these host names when non-empty.
	// Listed hosts may resolve to private addresses.
	AllowedHosts []string
	// AllowPrivate permits loopback, private and link-local addresses for any host.
	AllowPrivate bool
}

func (p FetchPolicy) hostAllowed(host string) bool {
	if len(p.AllowedHosts) == 0 {
		return true
	}
	return p.listed(host)
}

func (p FetchPolicy) listed(host string) bool {
	for _, h := range p.AllowedHosts {
		if strings.EqualFold(h, host) {
			return true
		}
	}
	return false
}

func (p FetchPolicy) checkURL(u *url.URL) error {
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: scheme %q", ErrFetchRefused, u.Scheme)
	}
	if !p.hostAllowed(u.Hostname()) {
		return fmt.Errorf("%w: host %s is not allowed", ErrFetchRefused, u.Hostname())
	}
	return nil
}

// newClient builds an HTTP client that enforces the policy on every
// connection, including redirects.
func (p FetchPolicy) newClient() *http.Client {
	dialer := &net.Dialer{Timeout: 10 * time.Second}
	guarded := &net.Dialer{Timeout: 10 * time.Second, Control: refusePrivate}

	transport := &http.Transport{
		DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			host, _, err := net.SplitHostPort(addr)
			if err != nil {
				return nil, err
			}
			if p.AllowPrivate || p.listed(host) {
				return dialer.DialContext(ctx, network, addr)
			}
			return guarded.DialContext(ctx, network, addr)
		},
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: p.Timeout,
	}

	return &http.Client{
		Timeout:   p.Timeout,
		Transport: transport,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 5 {
				return errors.New("too many redirects")
			}
			return p.checkURL(req.URL)
		},
	}
}

// refusePrivate rejects connections to addresses inside the host's own networks.
func refusePrivate(_, address string, _ syscall.RawConn) error {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return err
	}
	ip := net.ParseIP(host)
	if ip == nil {
		return fmt.Errorf("%w: unparsable address %s", ErrFetchRefused, address)
	}
	if isInternalIP(ip) {
		return fmt.Errorf("%w: address %s is not public", ErrFetchRefused, ip)
	}
	return nil
}

func isInternalIP(ip net.IP) bool {
	return ip.IsLoopback() || ip.IsPrivate() || ip.IsUnspecified() ||
		ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() ||
		ip.IsInterfaceLocalMulticast() || ip.IsMulticast()
}
