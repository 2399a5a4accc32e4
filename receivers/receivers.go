// Package receivers holds the set of IPv4 addresses a running engine
// forwards captured datagrams to (spec.md §3/§4.2). The set is
// concurrency-safe: the engine's forward loop takes a snapshot under a
// single short lock and then forwards without holding it, so AddReceiver
// and RemoveReceiver never block a send in flight.
package receivers

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/battlelan/relay/ds"
	"github.com/battlelan/relay/reservedip"
)

// ErrReserved is returned when the caller tries to add a loopback,
// link-local, multicast, or other reserved address as a receiver.
// Private ranges are not rejected.
var ErrReserved = errors.New("receivers: address is reserved and cannot be a forwarding target")

// ErrNotIPv4 is returned for an address that does not resolve to IPv4.
var ErrNotIPv4 = errors.New("receivers: address is not an IPv4 address")

// key is the 4-byte form of an IPv4 address, used so the backing set
// needs no custom hashing or Equal method.
type key [4]byte

// Set is the mutable collection of receiver addresses for one engine.
// The zero value is not usable; construct with New.
type Set struct {
	mu      sync.RWMutex
	members ds.Set[key]
}

// New returns an empty receiver set.
func New() *Set {
	return &Set{members: ds.NewSet[key]()}
}

func toKey(ip net.IP) (key, error) {
	v4 := ip.To4()
	if v4 == nil {
		return key{}, ErrNotIPv4
	}
	var k key
	copy(k[:], v4)
	return k, nil
}

// Add registers ip as a forwarding target. It rejects reserved and
// non-IPv4 addresses outright — a relay with a loopback or multicast
// receiver is very likely a misconfiguration, not an intentional one.
// Private addresses (10/8, 172.16/12, 192.168/16) are accepted even
// though reservedip.IsReserved reports them as reserved.
func (s *Set) Add(ip net.IP) error {
	if reservedip.IsReserved(ip) && !ip.IsPrivate() {
		return fmt.Errorf("%w: %s", ErrReserved, ip)
	}
	k, err := toKey(ip)
	if err != nil {
		return fmt.Errorf("%w: %s", err, ip)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.members.Add(k)
	return nil
}

// AddHost resolves host (a hostname or IP literal) to an IPv4 address and
// adds it, racing the given DNS servers the way ResolveHost does — it
// supports the LAN use case of registering players by machine name
// rather than by address.
func (s *Set) AddHost(ctx context.Context, host string, dnsServers []string) (net.IP, error) {
	ip, err := ResolveHost(ctx, host, dnsServers)
	if err != nil {
		return nil, err
	}
	if err := s.Add(ip); err != nil {
		return nil, err
	}
	return ip, nil
}

// Remove drops ip from the set, if present. Removing an address that
// isn't a member is a no-op.
func (s *Set) Remove(ip net.IP) error {
	k, err := toKey(ip)
	if err != nil {
		return fmt.Errorf("%w: %s", err, ip)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.members.Remove(k)
	return nil
}

// Clear removes every receiver.
func (s *Set) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.members = ds.NewSet[key]()
}

// Len reports the current receiver count.
func (s *Set) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.members)
}

// Snapshot returns a point-in-time copy of the receiver addresses. The
// forward loop calls this once per inbound packet and then iterates the
// copy, so a concurrent Add/Remove never blocks behind a send.
func (s *Set) Snapshot() []net.IP {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := s.members.Values()
	out := make([]net.IP, len(keys))
	for i, k := range keys {
		ip := make(net.IP, 4)
		copy(ip, k[:])
		out[i] = ip
	}
	return out
}

// ListStrings is Snapshot rendered as dotted-quad strings, for logging
// and status reporting.
func (s *Set) ListStrings() []string {
	addrs := s.Snapshot()
	out := make([]string, len(addrs))
	for i, ip := range addrs {
		out[i] = ip.String()
	}
	return out
}

// ResolveHost resolves host to an IPv4 address, racing the supplied DNS
// servers concurrently and returning the first successful answer — or,
// if host is already a dotted-quad literal, returning it directly
// without touching the network.
func ResolveHost(ctx context.Context, host string, dnsServers []string) (net.IP, error) {
	if ip := net.ParseIP(host); ip != nil {
		if v4 := ip.To4(); v4 != nil {
			return v4, nil
		}
		return nil, fmt.Errorf("%w: %s", ErrNotIPv4, host)
	}

	if len(dnsServers) == 0 {
		ips, err := net.DefaultResolver.LookupIP(ctx, "ip4", host)
		if err != nil {
			return nil, fmt.Errorf("receivers: lookup %q: %w", host, err)
		}
		return ips[0], nil
	}

	queryCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	type result struct {
		ip  net.IP
		err error
	}
	ch := make(chan result, len(dnsServers))

	for _, server := range dnsServers {
		go func(server string) {
			resolver := &net.Resolver{
				PreferGo: true,
				Dial: func(ctx context.Context, _, _ string) (net.Conn, error) {
					d := net.Dialer{Timeout: 800 * time.Millisecond}
					return d.DialContext(ctx, "udp", server)
				},
			}
			ips, err := resolver.LookupIP(queryCtx, "ip4", host)
			if err != nil || len(ips) == 0 {
				ch <- result{nil, err}
				return
			}
			ch <- result{ips[0], nil}
		}(server)
	}

	var lastErr error
	for range dnsServers {
		select {
		case r := <-ch:
			if r.err == nil && r.ip != nil {
				return r.ip, nil
			}
			lastErr = r.err
		case <-queryCtx.Done():
			return nil, fmt.Errorf("receivers: resolve %q: %w", host, queryCtx.Err())
		}
	}
	if lastErr == nil {
		lastErr = errors.New("receivers: all DNS servers failed")
	}
	return nil, fmt.Errorf("receivers: resolve %q: %w", host, lastErr)
}
