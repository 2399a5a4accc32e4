// Package reservedip classifies an address as reserved: loopback,
// link-local, private, or one of the remaining IANA special-purpose
// ranges the standard library doesn't already recognize. The receiver
// set (receivers.Set.Add) rejects reserved addresses other than private
// ones.
package reservedip

import (
	"net"
	"sync"
)

var (
	reservedIPv4Networks []*net.IPNet
	reservedIPv6Networks []*net.IPNet
	initOnce             sync.Once
)

// parseNetworks parses each CIDR in cidrs, silently skipping any that
// fail to parse (none of the literals below should ever fail).
func parseNetworks(cidrs []string) []*net.IPNet {
	nets := make([]*net.IPNet, 0, len(cidrs))
	for _, cidr := range cidrs {
		if _, ipNet, err := net.ParseCIDR(cidr); err == nil {
			nets = append(nets, ipNet)
		}
	}
	return nets
}

// initReservedNetworks parses the reduced set of reserved ranges not
// already covered by net.IP's IsPrivate/IsLoopback/IsLinkLocalUnicast.
func initReservedNetworks() {
	reservedIPv4Networks = parseNetworks([]string{
		"0.0.0.0/8",       // current network (default route)
		"100.64.0.0/10",   // shared address space (carrier-grade NAT)
		"192.0.0.0/29",    // IPv4 special purpose
		"192.0.2.0/24",    // TEST-NET-1
		"192.88.99.0/24",  // 6to4 relay anycast
		"198.18.0.0/15",   // network benchmarking
		"198.51.100.0/24", // TEST-NET-2
		"203.0.113.0/24",  // TEST-NET-3
		"224.0.0.0/3",     // multicast and above, including 255.255.255.255
	})

	reservedIPv6Networks = parseNetworks([]string{
		"::/128",        // unspecified address
		"::ffff:0:0/96", // IPv4-mapped addresses
		"100::/64",      // discard prefix
		"2001::/32",     // Teredo tunneling
		"2001:10::/28",  // ORCHID (old)
		"2001:20::/28",  // ORCHIDv2
		"2001:db8::/32", // documentation addresses
		"ff00::/8",      // multicast
	})
}

// IsReserved reports whether ip falls in a reserved, private, loopback,
// link-local, or documentation/benchmarking range.
func IsReserved(ip net.IP) bool {
	if ip == nil {
		return false
	}

	if ip.IsPrivate() || ip.IsLoopback() || ip.IsLinkLocalUnicast() {
		return true
	}

	initOnce.Do(initReservedNetworks)

	if ipv4 := ip.To4(); ipv4 != nil {
		for _, ipNet := range reservedIPv4Networks {
			if ipNet.Contains(ipv4) {
				return true
			}
		}
		return false
	}

	if ipv6 := ip.To16(); ipv6 != nil {
		for _, ipNet := range reservedIPv6Networks {
			if ipNet.Contains(ipv6) {
				return true
			}
		}
	}

	return false
}
