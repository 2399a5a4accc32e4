// Package hostaddr resolves the local machine's primary IPv4 address,
// the value spec.md §4.4 binds the capture socket to.
package hostaddr

import (
	"errors"
	"fmt"
	"net"
	"os"
)

// ErrNoIPv4 is returned when no IPv4 address could be determined for the
// local host — the condition spec.md §4.4/§7 reports as EHostAddress.
var ErrNoIPv4 = errors.New("hostaddr: no IPv4 address found for local host")

// PrimaryIPv4 resolves the machine's primary IPv4 address: the first
// IPv4 address associated with the machine's own host name, per spec.md
// §4.4's construction step. This mirrors what a Windows
// Dns.GetHostEntry(Dns.GetHostName()) call would return, the idiom the
// original control surface used to pick a bind address.
func PrimaryIPv4() (net.IP, error) {
	name, err := os.Hostname()
	if err != nil {
		return nil, fmt.Errorf("hostaddr: get hostname: %w", err)
	}

	addrs, err := net.LookupIP(name)
	if err != nil {
		return nil, fmt.Errorf("hostaddr: lookup host %q: %w", name, err)
	}

	for _, a := range addrs {
		if v4 := a.To4(); v4 != nil {
			return v4, nil
		}
	}
	return nil, ErrNoIPv4
}
