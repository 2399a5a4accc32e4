//go:build linux

package rawsocket

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// NewEgress opens the raw IPv4 socket the forward loop uses to send
// rewritten datagrams (spec.md §4.5). IPPROTO_RAW sockets cannot be
// bound to a port — the caller supplies a fully-formed IP+UDP header
// on every WritePacket.
func NewEgress() (*Socket, error) {
	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_RAW, unix.IPPROTO_RAW)
	if err != nil {
		return nil, fmt.Errorf("rawsocket: open egress socket: %w", err)
	}

	if err := unix.SetsockoptInt(fd, unix.IPPROTO_IP, unix.IP_HDRINCL, 1); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("rawsocket: set IP_HDRINCL: %w", err)
	}

	_ = unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_SNDBUF, sendBufferBytes)
	_ = unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_BROADCAST, 1)

	return newSocket(fd, "rawsocket-egress")
}
