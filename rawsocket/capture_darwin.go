//go:build darwin

package rawsocket

import (
	"fmt"
	"net"

	"golang.org/x/sys/unix"
)

// NewCapture opens a raw IPv4 socket bound to bindIP. See the Linux
// build's comment on why no additional promiscuous flag is needed for
// AF_INET raw sockets.
func NewCapture(bindIP net.IP, port int) (*Socket, error) {
	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_RAW, unix.IPPROTO_UDP)
	if err != nil {
		return nil, fmt.Errorf("rawsocket: open capture socket: %w", err)
	}

	if err := unix.SetsockoptInt(fd, unix.IPPROTO_IP, unix.IP_HDRINCL, 1); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("rawsocket: set IP_HDRINCL: %w", err)
	}

	_ = unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_RCVBUF, recvBufferBytes)

	if bindIP != nil {
		var addr unix.SockaddrInet4
		addr.Port = port
		copy(addr.Addr[:], bindIP.To4())
		if err := unix.Bind(fd, &addr); err != nil {
			unix.Close(fd)
			return nil, fmt.Errorf("%w: bind capture socket to %s:%d: %v", ErrBind, bindIP, port, err)
		}
	}

	return newSocket(fd, "rawsocket-capture")
}
