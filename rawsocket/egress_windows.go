//go:build windows

package rawsocket

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"
)

// NewEgress opens the raw IPv4 socket the forward loop sends rewritten
// datagrams through on Windows.
func NewEgress() (*Socket, error) {
	fd, err := windows.Socket(windows.AF_INET, windows.SOCK_RAW, windows.IPPROTO_IP)
	if err != nil {
		return nil, fmt.Errorf("rawsocket: open egress socket: %w", err)
	}

	if err := windows.SetsockoptInt(fd, windows.IPPROTO_IP, windows.IP_HDRINCL, 1); err != nil {
		windows.Closesocket(fd)
		return nil, fmt.Errorf("rawsocket: set IP_HDRINCL: %w", err)
	}

	var sndbuf int32 = sendBufferBytes
	_ = windows.Setsockopt(fd, windows.SOL_SOCKET, windows.SO_SNDBUF,
		(*byte)(unsafe.Pointer(&sndbuf)), int32(unsafe.Sizeof(sndbuf)))

	var broadcast int32 = 1
	_ = windows.Setsockopt(fd, windows.SOL_SOCKET, windows.SO_BROADCAST,
		(*byte)(unsafe.Pointer(&broadcast)), int32(unsafe.Sizeof(broadcast)))

	return newSocket(int(fd), "rawsocket-egress")
}
