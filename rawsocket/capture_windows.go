//go:build windows

package rawsocket

import (
	"fmt"
	"net"
	"unsafe"

	"golang.org/x/sys/windows"
)

// sioRCVALL is WSAIoctl's SIO_RCVALL control code — Windows requires it
// on a raw socket before the socket will see traffic not addressed to
// one of the host's own ports, the promiscuous-mode equivalent spec.md
// §4.4 asks for on this platform.
const sioRCVALL = windows.IOC_IN | windows.IOC_VENDOR | 1

// NewCapture opens a raw IPv4 socket bound to bindIP and switches it
// into SIO_RCVALL receive-all mode.
func NewCapture(bindIP net.IP, port int) (*Socket, error) {
	fd, err := windows.Socket(windows.AF_INET, windows.SOCK_RAW, windows.IPPROTO_IP)
	if err != nil {
		return nil, fmt.Errorf("rawsocket: open capture socket: %w", err)
	}

	if err := windows.SetsockoptInt(fd, windows.IPPROTO_IP, windows.IP_HDRINCL, 1); err != nil {
		windows.Closesocket(fd)
		return nil, fmt.Errorf("rawsocket: set IP_HDRINCL: %w", err)
	}

	var rcvbuf int32 = recvBufferBytes
	_ = windows.Setsockopt(fd, windows.SOL_SOCKET, windows.SO_RCVBUF,
		(*byte)(unsafe.Pointer(&rcvbuf)), int32(unsafe.Sizeof(rcvbuf)))

	if bindIP != nil {
		addr := windows.SockaddrInet4{Port: port}
		copy(addr.Addr[:], bindIP.To4())
		if err := windows.Bind(fd, &addr); err != nil {
			windows.Closesocket(fd)
			return nil, fmt.Errorf("%w: bind capture socket to %s:%d: %v", ErrBind, bindIP, port, err)
		}
	}

	var enable uint32 = 1
	var bytesReturned uint32
	if err := windows.WSAIoctl(fd, sioRCVALL,
		(*byte)(unsafe.Pointer(&enable)), uint32(unsafe.Sizeof(enable)),
		nil, 0, &bytesReturned, nil, 0); err != nil {
		windows.Closesocket(fd)
		return nil, fmt.Errorf("rawsocket: enable SIO_RCVALL: %w", err)
	}

	return newSocket(int(fd), "rawsocket-capture")
}
