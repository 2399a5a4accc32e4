//go:build linux || darwin

package rawsocket

import "golang.org/x/sys/unix"

// SetBuffers resizes the kernel send/receive buffers for an already-open
// socket, mirroring the teacher's tcp.SetWindow per-OS helpers but
// operating on the capture/egress sockets this package owns instead of a
// plain TCP connection.
func (s *Socket) SetBuffers(recvBytes, sendBytes int) error {
	if recvBytes > 0 {
		if err := unix.SetsockoptInt(s.fd, unix.SOL_SOCKET, unix.SO_RCVBUF, recvBytes); err != nil {
			return err
		}
	}
	if sendBytes > 0 {
		if err := unix.SetsockoptInt(s.fd, unix.SOL_SOCKET, unix.SO_SNDBUF, sendBytes); err != nil {
			return err
		}
	}
	return nil
}

// GetBuffers reports the kernel's current send/receive buffer sizes,
// mirroring the teacher's tcp.GetWindow per-OS helpers.
func (s *Socket) GetBuffers() (recvBytes, sendBytes int, err error) {
	recvBytes, err = unix.GetsockoptInt(s.fd, unix.SOL_SOCKET, unix.SO_RCVBUF)
	if err != nil {
		return 0, 0, err
	}
	sendBytes, err = unix.GetsockoptInt(s.fd, unix.SOL_SOCKET, unix.SO_SNDBUF)
	if err != nil {
		return 0, 0, err
	}
	return recvBytes, sendBytes, nil
}
