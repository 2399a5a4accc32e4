//go:build windows

package rawsocket

import (
	"unsafe"

	"golang.org/x/sys/windows"
)

// SetBuffers resizes the kernel send/receive buffers for an already-open
// socket, mirroring the teacher's tcp.SetWindow Windows helper.
func (s *Socket) SetBuffers(recvBytes, sendBytes int) error {
	h := windows.Handle(s.fd)
	if recvBytes > 0 {
		v := int32(recvBytes)
		if err := windows.Setsockopt(h, windows.SOL_SOCKET, windows.SO_RCVBUF,
			(*byte)(unsafe.Pointer(&v)), int32(unsafe.Sizeof(v))); err != nil {
			return err
		}
	}
	if sendBytes > 0 {
		v := int32(sendBytes)
		if err := windows.Setsockopt(h, windows.SOL_SOCKET, windows.SO_SNDBUF,
			(*byte)(unsafe.Pointer(&v)), int32(unsafe.Sizeof(v))); err != nil {
			return err
		}
	}
	return nil
}

// GetBuffers reports the kernel's current send/receive buffer sizes,
// mirroring the teacher's tcp.GetWindow Windows helper.
func (s *Socket) GetBuffers() (recvBytes, sendBytes int, err error) {
	h := windows.Handle(s.fd)
	var rcv, snd int32
	l := int32(unsafe.Sizeof(rcv))
	if err := windows.Getsockopt(h, windows.SOL_SOCKET, windows.SO_RCVBUF,
		(*byte)(unsafe.Pointer(&rcv)), &l); err != nil {
		return 0, 0, err
	}
	l = int32(unsafe.Sizeof(snd))
	if err := windows.Getsockopt(h, windows.SOL_SOCKET, windows.SO_SNDBUF,
		(*byte)(unsafe.Pointer(&snd)), &l); err != nil {
		return 0, 0, err
	}
	return int(rcv), int(snd), nil
}
