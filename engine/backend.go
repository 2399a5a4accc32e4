package engine

import "net"

// CaptureSource is the narrow surface the forward loop needs from a
// capture socket: a blocking read that unblocks cleanly when Close is
// called from another goroutine (spec.md §4.4/§5's suspension and
// cancellation contract). rawsocket.Socket and simcapture.Device both
// satisfy this.
type CaptureSource interface {
	ReadPacket(buf []byte) (int, error)
	Close() error
}

// EgressSink is the narrow surface the rewrite+send path (spec.md §4.5)
// needs from an egress socket.
type EgressSink interface {
	WritePacket(pkt []byte, dst net.IP) error
	Close() error
}

// Backend supplies the capture and egress socket constructors an engine
// uses at Start. The default is backed by rawsocket; simcapture.Backend
// substitutes a TUN device for development and integration tests that
// cannot obtain raw-socket privilege, without changing anything about
// the rewrite/forward logic under test.
type Backend struct {
	NewCapture func(bindIP net.IP, port int) (CaptureSource, error)
	NewEgress  func() (EgressSink, error)
}
