// Package simcapture provides a non-privileged stand-in for rawsocket's
// capture/egress sockets, backed by a TUN device instead of a raw
// AF_INET socket. It exists for development and integration testing: a
// raw socket needs root/administrator rights, but an engine wired
// against a TUN device can be exercised by an unprivileged test process
// feeding it IPv4 datagrams directly.
package simcapture

import (
	"io"
	"net"

	"github.com/songgao/water"
)

// Device is a TUN-backed substitute for rawsocket.Socket. It satisfies
// the same narrow ReadPacket/WritePacket/Close surface the engine's
// forward loop depends on, so engine.New can take either one through
// the CaptureSource/EgressSink interfaces.
type Device struct {
	iface io.ReadWriteCloser
	name  string
}

// New creates (or attaches to, if persistent) a TUN device named name.
// An empty name lets the OS assign one.
func New(name string) (*Device, error) {
	iface, err := newInterface(name)
	if err != nil {
		return nil, err
	}
	devName := name
	if wi, ok := iface.(*water.Interface); ok {
		devName = wi.Name()
	}
	return &Device{iface: iface, name: devName}, nil
}

// Name returns the OS-assigned device name.
func (d *Device) Name() string {
	return d.name
}

// ReadPacket reads one IPv4 datagram from the TUN device into buf.
func (d *Device) ReadPacket(buf []byte) (int, error) {
	return d.iface.Read(buf)
}

// WritePacket writes a fully-formed IPv4 datagram to the TUN device.
// dst is accepted only to satisfy the same signature as
// rawsocket.Socket.WritePacket — TUN delivery is local-only and does
// not route by destination address the way a raw socket send does.
func (d *Device) WritePacket(pkt []byte, _ net.IP) error {
	_, err := d.iface.Write(pkt)
	return err
}

// Close tears down the TUN device.
func (d *Device) Close() error {
	return d.iface.Close()
}
