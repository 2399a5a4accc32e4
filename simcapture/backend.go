package simcapture

import (
	"net"

	"github.com/battlelan/relay/engine"
)

// Backend wires a pair of TUN devices into engine.Backend, letting an
// engine run against simulated capture/egress instead of privileged raw
// sockets. The capture and egress sides are separate TUN interfaces
// (unlike a raw socket, a TUN device is not naturally request/response
// symmetric for this relay's one-directional capture-then-send shape),
// so a test harness writes synthetic broadcasts into the capture device
// and reads rewritten unicasts back out of the egress device.
var Backend = engine.Backend{
	NewCapture: func(_ net.IP, _ int) (engine.CaptureSource, error) {
		return New("")
	},
	NewEgress: func() (engine.EgressSink, error) {
		return New("")
	},
}
