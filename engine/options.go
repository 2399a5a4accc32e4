package engine

import (
	"net"

	"github.com/sirupsen/logrus"

	"github.com/battlelan/relay/rawsocket"
)

// defaultLocalPort is the port the capture socket binds to. It is
// arbitrary and never used for filtering — promiscuous mode delivers
// every IPv4 datagram on the interface regardless of port (spec.md
// §4.4) — but a fixed, documented value makes EBind failures
// reproducible to diagnose ("something else is bound to 6000").
const defaultLocalPort = 6000

// defaultPoolContexts mirrors the ~4 receive-operation contexts spec.md
// §4.6/§5 preallocates at Start.
const defaultPoolContexts = 4

// Option configures an Engine constructed by New.
type Option func(*Engine)

// WithLogger overrides the engine's logrus logger. The default is
// logrus.StandardLogger().
func WithLogger(logger *logrus.Logger) Option {
	return func(e *Engine) {
		e.logger = logger.WithField("component", "engine")
	}
}

// WithCaptureBackend overrides how the engine opens its capture and
// egress sockets. The default uses rawsocket; simcapture.Backend is the
// TUN-backed alternative for unprivileged test environments.
func WithCaptureBackend(backend Backend) Option {
	return func(e *Engine) {
		e.backend = backend
	}
}

// WithLocalPort overrides the port the capture socket binds to.
func WithLocalPort(port int) Option {
	return func(e *Engine) {
		e.localPort = port
	}
}

// WithPoolContexts overrides how many receive-buffer contexts are
// pre-warmed into the buffer pool at Start.
func WithPoolContexts(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.poolContexts = n
		}
	}
}

// WithLocalIP pins the address the capture socket binds to, bypassing
// hostaddr.PrimaryIPv4 resolution at Start — useful in tests and on
// multi-homed hosts where the primary hostname address is not the
// interface the game traffic arrives on.
func WithLocalIP(ip net.IP) Option {
	return func(e *Engine) {
		e.localIP = ip
	}
}

// WithDNSServers overrides the resolver list receivers.ResolveHost races
// when AddReceiver is given a hostname instead of a literal address.
func WithDNSServers(servers []string) Option {
	return func(e *Engine) {
		e.dnsServers = servers
	}
}

func defaultBackend() Backend {
	return Backend{
		NewCapture: func(bindIP net.IP, port int) (CaptureSource, error) {
			return rawsocket.NewCapture(bindIP, port)
		},
		NewEgress: func() (EgressSink, error) {
			return rawsocket.NewEgress()
		},
	}
}
