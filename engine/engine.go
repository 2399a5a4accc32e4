// Package engine implements the capture engine of spec.md §4.6: it
// orchestrates capture → filter → rewrite → egress for every configured
// receiver and owns the Stopped/Running lifecycle state machine.
//
// Grounded on the teacher's overall package style (small, focused types
// with explicit error returns) generalized from DNS-redirection to
// broadcast relay; the rewrite math is adapted from ip/rewrite.go and
// ip/udp.go, the buffer and receiver plumbing from the bufpool,
// receivers, and headercodec packages in this module.
package engine

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/battlelan/relay/bufpool"
	"github.com/battlelan/relay/device"
	"github.com/battlelan/relay/diagnostics"
	"github.com/battlelan/relay/headercodec"
	"github.com/battlelan/relay/hostaddr"
	"github.com/battlelan/relay/packetinfo"
	"github.com/battlelan/relay/rawsocket"
	"github.com/battlelan/relay/receivers"
	"github.com/battlelan/relay/receivers/dnsservers"
)

// errMalformed marks a per-packet failure in the rewrite path — these
// are always silent and non-fatal (spec.md §7): the capture loop logs
// and continues.
var errMalformed = errors.New("engine: malformed IPv4/UDP datagram")

// Engine is the public type spec.md §6 calls the external interface. The
// zero value is not usable; construct with New.
type Engine struct {
	mu      sync.Mutex // engine_lock: guards running/capture/egress/cancel
	sendMu  sync.Mutex // send_lock: serializes egress sends
	running bool

	receivers *receivers.Set
	pool      *bufpool.Pool
	backend   Backend

	localPort    int
	poolContexts int
	localIP      net.IP
	dnsServers   []string

	logger *logrus.Entry

	capture CaptureSource
	egress  EgressSink
	cancel  context.CancelFunc
	done    chan struct{}
}

// New constructs an Engine in the Stopped state with an empty receiver
// set.
func New(opts ...Option) *Engine {
	e := &Engine{
		receivers:    receivers.New(),
		pool:         bufpool.New(),
		backend:      defaultBackend(),
		localPort:    defaultLocalPort,
		poolContexts: defaultPoolContexts,
		dnsServers:   dnsservers.Public,
		logger:       logrus.StandardLogger().WithField("component", "engine"),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.WithField("instance", device.InstanceID())
	return e
}

// IsRunning reports the engine's current lifecycle state.
func (e *Engine) IsRunning() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.running
}

// Start transitions Stopped → Running. It is idempotent: calling Start
// while already Running is a no-op that returns nil.
func (e *Engine) Start() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.running {
		return nil
	}

	if err := platformInit(); err != nil {
		return fmt.Errorf("%w: %w", ErrPlatformInit, err)
	}

	localIP := e.localIP
	if localIP == nil {
		ip, err := hostaddr.PrimaryIPv4()
		if err != nil {
			platformTeardown()
			return fmt.Errorf("%w: %w", ErrHostAddress, err)
		}
		localIP = ip
	}

	capture, err := e.backend.NewCapture(localIP, e.localPort)
	if err != nil {
		platformTeardown()
		if errors.Is(err, rawsocket.ErrBind) {
			return fmt.Errorf("%w: %w", ErrBind, err)
		}
		return fmt.Errorf("%w: %w", ErrPrivilege, err)
	}

	egress, err := e.backend.NewEgress()
	if err != nil {
		capture.Close()
		platformTeardown()
		return fmt.Errorf("%w: %w", ErrPrivilege, err)
	}

	// Pre-warm poolContexts buffers into the pool, echoing spec.md
	// §4.6 step 4's preallocated receive-operation contexts even though
	// this implementation suspends on a single dedicated goroutine
	// rather than an I/O-completion pool (spec.md §9 design notes permit
	// the substitution).
	for i := 0; i < e.poolContexts; i++ {
		e.pool.Return(e.pool.Rent(bufpool.MinCapacity))
	}

	ctx, cancel := context.WithCancel(context.Background())
	e.capture = capture
	e.egress = egress
	e.cancel = cancel
	e.done = make(chan struct{})
	e.running = true

	e.logger.WithField("local_ip", localIP.String()).Info("engine started")
	go e.captureLoop(ctx, e.done)

	return nil
}

// Stop transitions Running → Stopped. It never fails observably: all
// teardown errors are logged and swallowed (spec.md §7). Calling Stop
// while already Stopped is a no-op.
func (e *Engine) Stop() {
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return
	}
	e.running = false
	capture := e.capture
	egress := e.egress
	cancel := e.cancel
	done := e.done
	e.mu.Unlock()

	if err := capture.Close(); err != nil {
		e.logger.WithError(err).Debug("capture socket close error during stop")
	}
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		e.logger.Warn("capture task did not exit within 2s, abandoning wait")
	}

	if err := egress.Close(); err != nil {
		e.logger.WithError(err).Debug("egress socket close error during stop")
	}
	platformTeardown()

	e.mu.Lock()
	e.capture = nil
	e.egress = nil
	e.cancel = nil
	e.mu.Unlock()

	e.logger.Info("engine stopped")
}

// Dispose is idempotent: it performs Stop if needed and releases all
// resources. After Dispose the engine may be Started again.
func (e *Engine) Dispose() error {
	e.Stop()
	return nil
}

// AddReceiver resolves host (a dotted-quad literal or a hostname) and
// adds it to the receiver set. It returns true iff resolution and
// insertion both succeeded — matching spec.md §4.2's add(ip) → bool
// contract, extended to accept hostnames (see SPEC_FULL.md's
// supplemented features).
func (e *Engine) AddReceiver(host string) bool {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	ip, err := receivers.ResolveHost(ctx, host, e.dnsServers)
	if err != nil {
		e.logger.WithError(err).WithField("host", host).Debug("add_receiver: resolve failed")
		return false
	}
	if err := e.receivers.Add(ip); err != nil {
		e.logger.WithError(err).WithField("host", host).Debug("add_receiver: rejected")
		return false
	}
	return true
}

// RemoveReceiver resolves host and removes it from the receiver set, if
// present. Removing an address not in the set is a no-op.
func (e *Engine) RemoveReceiver(host string) bool {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	ip, err := receivers.ResolveHost(ctx, host, e.dnsServers)
	if err != nil {
		return false
	}
	return e.receivers.Remove(ip) == nil
}

// ClearReceivers empties the receiver set.
func (e *Engine) ClearReceivers() {
	e.receivers.Clear()
}

// ListReceivers returns a dotted-quad snapshot of the receiver set.
func (e *Engine) ListReceivers() []string {
	return e.receivers.ListStrings()
}

// ProbeReceivers ICMP-pings every current receiver, bounded by timeout,
// and returns one diagnostics.Result per receiver. This is read-only and
// never gates AddReceiver or the forward path (SPEC_FULL.md's
// supplemented reachability-probing feature).
func (e *Engine) ProbeReceivers(ctx context.Context, timeout time.Duration) []diagnostics.Result {
	return diagnostics.ProbeReceivers(e.receivers.Snapshot(), timeout)
}

// captureLoop runs as a single dedicated goroutine for the lifetime of
// one Start/Stop cycle, implementing spec.md §4.6's capture loop.
func (e *Engine) captureLoop(ctx context.Context, done chan struct{}) {
	defer close(done)

	for {
		if ctx.Err() != nil {
			return
		}

		buf := e.pool.Rent(bufpool.MinCapacity)
		n, err := e.capture.ReadPacket(buf)
		if err != nil {
			e.pool.Return(buf)
			if ctx.Err() != nil {
				return
			}
			e.logger.WithError(err).Warn("capture receive error")
			continue
		}
		if n <= 0 {
			e.pool.Return(buf)
			continue
		}

		pkt := buf[:n]
		if len(pkt) < 20 || pkt[9] != headercodec.ProtoUDP {
			e.pool.Return(buf)
			continue
		}
		dst := net.IP(pkt[16:20])
		if !dst.Equal(net.IPv4bcast) {
			e.pool.Return(buf)
			continue
		}

		e.logger.WithField("packet", packetinfo.Summarize(pkt)).Trace("forwarding broadcast")
		e.logger.WithField("hex", packetinfo.DumpHex(pkt)).Trace("captured datagram bytes")

		snapshot := e.receivers.Snapshot()
		for _, receiver := range snapshot {
			if err := e.rewriteAndSend(pkt, receiver); err != nil {
				e.logger.WithError(err).WithField("receiver", receiver.String()).Debug("forward failed")
			}
		}

		e.pool.Return(buf)
	}
}

// rewriteAndSend implements spec.md §4.5's send contract: copy, rewrite
// the destination address, recompute both checksums, and transmit under
// send_lock.
func (e *Engine) rewriteAndSend(pkt []byte, receiver net.IP) error {
	if len(pkt) < 20 {
		return errMalformed
	}
	ihl := int(pkt[0]&0x0F) * 4
	if ihl < 20 || len(pkt) < ihl+8 {
		return errMalformed
	}
	udpLen := int(headercodec.ReadU16BE(pkt, ihl+4))
	if udpLen < 8 || ihl+udpLen > len(pkt) {
		return errMalformed
	}
	payloadLen := udpLen - 8

	m := e.pool.Rent(len(pkt))
	defer e.pool.Return(m)
	copy(m, pkt)

	v4 := receiver.To4()
	if v4 == nil {
		return fmt.Errorf("%w: receiver %s is not IPv4", errMalformed, receiver)
	}
	copy(m[16:20], v4)

	headercodec.WriteU16BE(m, 10, 0)
	ipChecksum := headercodec.IPv4Checksum(m, ihl)
	headercodec.WriteU16BE(m, 10, ipChecksum)

	headercodec.WriteU16BE(m, ihl+6, 0)
	saddr := headercodec.ReadU32BE(m, 12)
	daddr := headercodec.ReadU32BE(m, 16)

	p := e.pool.Rent(payloadLen)
	defer e.pool.Return(p)
	copy(p, m[ihl+8:ihl+8+payloadLen])

	udpChecksum := headercodec.UDPv4Checksum(saddr, daddr, m[ihl:ihl+8], udpLen, p)
	headercodec.WriteU16BE(m, ihl+6, udpChecksum)

	e.sendMu.Lock()
	err := e.egress.WritePacket(m[:len(pkt)], receiver)
	e.sendMu.Unlock()
	return err
}
