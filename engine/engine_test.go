package engine

import (
	"encoding/binary"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/battlelan/relay/headercodec"
)

// fakeCapture/fakeEgress let tests drive the engine's capture loop
// without opening real raw sockets or requiring elevated privilege.

type fakeCapture struct {
	mu     sync.Mutex
	queue  [][]byte
	cond   *sync.Cond
	closed bool
}

func newFakeCapture() *fakeCapture {
	fc := &fakeCapture{}
	fc.cond = sync.NewCond(&fc.mu)
	return fc
}

func (f *fakeCapture) inject(pkt []byte) {
	f.mu.Lock()
	f.queue = append(f.queue, pkt)
	f.cond.Signal()
	f.mu.Unlock()
}

func (f *fakeCapture) ReadPacket(buf []byte) (int, error) {
	f.mu.Lock()
	for len(f.queue) == 0 && !f.closed {
		f.cond.Wait()
	}
	if f.closed {
		f.mu.Unlock()
		return 0, net.ErrClosed
	}
	pkt := f.queue[0]
	f.queue = f.queue[1:]
	f.mu.Unlock()
	n := copy(buf, pkt)
	return n, nil
}

func (f *fakeCapture) Close() error {
	f.mu.Lock()
	f.closed = true
	f.cond.Broadcast()
	f.mu.Unlock()
	return nil
}

type sentPacket struct {
	pkt []byte
	dst net.IP
}

type fakeEgress struct {
	mu   sync.Mutex
	sent []sentPacket
}

func (f *fakeEgress) WritePacket(pkt []byte, dst net.IP) error {
	cp := make([]byte, len(pkt))
	copy(cp, pkt)
	f.mu.Lock()
	f.sent = append(f.sent, sentPacket{pkt: cp, dst: dst})
	f.mu.Unlock()
	return nil
}

func (f *fakeEgress) Close() error { return nil }

func (f *fakeEgress) snapshot() []sentPacket {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]sentPacket, len(f.sent))
	copy(out, f.sent)
	return out
}

func buildBroadcastUDP(t *testing.T, srcIP string, srcPort, dstPort uint16, payload []byte) []byte {
	t.Helper()
	udpLen := 8 + len(payload)
	pkt := make([]byte, 20+udpLen)
	pkt[0] = 0x45
	binary.BigEndian.PutUint16(pkt[2:4], uint16(len(pkt)))
	pkt[8] = 64
	pkt[9] = 17 // UDP
	copy(pkt[12:16], net.ParseIP(srcIP).To4())
	copy(pkt[16:20], net.IPv4bcast.To4())
	binary.BigEndian.PutUint16(pkt[20:22], srcPort)
	binary.BigEndian.PutUint16(pkt[22:24], dstPort)
	binary.BigEndian.PutUint16(pkt[24:26], uint16(udpLen))
	copy(pkt[28:], payload)
	return pkt
}

func newTestEngine(capture *fakeCapture, egress *fakeEgress) *Engine {
	return New(
		WithCaptureBackend(Backend{
			NewCapture: func(net.IP, int) (CaptureSource, error) { return capture, nil },
			NewEgress:  func() (EgressSink, error) { return egress, nil },
		}),
		WithLocalIP(net.ParseIP("192.168.1.10")),
	)
}

func waitForSent(t *testing.T, egress *fakeEgress, n int) []sentPacket {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if got := egress.snapshot(); len(got) >= n {
			return got
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d sent packets, got %d", n, len(egress.snapshot()))
	return nil
}

// verifyChecksums checks that an emitted datagram's IP header checksum
// verifies to zero and that its UDP checksum equals the value recomputed
// over the pseudo-header, UDP header (checksum zeroed) and payload.
func verifyChecksums(t *testing.T, pkt []byte) {
	t.Helper()
	ihl := int(pkt[0]&0x0F) * 4
	if v := headercodec.IPv4Checksum(pkt, ihl); v != 0 {
		t.Errorf("IP header checksum does not verify: recomputed %#x, want 0", v)
	}
	udpLen := int(binary.BigEndian.Uint16(pkt[ihl+4 : ihl+6]))
	udpHdr := append([]byte(nil), pkt[ihl:ihl+8]...)
	binary.BigEndian.PutUint16(udpHdr[6:8], 0)
	saddr := binary.BigEndian.Uint32(pkt[12:16])
	daddr := binary.BigEndian.Uint32(pkt[16:20])
	want := headercodec.UDPv4Checksum(saddr, daddr, udpHdr, udpLen, pkt[ihl+8:ihl+udpLen])
	if got := binary.BigEndian.Uint16(pkt[ihl+6 : ihl+8]); got != want {
		t.Errorf("UDP checksum = %#x, want %#x", got, want)
	}
}

func TestFanOutToMultipleReceivers(t *testing.T) {
	capture := newFakeCapture()
	egress := &fakeEgress{}
	e := newTestEngine(capture, egress)

	if err := e.Start(); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	defer e.Stop()

	if !e.AddReceiver("10.0.0.2") || !e.AddReceiver("10.0.0.3") {
		t.Fatal("AddReceiver() = false, want true")
	}

	pkt := buildBroadcastUDP(t, "192.168.1.10", 5000, 6000, []byte("DEADBEEF"))
	capture.inject(pkt)

	sent := waitForSent(t, egress, 2)
	gotDsts := map[string]bool{}
	for _, s := range sent {
		gotDsts[s.dst.String()] = true
		if len(s.pkt) != len(pkt) {
			t.Errorf("len(sent) = %d, want %d", len(s.pkt), len(pkt))
		}
	}
	if !gotDsts["10.0.0.2"] || !gotDsts["10.0.0.3"] {
		t.Errorf("sent destinations = %v, want 10.0.0.2 and 10.0.0.3", gotDsts)
	}
}

func TestHeaderPreservationAndChecksums(t *testing.T) {
	capture := newFakeCapture()
	egress := &fakeEgress{}
	e := newTestEngine(capture, egress)

	if err := e.Start(); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	defer e.Stop()

	if !e.AddReceiver("10.0.0.2") {
		t.Fatal("AddReceiver() = false")
	}

	pkt := buildBroadcastUDP(t, "192.168.1.10", 5000, 6000, []byte("DEADBEEF"))
	capture.inject(pkt)

	sent := waitForSent(t, egress, 1)
	got := sent[0].pkt

	if len(got) != len(pkt) {
		t.Fatalf("len(got) = %d, want %d", len(got), len(pkt))
	}

	for i := 0; i < len(pkt); i++ {
		switch {
		case i >= 10 && i < 12: // IP checksum, recomputed
		case i >= 16 && i < 20: // destination address, rewritten
		case i >= 26 && i < 28: // UDP checksum, recomputed
		default:
			if got[i] != pkt[i] {
				t.Errorf("byte %d changed: got %#x, want %#x", i, got[i], pkt[i])
			}
		}
	}

	if dst := net.IP(got[16:20]); !dst.Equal(net.ParseIP("10.0.0.2")) {
		t.Errorf("rewritten destination = %s, want 10.0.0.2", dst)
	}

	if cs := binary.BigEndian.Uint16(got[10:12]); cs == 0 && got[10] == 0 && got[11] == 0 {
		t.Errorf("IP checksum field left zero")
	}
	verifyChecksums(t, got)
}

func TestFilterDropsNonUDP(t *testing.T) {
	capture := newFakeCapture()
	egress := &fakeEgress{}
	e := newTestEngine(capture, egress)
	if err := e.Start(); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	defer e.Stop()
	e.AddReceiver("10.0.0.2")

	pkt := buildBroadcastUDP(t, "192.168.1.10", 5000, 6000, []byte("x"))
	pkt[9] = 6 // TCP
	capture.inject(pkt)

	time.Sleep(100 * time.Millisecond)
	if got := len(egress.snapshot()); got != 0 {
		t.Errorf("sent count = %d, want 0 for non-UDP datagram", got)
	}
}

func TestFilterDropsNonBroadcast(t *testing.T) {
	capture := newFakeCapture()
	egress := &fakeEgress{}
	e := newTestEngine(capture, egress)
	if err := e.Start(); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	defer e.Stop()
	e.AddReceiver("10.0.0.2")

	pkt := buildBroadcastUDP(t, "192.168.1.10", 5000, 6000, []byte("x"))
	copy(pkt[16:20], net.ParseIP("192.168.1.20").To4())
	capture.inject(pkt)

	time.Sleep(100 * time.Millisecond)
	if got := len(egress.snapshot()); got != 0 {
		t.Errorf("sent count = %d, want 0 for non-broadcast (unicast) destination", got)
	}
}

func TestEmptyReceiversProducesNoEmissions(t *testing.T) {
	capture := newFakeCapture()
	egress := &fakeEgress{}
	e := newTestEngine(capture, egress)
	if err := e.Start(); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	defer e.Stop()

	pkt := buildBroadcastUDP(t, "192.168.1.10", 5000, 6000, []byte("x"))
	capture.inject(pkt)

	time.Sleep(100 * time.Millisecond)
	if got := len(egress.snapshot()); got != 0 {
		t.Errorf("sent count = %d, want 0 with no receivers configured", got)
	}
}

func TestStartPassesConfiguredLocalPort(t *testing.T) {
	capture := newFakeCapture()
	egress := &fakeEgress{}
	var gotPort int
	e := New(
		WithCaptureBackend(Backend{
			NewCapture: func(_ net.IP, port int) (CaptureSource, error) {
				gotPort = port
				return capture, nil
			},
			NewEgress: func() (EgressSink, error) { return egress, nil },
		}),
		WithLocalIP(net.ParseIP("192.168.1.10")),
		WithLocalPort(7777),
	)

	if err := e.Start(); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	defer e.Stop()

	if gotPort != 7777 {
		t.Errorf("NewCapture received port %d, want 7777", gotPort)
	}
}

func TestLifecycleStartStopIdempotent(t *testing.T) {
	capture := newFakeCapture()
	egress := &fakeEgress{}
	e := newTestEngine(capture, egress)

	if err := e.Start(); err != nil {
		t.Fatalf("first Start() error: %v", err)
	}
	if err := e.Start(); err != nil {
		t.Fatalf("second Start() (no-op) error: %v", err)
	}
	if !e.IsRunning() {
		t.Fatal("IsRunning() = false after Start")
	}

	e.Stop()
	e.Stop() // no-op, must not panic or block

	if e.IsRunning() {
		t.Fatal("IsRunning() = true after Stop")
	}
}

func TestOddPayloadLengthChecksum(t *testing.T) {
	capture := newFakeCapture()
	egress := &fakeEgress{}
	e := newTestEngine(capture, egress)
	if err := e.Start(); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	defer e.Stop()
	e.AddReceiver("10.0.0.2")

	pkt := buildBroadcastUDP(t, "192.168.1.10", 5000, 6000, []byte("odd"))
	capture.inject(pkt)

	sent := waitForSent(t, egress, 1)
	got := sent[0].pkt
	if len(got) != len(pkt) {
		t.Fatalf("len(got) = %d, want %d", len(got), len(pkt))
	}
	verifyChecksums(t, got)
}

// bufferedFakeCapture additionally implements bufferTuner, standing in
// for rawsocket.Socket in tests that exercise SetSocketBuffers/
// SocketBuffers without opening a real raw socket.
type bufferedFakeCapture struct {
	*fakeCapture
	recv, send int
}

func (b *bufferedFakeCapture) SetBuffers(recvBytes, sendBytes int) error {
	b.recv, b.send = recvBytes, sendBytes
	return nil
}

func (b *bufferedFakeCapture) GetBuffers() (int, int, error) {
	return b.recv, b.send, nil
}

type bufferedFakeEgress struct {
	*fakeEgress
	recv, send int
}

func (b *bufferedFakeEgress) SetBuffers(recvBytes, sendBytes int) error {
	b.recv, b.send = recvBytes, sendBytes
	return nil
}

func (b *bufferedFakeEgress) GetBuffers() (int, int, error) {
	return b.recv, b.send, nil
}

func TestSetSocketBuffersUnsupportedBackend(t *testing.T) {
	capture := newFakeCapture()
	egress := &fakeEgress{}
	e := newTestEngine(capture, egress)
	if err := e.Start(); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	defer e.Stop()

	if err := e.SetSocketBuffers(1<<20, 1<<20); err != ErrBuffersUnsupported {
		t.Errorf("SetSocketBuffers() error = %v, want ErrBuffersUnsupported", err)
	}
}

func TestSetSocketBuffersNotRunning(t *testing.T) {
	e := New(WithLocalIP(net.ParseIP("192.168.1.10")))
	if err := e.SetSocketBuffers(1<<20, 1<<20); err != ErrNotRunning {
		t.Errorf("SetSocketBuffers() error = %v, want ErrNotRunning", err)
	}
}

func TestSetSocketBuffersPassthrough(t *testing.T) {
	capture := &bufferedFakeCapture{fakeCapture: newFakeCapture()}
	egress := &bufferedFakeEgress{fakeEgress: &fakeEgress{}}
	e := New(
		WithCaptureBackend(Backend{
			NewCapture: func(net.IP, int) (CaptureSource, error) { return capture, nil },
			NewEgress:  func() (EgressSink, error) { return egress, nil },
		}),
		WithLocalIP(net.ParseIP("192.168.1.10")),
	)
	if err := e.Start(); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	defer e.Stop()

	if err := e.SetSocketBuffers(2<<20, 3<<20); err != nil {
		t.Fatalf("SetSocketBuffers() error: %v", err)
	}
	if capture.recv != 2<<20 || egress.recv != 2<<20 || egress.send != 3<<20 {
		t.Errorf("buffers not applied: capture=%+v egress=%+v", capture, egress)
	}

	recv, send, err := e.SocketBuffers()
	if err != nil {
		t.Fatalf("SocketBuffers() error: %v", err)
	}
	if recv != 2<<20 || send != 3<<20 {
		t.Errorf("SocketBuffers() = (%d, %d), want (%d, %d)", recv, send, 2<<20, 3<<20)
	}
}

func TestDisposeReleasesResources(t *testing.T) {
	capture := newFakeCapture()
	egress := &fakeEgress{}
	e := newTestEngine(capture, egress)
	if err := e.Start(); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	if err := e.Dispose(); err != nil {
		t.Fatalf("Dispose() error: %v", err)
	}
	if e.IsRunning() {
		t.Fatal("IsRunning() = true after Dispose")
	}
	if err := e.Dispose(); err != nil {
		t.Fatalf("second Dispose() error: %v", err)
	}
}
