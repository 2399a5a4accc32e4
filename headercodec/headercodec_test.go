package headercodec

import (
	"encoding/binary"
	"net"
	"testing"
)

func TestReadWriteU16BE(t *testing.T) {
	buf := make([]byte, 4)
	WriteU16BE(buf, 1, 0xBEEF)
	if got := ReadU16BE(buf, 1); got != 0xBEEF {
		t.Errorf("ReadU16BE = %#x, want 0xBEEF", got)
	}
}

func TestReadWriteU32BE(t *testing.T) {
	buf := make([]byte, 6)
	WriteU32BE(buf, 1, 0xDEADBEEF)
	if got := ReadU32BE(buf, 1); got != 0xDEADBEEF {
		t.Errorf("ReadU32BE = %#x, want 0xDEADBEEF", got)
	}
}

func TestIPv4ChecksumZeroInput(t *testing.T) {
	if got := IPv4Checksum(nil, 0); got != 0xFFFF {
		t.Errorf("IPv4Checksum(nil) = %#x, want 0xFFFF", got)
	}
}

// TestIPv4ChecksumSelfVerifies checks that writing the computed checksum
// back into the header and recomputing yields zero — the standard
// self-verification property of the Internet checksum.
func TestIPv4ChecksumSelfVerifies(t *testing.T) {
	hdr := buildIPv4Header(t, "192.168.1.10", "255.255.255.255", 5, 28)
	cs := IPv4Checksum(hdr, 20)
	WriteU16BE(hdr, 10, cs)

	if got := IPv4Checksum(hdr, 20); got != 0 {
		t.Errorf("checksum self-check = %#x, want 0", got)
	}
}

func TestUDPv4ChecksumOddPayload(t *testing.T) {
	saddr := ipToU32(t, "192.168.1.10")
	daddr := ipToU32(t, "10.0.0.2")

	udpHeader := make([]byte, 8)
	WriteU16BE(udpHeader, 0, 5000)
	WriteU16BE(udpHeader, 2, 6000)
	WriteU16BE(udpHeader, 4, 11) // 8 header + 3 payload

	payload := []byte{0xDE, 0xAD, 0xBE} // odd length

	cs := UDPv4Checksum(saddr, daddr, udpHeader, 11, payload)
	WriteU16BE(udpHeader, 6, cs)

	// Recomputing over the now-filled-in header must match.
	udpHeader2 := append([]byte(nil), udpHeader...)
	WriteU16BE(udpHeader2, 6, 0)
	recomputed := UDPv4Checksum(saddr, daddr, udpHeader2, 11, payload)
	if recomputed != cs {
		t.Errorf("recomputed checksum = %#x, want %#x", recomputed, cs)
	}
}

func TestUDPv4ChecksumNoZeroSpecialCase(t *testing.T) {
	// All-zero addresses and header: the only non-zero pseudo-header
	// words are the protocol (17) and the UDP length (8), so the sum is
	// 25 and the result is ^25 = 0xFFE6.
	saddr := ipToU32(t, "0.0.0.0")
	daddr := ipToU32(t, "0.0.0.0")
	udpHeader := make([]byte, 8)
	got := UDPv4Checksum(saddr, daddr, udpHeader, 8, nil)
	if got != ^uint16(ProtoUDP+8) {
		t.Errorf("UDPv4Checksum all-zero = %#x, want %#x", got, ^uint16(ProtoUDP+8))
	}

	// A source address of 0.0.255.230 (0xFFE6) brings the sum to exactly
	// 0xFFFF, whose complement is 0: the literal zero must be returned,
	// not rewritten to 0xFFFF.
	saddr = ipToU32(t, "0.0.255.230")
	if got := UDPv4Checksum(saddr, daddr, udpHeader, 8, nil); got != 0 {
		t.Errorf("UDPv4Checksum with folded sum 0xFFFF = %#x, want 0", got)
	}
}

func buildIPv4Header(t *testing.T, src, dst string, ihlWords int, totalLen int) []byte {
	t.Helper()
	hdr := make([]byte, ihlWords*4)
	hdr[0] = byte(0x40 | ihlWords)
	WriteU16BE(hdr, 2, uint16(totalLen))
	hdr[8] = 64
	hdr[9] = ProtoUDP
	copy(hdr[12:16], net.ParseIP(src).To4())
	copy(hdr[16:20], net.ParseIP(dst).To4())
	return hdr
}

func ipToU32(t *testing.T, s string) uint32 {
	t.Helper()
	ip := net.ParseIP(s).To4()
	if ip == nil {
		t.Fatalf("invalid IPv4 literal %q", s)
	}
	return binary.BigEndian.Uint32(ip)
}
