// Package packetinfo renders captured or rewritten IPv4 datagrams as
// human-readable strings for diagnostic logging. Nothing here is on the
// capture/rewrite/egress hot path (spec.md §4.4–§4.5) — it exists purely
// so engine can produce a useful trace line when it forwards a packet
// (the engine does not log the packets it drops).
//
// Adapted from the teacher's ip/summarize.go (trimmed to the UDP case
// this engine actually handles; the teacher's TCP/ICMP branches don't
// apply — this engine never forwards either) and ip/protocols.go (IANA
// protocol-number names, used by Summarize for non-UDP datagrams).
package packetinfo

import (
	"encoding/binary"
	"fmt"
	"net"
)

// Summarize renders a one-line summary of an IPv4 datagram: addresses,
// total length, and — for UDP — ports and payload size. Non-UDP and
// non-IPv4 datagrams get a short notice instead, since this engine drops
// them before ever reaching the rewrite path (spec.md §4.6 step 3).
func Summarize(pkt []byte) string {
	if len(pkt) < 1 {
		return "invalid packet (too short)"
	}
	if version := pkt[0] >> 4; version != 4 {
		return fmt.Sprintf("unsupported IP version %d (not IPv4)", version)
	}
	if len(pkt) < 20 {
		return "invalid IPv4 packet (too short)"
	}

	ihl := int(pkt[0]&0x0F) * 4
	if ihl < 20 || len(pkt) < ihl {
		return "invalid IPv4 header length"
	}

	totalLen := int(binary.BigEndian.Uint16(pkt[2:4]))
	if totalLen > len(pkt) {
		totalLen = len(pkt)
	}
	proto := pkt[9]
	srcIP := net.IP(pkt[12:16])
	dstIP := net.IP(pkt[16:20])

	if proto != ProtoUDP {
		return fmt.Sprintf("IPv4 %s→%s | proto=%s | %dB", srcIP, dstIP, ProtoName(proto), maxInt(totalLen-ihl, 0))
	}
	return summarizeUDP(pkt, ihl, totalLen, srcIP, dstIP)
}

func summarizeUDP(pkt []byte, ihl, totalLen int, srcIP, dstIP net.IP) string {
	if len(pkt) < ihl+8 {
		return fmt.Sprintf("IPv4 %s→%s UDP | truncated header", srcIP, dstIP)
	}
	udp := pkt[ihl:]
	srcPort := binary.BigEndian.Uint16(udp[0:2])
	dstPort := binary.BigEndian.Uint16(udp[2:4])
	udpLen := int(binary.BigEndian.Uint16(udp[4:6]))
	payloadLen := maxInt(udpLen-8, 0)
	if udpLen > totalLen-ihl {
		payloadLen = maxInt(totalLen-ihl-8, 0)
	}
	return fmt.Sprintf("IPv4 %s:%d→%s:%d UDP | %dB payload", srcIP, srcPort, dstIP, dstPort, payloadLen)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
