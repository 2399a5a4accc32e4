// Package diagnostics implements the supplemented reachability probe:
// an ICMP echo check the engine can run against its receiver set to
// report which targets are actually answering on the LAN, separate
// from (and never a precondition of) forwarding traffic to them.
package diagnostics

import (
	"errors"
	"math/rand"
	"net"
	"os"
	"time"

	"golang.org/x/net/icmp"
	"golang.org/x/net/ipv4"
)

// ErrNilTarget is returned when Ping is called with a nil address.
var ErrNilTarget = errors.New("diagnostics: nil target IP")

// Ping sends one ICMP echo to target and returns the round-trip time.
// It requires the same elevated privileges as the raw capture socket,
// so the engine treats a permission error here as informational, never
// fatal — a receiver that can't be pinged can still receive forwarded
// game traffic.
func Ping(target net.IP, timeout time.Duration) (time.Duration, error) {
	if target == nil {
		return 0, ErrNilTarget
	}

	conn, err := icmp.ListenPacket("ip4:icmp", "")
	if err != nil {
		return 0, err
	}
	defer conn.Close()

	id := (os.Getpid() & 0xffff) ^ rand.Intn(0xffff)
	seq := rand.Intn(0xffff)

	msg := icmp.Message{
		Type: ipv4.ICMPTypeEcho,
		Code: 0,
		Body: &icmp.Echo{
			ID:   id,
			Seq:  seq,
			Data: []byte("battlelan-probe"),
		},
	}
	b, err := msg.Marshal(nil)
	if err != nil {
		return 0, err
	}

	start := time.Now()
	deadline := start.Add(timeout)
	dst := &net.IPAddr{IP: target}

	if _, err := conn.WriteTo(b, dst); err != nil {
		return 0, err
	}

	reply := make([]byte, 1500)
	for {
		if err := conn.SetDeadline(deadline); err != nil {
			return 0, err
		}

		n, _, err := conn.ReadFrom(reply)
		if err != nil {
			return 0, err
		}

		rm, err := icmp.ParseMessage(1, reply[:n])
		if err != nil {
			continue
		}

		if rm.Type != ipv4.ICMPTypeEchoReply {
			continue
		}
		body, ok := rm.Body.(*icmp.Echo)
		if !ok {
			continue
		}
		if body.ID == id && body.Seq == seq {
			return time.Since(start), nil
		}

		if time.Now().After(deadline) {
			return 0, errors.New("diagnostics: timeout waiting for matching ICMP reply")
		}
	}
}

// Result is one target's probe outcome.
type Result struct {
	Addr      net.IP
	Reachable bool
	RTT       time.Duration
	Err       error
}

// ProbeReceivers pings every address in targets concurrently, each
// bounded by timeout, and returns one Result per target in the same
// order they were given.
func ProbeReceivers(targets []net.IP, timeout time.Duration) []Result {
	results := make([]Result, len(targets))
	done := make(chan struct{})
	remaining := len(targets)
	if remaining == 0 {
		return results
	}

	for i, addr := range targets {
		go func(i int, addr net.IP) {
			rtt, err := Ping(addr, timeout)
			results[i] = Result{Addr: addr, Reachable: err == nil, RTT: rtt, Err: err}
			done <- struct{}{}
		}(i, addr)
	}

	for range targets {
		<-done
	}
	return results
}
