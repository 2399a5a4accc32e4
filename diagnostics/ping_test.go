package diagnostics

import (
	"errors"
	"net"
	"os"
	"testing"
	"time"
)

func TestPingNilTarget(t *testing.T) {
	if _, err := Ping(nil, time.Second); !errors.Is(err, ErrNilTarget) {
		t.Errorf("Ping(nil) error = %v, want ErrNilTarget", err)
	}
}

func TestPingRequiresPrivilege(t *testing.T) {
	_, err := Ping(net.ParseIP("127.0.0.1"), 200*time.Millisecond)
	if err != nil && errors.Is(err, os.ErrPermission) {
		t.Skipf("ICMP echo requires elevated privileges: %v", err)
	}
}

func TestProbeReceiversEmpty(t *testing.T) {
	results := ProbeReceivers(nil, time.Second)
	if len(results) != 0 {
		t.Errorf("ProbeReceivers(nil) = %v, want empty", results)
	}
}

func TestProbeReceiversOrderMatchesInput(t *testing.T) {
	targets := []net.IP{net.ParseIP("192.168.1.1"), net.ParseIP("192.168.1.2")}
	results := ProbeReceivers(targets, 50*time.Millisecond)
	if len(results) != 2 {
		t.Fatalf("len(results) = %d, want 2", len(results))
	}
	for i, want := range targets {
		if !results[i].Addr.Equal(want) {
			t.Errorf("results[%d].Addr = %s, want %s", i, results[i].Addr, want)
		}
	}
}
