package hostaddr

import (
	"errors"
	"net"
	"time"
)

func outboundInterface(timeout time.Duration) (*Interface, error) {
	targets := []string{"8.8.8.8:53", "114.114.114.114:53"}

	type result struct {
		iface *Interface
		err   error
	}
	ch := make(chan result, len(targets))

	for _, target := range targets {
		go func(tgt string) {
			iface, err := interfaceViaTarget(tgt)
			ch <- result{iface: iface, err: err}
		}(target)
	}

	deadline := time.After(timeout)
	for range targets {
		select {
		case res := <-ch:
			if res.err == nil && res.iface != nil {
				return res.iface, nil
			}
		case <-deadline:
			return nil, errors.New("hostaddr: timeout detecting outbound interface")
		}
	}
	return nil, errors.New("hostaddr: failed to find outbound interface")
}

func interfaceViaTarget(target string) (*Interface, error) {
	conn, err := net.Dial("udp", target)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	local := conn.LocalAddr().(*net.UDPAddr)

	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, err
	}

	for _, iface := range ifaces {
		addrs, _ := iface.Addrs()
		for _, addr := range addrs {
			var ip net.IP
			switch v := addr.(type) {
			case *net.IPNet:
				ip = v.IP
			case *net.IPAddr:
				ip = v.IP
			}
			if ip != nil && ip.Equal(local.IP) {
				return &Interface{Name: iface.Name, IPv4: ip.String()}, nil
			}
		}
	}
	return nil, errors.New("hostaddr: could not match local address to an interface")
}
