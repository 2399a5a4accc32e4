//go:build windows

package simcapture

import (
	"io"

	"github.com/songgao/water"
)

func newInterface(name string) (io.ReadWriteCloser, error) {
	cfg := water.Config{DeviceType: water.TUN}
	cfg.Name = name
	cfg.PlatformSpecificParams = water.PlatformSpecificParams{
		ComponentID: "tap0901",
		Network:     "10.253.0.1/24",
	}
	return water.New(cfg)
}
