//go:build linux

package simcapture

import (
	"io"

	"github.com/songgao/water"
)

func newInterface(name string) (io.ReadWriteCloser, error) {
	cfg := water.Config{DeviceType: water.TUN}
	cfg.Name = name
	return water.New(cfg)
}
