//go:build darwin

package simcapture

import (
	"io"

	"github.com/songgao/water"
)

func newInterface(_ string) (io.ReadWriteCloser, error) {
	// macOS utun devices are kernel-assigned; water ignores any
	// requested name here, same as the teacher's darwin TUN opener.
	return water.New(water.Config{DeviceType: water.TUN})
}
