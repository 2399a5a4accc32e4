package packetinfo

import "fmt"

// DumpHex renders data as a classic hex + ASCII dump, 16 bytes per line.
// Used by engine's trace-level logging to show the exact bytes of each
// captured broadcast datagram before it is rewritten and forwarded.
//
// Adapted from the teacher's util.DumpHex (which printed directly to
// stdout); this returns the rendered string instead so callers can route
// it through their own logger.
func DumpHex(data []byte) string {
	const bytesPerLine = 16
	out := ""
	for i := 0; i < len(data); i += bytesPerLine {
		end := i + bytesPerLine
		if end > len(data) {
			end = len(data)
		}
		for j := i; j < end; j++ {
			out += fmt.Sprintf("%02X ", data[j])
		}
		for j := end; j < i+bytesPerLine; j++ {
			out += "   "
		}
		out += "  "
		for j := i; j < end; j++ {
			c := data[j]
			if c >= 32 && c <= 126 {
				out += string(c)
			} else {
				out += "."
			}
		}
		out += "\n"
	}
	return out
}
