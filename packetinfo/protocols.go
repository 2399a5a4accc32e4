package packetinfo

import "fmt"

// IP protocol numbers (IANA) relevant to what this engine logs about:
// the one protocol it forwards, and the handful of others commonly seen
// arriving at a LAN-facing promiscuous capture, which Summarize names
// in its proto= field.
const (
	ProtoICMP   uint8 = 1
	ProtoIGMP   uint8 = 2
	ProtoTCP    uint8 = 6
	ProtoUDP    uint8 = 17
	ProtoGRE    uint8 = 47
	ProtoESP    uint8 = 50
	ProtoAH     uint8 = 51
	ProtoICMPv6 uint8 = 58
)

var protoNames = map[uint8]string{
	ProtoICMP:   "ICMP",
	ProtoIGMP:   "IGMP",
	ProtoTCP:    "TCP",
	ProtoUDP:    "UDP",
	ProtoGRE:    "GRE",
	ProtoESP:    "ESP",
	ProtoAH:     "AH",
	ProtoICMPv6: "ICMPv6",
}

// ProtoName returns a short name for proto, or its decimal value if
// unrecognized.
func ProtoName(proto uint8) string {
	if name, ok := protoNames[proto]; ok {
		return name
	}
	return fmt.Sprintf("%d", proto)
}
