// Package dnsservers holds small default server lists for
// receivers.ResolveHost's racing lookups, for callers that don't want
// to supply their own.
package dnsservers

// Public is a short list of well-known public DNS resolvers, suitable
// as a default set for LAN parties that have no internal DNS of their
// own but still want hostname-based receiver registration to work.
var Public = []string{
	"8.8.8.8:53",        // Google DNS
	"1.1.1.1:53",        // Cloudflare DNS
	"208.67.222.222:53", // OpenDNS
	"9.9.9.9:53",        // Quad9
}
