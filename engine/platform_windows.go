//go:build windows

package engine

import "golang.org/x/sys/windows"

// platformInit runs Winsock startup (spec.md §4.6 step 1), matching
// what any Windows process using raw sockets directly through
// golang.org/x/sys/windows must do itself rather than relying on the
// standard net package's lazy initialization.
func platformInit() error {
	var data windows.WSAData
	return windows.WSAStartup(uint32(0x0202), &data)
}

func platformTeardown() {
	_ = windows.WSACleanup()
}
