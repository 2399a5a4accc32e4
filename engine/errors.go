package engine

import "errors"

// Error kinds surfaced by Start. Each wraps the lower-level cause with
// %w, so errors.Is still matches the underlying *net.OpError or
// syscall.Errno while callers can also branch on the kind.
var (
	// ErrPrivilege means raw socket creation, promiscuous-mode enable, or
	// the header-included option failed — almost always a permissions
	// problem. The caller should re-run elevated.
	ErrPrivilege = errors.New("engine: insufficient privilege for raw socket operation")

	// ErrPlatformInit means the platform networking subsystem failed to
	// initialise.
	ErrPlatformInit = errors.New("engine: platform network initialization failed")

	// ErrHostAddress means no IPv4 address could be determined for the
	// local host.
	ErrHostAddress = errors.New("engine: could not determine local IPv4 address")

	// ErrBind means binding the capture socket to the local address
	// failed (port in use, interface down).
	ErrBind = errors.New("engine: failed to bind capture socket")
)

// ErrBuffersUnsupported is returned by SetSocketBuffers/SocketBuffers when
// the active backend's sockets don't expose buffer tuning — simcapture's
// TUN devices, for instance, have no kernel send/receive buffer to size.
var ErrBuffersUnsupported = errors.New("engine: active backend does not support socket buffer tuning")

// ErrNotRunning is returned by SetSocketBuffers/SocketBuffers when called
// on a Stopped engine — there is no live socket to act on.
var ErrNotRunning = errors.New("engine: not running")
