package engine

// bufferTuner is satisfied by rawsocket.Socket (both the capture and
// egress sides) but not by simcapture.Device — buffer tuning is an
// optional capability of a backend, not part of the narrow
// CaptureSource/EgressSink contract every backend must satisfy.
type bufferTuner interface {
	SetBuffers(recvBytes, sendBytes int) error
	GetBuffers() (recvBytes, sendBytes int, err error)
}

// SetSocketBuffers resizes the kernel send/receive buffers on the engine's
// live capture and egress sockets (SPEC_FULL.md's socket-buffer-tuning
// supplement), letting a control surface raise them past the defaults
// rawsocket opens with once a LAN party's traffic volume is known. It
// returns ErrNotRunning if the engine is Stopped and ErrBuffersUnsupported
// if the active backend's sockets don't implement bufferTuner.
func (e *Engine) SetSocketBuffers(recvBytes, sendBytes int) error {
	e.mu.Lock()
	capture, egress := e.capture, e.egress
	e.mu.Unlock()

	if capture == nil || egress == nil {
		return ErrNotRunning
	}

	ct, ok := capture.(bufferTuner)
	if !ok {
		return ErrBuffersUnsupported
	}
	et, ok := egress.(bufferTuner)
	if !ok {
		return ErrBuffersUnsupported
	}

	if err := ct.SetBuffers(recvBytes, sendBytes); err != nil {
		return err
	}
	return et.SetBuffers(recvBytes, sendBytes)
}

// SocketBuffers reports the capture socket's current kernel buffer sizes.
func (e *Engine) SocketBuffers() (recvBytes, sendBytes int, err error) {
	e.mu.Lock()
	capture := e.capture
	e.mu.Unlock()

	if capture == nil {
		return 0, 0, ErrNotRunning
	}

	ct, ok := capture.(bufferTuner)
	if !ok {
		return 0, 0, ErrBuffersUnsupported
	}
	return ct.GetBuffers()
}
