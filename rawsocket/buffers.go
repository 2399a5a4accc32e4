package rawsocket

// recvBufferBytes and sendBufferBytes size the kernel socket buffers
// large enough to absorb a LAN party's simultaneous broadcast bursts
// without drops, matching the buffer-tuning spirit of the teacher's
// tcp.GetWindow/SetWindow helpers but applied at socket-open time
// instead of reported after the fact.
const (
	recvBufferBytes = 4 * 1024 * 1024
	sendBufferBytes = 4 * 1024 * 1024
)
