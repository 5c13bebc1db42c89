package staticd

import "time"

// pollEvent reports readiness for a single registered file descriptor.
type pollEvent struct {
	fd       int
	readable bool
	writable bool
	// hungup indicates the peer-hangup condition some pollers report
	// alongside readability (EPOLLRDHUP); treated the same as a readable
	// event that will surface EOF on the next read.
	hungup bool
}

// poller is the minimal readiness-multiplexer contract the reactor needs:
// register a listening or connection fd for read-readiness, enable/disable
// write-readiness on an already-registered fd, deregister a fd, and block
// for a batch of ready descriptors. Implementations are edge-triggered.
//
// Two implementations exist, selected at compile time by GOOS, the same way
// fasthttp's tcplisten/reuseport packages split Linux-specific syscalls
// (SO_REUSEPORT, TCP_DEFER_ACCEPT) from their BSD/Darwin equivalents.
type poller interface {
	addRead(fd int) error
	modWrite(fd int, enableWrite bool) error
	remove(fd int) error
	wait(timeout time.Duration, events []pollEvent) (int, error)
	close() error
}
