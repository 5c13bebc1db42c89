package staticd

import (
	"os"
	"testing"
	"time"

	"golang.org/x/sys/unix"
)

// noopPoller satisfies the poller interface for tests that exercise
// Connection/httpConn logic without a real event loop driving writes.
type noopPoller struct{}

func (noopPoller) addRead(fd int) error                                    { return nil }
func (noopPoller) modWrite(fd int, enableWrite bool) error                  { return nil }
func (noopPoller) remove(fd int) error                                     { return nil }
func (noopPoller) wait(timeout time.Duration, events []pollEvent) (int, error) { return 0, nil }
func (noopPoller) close() error                                            { return nil }

// newTestConnPair returns a Connection backed by one end of a connected
// AF_UNIX socket pair, and an *os.File for the peer end a test can read
// responses from or write requests into. Both ends are closed on cleanup.
func newTestConnPair(t *testing.T, router Router) (*Connection, *os.File) {
	t.Helper()

	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM, 0)
	if err != nil {
		t.Fatalf("socketpair: %v", err)
	}
	if err := unix.SetNonblock(fds[0], true); err != nil {
		t.Fatalf("set nonblock: %v", err)
	}
	// A non-blocking peer fd makes os.NewFile return a pollable *os.File,
	// so read deadlines on it take effect.
	if err := unix.SetNonblock(fds[1], true); err != nil {
		t.Fatalf("set nonblock: %v", err)
	}

	server := &Server{
		Router: router,
		conns:  make(map[int]*Connection),
	}
	server.poller = noopPoller{}

	c := &Connection{
		server:       server,
		fd:           fds[0],
		PeerAddr:     "test-peer",
		lastActivity: time.Now(),
	}
	server.conns[fds[0]] = c
	server.idle.pushBack(c)

	peer := os.NewFile(uintptr(fds[1]), "test-peer")
	t.Cleanup(func() {
		unix.Close(fds[0])
		peer.Close()
	})

	return c, peer
}
