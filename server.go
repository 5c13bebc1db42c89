package staticd

import (
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sys/unix"
)

// Config holds the reactor's tunables, populated by cmd/staticd/main.go
// from its CLI flags.
type Config struct {
	// Port is the TCP port to listen on.
	Port int

	// ConnTimeout is the inactivity window after which an idle
	// connection is closed. Zero disables inactivity eviction.
	ConnTimeout time.Duration
}

// Server is the single-threaded, non-blocking reactor described in §5: one
// listening socket, one poller, and a set of accepted Connections linked
// into an LRU list for inactivity eviction.
//
// Modelled on original_source/src/tcp_server.c's tcp_server_t / tcp_server_run
// and, for the Go idiom of its public surface (Serve/exported config
// fields), on fasthttp's Server type.
type Server struct {
	Config

	// Router dispatches parsed requests; if nil, connections are accepted
	// and requests parsed, but no response is written for them (the
	// engine's own 431 is the only response sent).
	Router Router

	// Logger receives diagnostic output; defaultLogger is used if nil.
	Logger Logger

	listenFD int
	poller   poller
	idle     idleList
	conns    map[int]*Connection

	pendingFree []*Connection

	// running is read on every loop iteration and written from Stop,
	// which may be called from a signal-handling goroutine; an atomic
	// flag is this package's equivalent of the source's async-signal-safe
	// write to a volatile run flag (§5's Signal handling).
	running int32
}

// ListenAndServe binds the listening socket and runs the event loop until
// Stop is called. It returns an error only when setup fails; an error from
// the poller's wait is logged and the loop continues.
func (s *Server) ListenAndServe() error {
	fd, err := newListeningSocket(s.Port)
	if err != nil {
		return err
	}
	s.listenFD = fd

	p, err := newPoller()
	if err != nil {
		unix.Close(s.listenFD)
		return fmt.Errorf("staticd: cannot create poller: %w", err)
	}
	s.poller = p

	if err := s.poller.addRead(s.listenFD); err != nil {
		s.poller.close()
		unix.Close(s.listenFD)
		return fmt.Errorf("staticd: cannot register listening socket: %w", err)
	}

	s.conns = make(map[int]*Connection)
	atomic.StoreInt32(&s.running, 1)

	return s.loop()
}

// Stop requests the event loop to exit after its current iteration. Safe
// to call from any goroutine, including a signal handler.
func (s *Server) Stop() {
	atomic.StoreInt32(&s.running, 0)
}

func (s *Server) loop() error {
	events := make([]pollEvent, maxEvents)
	readBuf := make([]byte, readBufferSize)

	timeout := epollCheckInterval
	if s.ConnTimeout <= 0 {
		timeout = -1
	}

	for atomic.LoadInt32(&s.running) != 0 {
		n, err := s.poller.wait(timeout, events)
		if err != nil {
			s.logger().Printf("staticd: poller wait error: %v", err)
			continue
		}

		for i := 0; i < n; i++ {
			ev := events[i]
			if ev.fd == s.listenFD {
				s.acceptLoop()
				continue
			}

			c := s.conns[ev.fd]
			if c == nil || c.closed {
				continue
			}

			if ev.writable {
				c.drainWrite()
			}
			if c.closed {
				continue
			}
			if ev.readable || ev.hungup {
				s.readConn(c, readBuf)
			}
		}

		s.reclaimClosed()

		if s.ConnTimeout > 0 {
			s.evictIdle()
		}
	}

	return s.destroy()
}

// acceptLoop drains the listening socket's backlog, accepting every pending
// connection until EAGAIN, per §4's "accept until exhausted" edge-triggered
// discipline.
func (s *Server) acceptLoop() {
	for {
		fd, peerAddr, err := acceptNonblocking(s.listenFD)
		if err != nil {
			if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
				return
			}
			s.logger().Printf("staticd: accept error: %v", err)
			return
		}

		c := &Connection{
			server:       s,
			fd:           fd,
			PeerAddr:     peerAddr,
			lastActivity: time.Now(),
		}
		s.conns[fd] = c
		s.idle.pushBack(c)

		if err := s.poller.addRead(fd); err != nil {
			s.logger().Printf("staticd: cannot register accepted socket: %v", err)
			c.Close()
			continue
		}

		if s.Router != nil {
			s.Router.OnConnect(c)
		}
	}
}

// readConn drains fd until EAGAIN, feeding every chunk through the HTTP
// state machine, per the edge-triggered "read until exhausted" discipline.
func (s *Server) readConn(c *Connection, buf []byte) {
	for {
		n, err := unix.Read(c.fd, buf)
		if n > 0 {
			c.lastActivity = time.Now()
			s.idle.moveToBack(c)
			if serr := c.http.onData(c, buf[:n]); serr != nil {
				handleConnError(c, serr)
				return
			}
			if c.closed {
				return
			}
		}
		if err != nil {
			if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
				return
			}
			c.Close()
			return
		}
		if n == 0 {
			c.Close()
			return
		}
	}
}

// reclaimClosed drops this iteration's closed connections from the conns
// map, deferred until after event dispatch completes — see §4's
// use-after-free note. A connection closed mid-batch can still be looked
// up for a later coalesced event in the same batch; the loop skips it by
// its closed flag.
func (s *Server) reclaimClosed() {
	if len(s.pendingFree) == 0 {
		return
	}
	for _, c := range s.pendingFree {
		delete(s.conns, c.fd)
	}
	s.pendingFree = s.pendingFree[:0]
}

// evictIdle walks the LRU list from its head (least recently active) and
// closes every connection that has exceeded ConnTimeout, stopping at the
// first connection still within the window since everything after it in
// the list is more recently active.
func (s *Server) evictIdle() {
	deadline := time.Now().Add(-s.ConnTimeout)
	for c := s.idle.head; c != nil; {
		next := c.next
		if c.lastActivity.After(deadline) {
			return
		}
		c.Close()
		c = next
	}
	s.reclaimClosed()
}

func (s *Server) destroy() error {
	for _, c := range s.conns {
		c.Close()
	}
	s.reclaimClosed()

	if s.poller != nil {
		s.poller.close()
	}
	if s.listenFD != 0 {
		unix.Close(s.listenFD)
	}
	return nil
}
