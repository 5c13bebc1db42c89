package staticd

import (
	"time"

	"github.com/valyala/bytebufferpool"
	"golang.org/x/sys/unix"
)

// Connection is a single accepted socket, owned by the Server. It embeds
// the HTTP sub-state (httpConn) that drives the per-connection parser and
// request dispatch, and the prev/next links of the server's intrusive LRU
// list (idlelist.go).
//
// Modelled on original_source/src/tcp_server.c's tcp_conn_t, folding in the
// http_conn_t sub-state the C source keeps as a separate allocation linked
// via Connection.UserData.
type Connection struct {
	server *Server

	fd       int
	PeerAddr string

	lastActivity time.Time
	prev, next   *Connection // idleList links

	outBuf        *bytebufferpool.ByteBuffer
	outSent       int
	writeArmed    bool
	writeOnClose  bool // set when the last queued write should close the conn once drained

	http httpConn

	closed bool

	// UserData is opaque storage a Router's OnConnect hook may populate
	// and read back on every subsequent callback for this connection,
	// preserving the original's tcp_conn_t.data hook (see §9 Design Notes).
	UserData interface{}

	logger connLogger
}

// Fd returns the connection's raw file descriptor, primarily useful to
// Router implementations that want to log it.
func (c *Connection) Fd() int { return c.fd }

// Logger returns a Logger that stamps every message with this connection's
// peer address, mirroring RequestCtx.Logger() in the teacher.
func (c *Connection) Logger() Logger {
	if c.logger.logger == nil {
		c.logger.logger = c.server.logger()
		c.logger.conn = c
	}
	return &c.logger
}

func (c *Connection) touch() {
	c.lastActivity = time.Now()
	c.server.idle.moveToBack(c)
}

// Send implements §4.1's write path: if the outbound buffer is empty,
// attempt a direct write; on a short write or EAGAIN, buffer the remainder
// and arm write-readiness. Safe to call from a Router's OnRequest callback.
func (c *Connection) Send(data []byte) error {
	if c.closed {
		return ErrIO
	}
	if len(data) == 0 {
		return nil
	}

	if c.outBuf == nil || len(c.outBuf.B) == c.outSent {
		n, err := unix.Write(c.fd, data)
		if err != nil && err != unix.EAGAIN && err != unix.EWOULDBLOCK {
			return ErrIO
		}
		if n < 0 {
			n = 0
		}
		if n == len(data) {
			c.lastActivity = time.Now()
			c.server.idle.moveToBack(c)
			return nil
		}
		return c.queueRemainder(data[n:])
	}

	return c.queueRemainder(data)
}

// queueRemainder appends data to the outbound buffer (growing it by
// doubling, clamped to the minimum required, per §4.1) and arms
// write-readiness on the poller.
func (c *Connection) queueRemainder(data []byte) error {
	if c.outBuf == nil {
		c.outBuf = acquireOutBuf()
		c.outSent = 0
	}
	if c.outSent > 0 {
		remaining := c.outBuf.B[c.outSent:]
		c.outBuf.B = append(c.outBuf.B[:0], remaining...)
		c.outSent = 0
	}
	c.growOutBufFor(len(data))
	c.outBuf.B = append(c.outBuf.B, data...)

	if !c.writeArmed {
		if err := c.server.poller.modWrite(c.fd, true); err != nil {
			return ErrIO
		}
		c.writeArmed = true
	}
	return nil
}

// growOutBufFor ensures the outbound buffer has at least extra bytes of
// spare capacity, doubling capacity starting from
// initialWriteBufferCapacity and clamping to the minimum required size, as
// §4.1 specifies.
func (c *Connection) growOutBufFor(extra int) {
	need := len(c.outBuf.B) + extra
	newCap := cap(c.outBuf.B)
	if newCap == 0 {
		newCap = initialWriteBufferCapacity
	}
	for newCap < need {
		newCap *= 2
	}
	if newCap > cap(c.outBuf.B) {
		grown := make([]byte, len(c.outBuf.B), newCap)
		copy(grown, c.outBuf.B)
		c.outBuf.B = grown
	}
}

// drainWrite is invoked on write-readiness: it tries to flush
// [outSent..len(outBuf.B)). On full drain it disables write-readiness and
// releases the buffer; if writeOnClose was requested, the connection is
// closed once the buffer is empty.
func (c *Connection) drainWrite() {
	if c.outBuf == nil {
		return
	}
	for c.outSent < len(c.outBuf.B) {
		n, err := unix.Write(c.fd, c.outBuf.B[c.outSent:])
		if n > 0 {
			c.outSent += n
			c.lastActivity = time.Now()
			c.server.idle.moveToBack(c)
		}
		if err != nil {
			if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
				return
			}
			c.Close()
			return
		}
		if n == 0 {
			return
		}
	}

	releaseOutBuf(c.outBuf)
	c.outBuf = nil
	c.outSent = 0
	if c.writeArmed {
		_ = c.server.poller.modWrite(c.fd, false)
		c.writeArmed = false
	}
	if c.writeOnClose {
		c.Close()
	}
}

// CloseAfterFlush closes the connection once any buffered outbound bytes
// have been written, or immediately if nothing is buffered. Used after
// queuing a terminal response (400/431/500, or Connection: close) so the
// response reaches the peer before the socket goes away.
func (c *Connection) CloseAfterFlush() {
	if c.outBuf == nil || c.outSent == len(c.outBuf.B) {
		c.Close()
		return
	}
	c.writeOnClose = true
}

// Close implements §4.1's close sequence: unregister from the poller,
// close the socket, unlink from the LRU, free buffers, and mark closed.
// Idempotent, resolving §9's dual-close Open Question: callers never need
// to check c.closed themselves before calling Close.
func (c *Connection) Close() {
	if c.closed {
		return
	}
	c.closed = true

	_ = c.server.poller.remove(c.fd)
	_ = unix.Close(c.fd)
	c.server.idle.remove(c)

	if c.outBuf != nil {
		releaseOutBuf(c.outBuf)
		c.outBuf = nil
	}
	c.http.release()

	if c.server.Router != nil {
		c.server.Router.OnClose(c)
	}

	c.server.pendingFree = append(c.server.pendingFree, c)
}
