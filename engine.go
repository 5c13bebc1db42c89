package staticd

import (
	"errors"

	"github.com/valyala/bytebufferpool"
)

// connState is the per-connection parser state, matching the two states
// original_source/src/http_server.c's http_conn_t.state enum distinguishes
// (READING_HEADERS / READING_BODY); there is no third "writing response"
// state because response writes are driven by Connection.outBuf, not by
// this state machine.
type connState int

const (
	stateHeaders connState = iota
	stateBody
)

// httpConn is the HTTP-level sub-state embedded in every Connection. It
// owns the header accumulation buffer and body sink, and drives the
// request/response state machine described in §4.2.
type httpConn struct {
	state      connState
	headersBuf *bytebufferpool.ByteBuffer
	req        Request
	body       bodySink
}

func (h *httpConn) ensureInit() {
	if h.headersBuf == nil {
		h.headersBuf = acquireHeaderBuf()
	}
}

// release returns pooled resources and removes any spilled body file.
// Called from Connection.Close.
func (h *httpConn) release() {
	if h.headersBuf != nil {
		releaseHeaderBuf(h.headersBuf)
		h.headersBuf = nil
	}
	h.body.reset()
}

// onData feeds newly-read bytes through the header/body state machine,
// dispatching every fully-parsed request to the Router and looping to
// handle any pipelined requests already present in p. It implements
// §4.2.1-§4.2.4.
func (h *httpConn) onData(c *Connection, p []byte) error {
	h.ensureInit()

	for len(p) > 0 || h.state == stateBody {
		if h.state == stateHeaders {
			h.headersBuf.B = append(h.headersBuf.B, p...)
			p = nil

			idx := findHeaderTerminator(h.headersBuf.B)
			if idx < 0 {
				if len(h.headersBuf.B) >= headersMax {
					return ErrHeadersTooLarge
				}
				return nil
			}

			terminatorEnd := idx + 4
			if terminatorEnd > headersMax {
				return ErrHeadersTooLarge
			}
			headerBlock := h.headersBuf.B[:idx+2]
			leftover := append([]byte(nil), h.headersBuf.B[terminatorEnd:]...)

			h.req.reset()
			if err := parseRequestHead(headerBlock, &h.req); err != nil {
				return err
			}

			contentLength := 0
			if cl, ok := h.req.Header("Content-Length"); ok {
				n, err := parseContentLength(cl)
				if err != nil {
					return err
				}
				contentLength = n
			}
			if err := h.body.init(contentLength); err != nil {
				return err
			}

			h.state = stateBody
			p = leftover
			continue
		}

		// stateBody
		n, err := h.body.write(p)
		if err != nil {
			return err
		}
		p = p[n:]

		if !h.body.complete() {
			return nil
		}

		kind, mem, file, err := h.body.finalize()
		if err != nil {
			return err
		}
		h.req.BodyKind = kind
		h.req.Body = mem
		h.req.BodyFile = file

		connClose := h.req.ConnectionClose()
		if c.server.Router != nil {
			c.server.Router.OnRequest(c, &h.req)
		}
		if c.closed {
			return nil
		}

		h.body.reset()
		h.headersBuf.B = h.headersBuf.B[:0]
		h.state = stateHeaders

		if connClose {
			c.CloseAfterFlush()
			return nil
		}
	}
	return nil
}

// headersTooLargeResponse is written directly by the engine rather than
// routed through a Router callback, mirroring
// original_source/src/http_server.c's http_on_data, which sends this
// response inline on a full header buffer and never reaches the router's
// callback table for this case.
const headersTooLargeResponse = "HTTP/1.1 431 Request Header Fields Too Large\r\nConnection: close\r\n\r\n"

// handleConnError maps a state-machine error to the appropriate response
// per §7's taxonomy, then closes the connection once it has been flushed.
// ErrHeadersTooLarge is handled by the engine itself (431); everything
// else is delegated to the Router's OnBadRequest/OnServerError hooks.
func handleConnError(c *Connection, err error) {
	if errors.Is(err, ErrHeadersTooLarge) {
		_ = c.Send([]byte(headersTooLargeResponse))
		c.CloseAfterFlush()
		return
	}
	if c.server.Router != nil {
		if errors.Is(err, ErrBadRequest) {
			c.server.Router.OnBadRequest(c, err)
		} else {
			c.server.Router.OnServerError(c, err)
		}
	}
	c.CloseAfterFlush()
}
