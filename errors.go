package staticd

import "errors"

// Error taxonomy for the HTTP engine and reactor, mirroring the BAD_REQUEST /
// HEADERS_TOO_LARGE / PARSER_ERR / WOULD_BLOCK / PEER_CLOSED / IO_ERROR
// classes a connection can terminate with.
var (
	// ErrBadRequest is returned by the parser for a malformed request line,
	// an illegal URI, an unknown method, the wrong HTTP version, a
	// malformed header line, a missing Host header, or a malformed or
	// over-limit Content-Length. The engine responds 400 and closes.
	ErrBadRequest = errors.New("staticd: bad request")

	// ErrHeadersTooLarge is returned when the header buffer is exhausted
	// before the CRLF CRLF terminator is found. The engine responds 431
	// and closes.
	ErrHeadersTooLarge = errors.New("staticd: request header fields too large")

	// ErrParser signals an internal parser failure unrelated to the bytes
	// on the wire (e.g. header slice growth). The engine responds 500 and
	// closes.
	ErrParser = errors.New("staticd: internal parser error")

	// ErrWouldBlock is a non-fatal sentinel: the caller should return and
	// await the next readiness notification.
	ErrWouldBlock = errors.New("staticd: would block")

	// ErrPeerClosed indicates a zero-byte read: the peer closed its write
	// side. The connection is closed silently.
	ErrPeerClosed = errors.New("staticd: peer closed connection")

	// ErrIO wraps any other read/write/poller error. The connection is
	// closed and the error is logged.
	ErrIO = errors.New("staticd: i/o error")
)
