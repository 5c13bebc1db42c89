package staticd

import "time"

const (
	// headersMax is the maximum size of a request's header block,
	// including the terminating CRLF CRLF. Exceeding it yields 431.
	headersMax = 8192

	// readBufferSize is the size of the stack-like buffer the reactor
	// reads into on each readiness notification.
	readBufferSize = 8192

	// initialWriteBufferCapacity is the starting capacity of a
	// connection's outbound buffer; it doubles (clamped to the minimum
	// required) on overflow.
	initialWriteBufferCapacity = 4096

	// bodyInFileThreshold is the Content-Length above which a request
	// body is streamed to a temporary file instead of held in memory.
	bodyInFileThreshold = 1024 * 1024

	// maxContentLength caps accepted Content-Length values, resolving the
	// Open Question in spec.md §9: the source accepts anything strtol
	// parses, this implementation rejects anything larger as BAD_REQUEST.
	maxContentLength = 2 << 30 // 2 GiB

	// epollCheckInterval bounds how long the event loop blocks when
	// inactivity eviction is enabled, so the LRU walk runs regularly and
	// stop() is noticed promptly.
	epollCheckInterval = 5000 * time.Millisecond

	// maxEvents is the size of the readiness-event batch drained per
	// poller wait call.
	maxEvents = 128
)
