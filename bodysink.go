package staticd

import (
	"io"
	"os"
)

// bodyFile is the spill target for a request body whose Content-Length
// exceeds bodyInFileThreshold. Grounded on
// original_source/src/http_server.c's init_body_reading, which opens an
// anonymous temp file once the declared length crosses the same threshold
// rather than growing an in-memory buffer without bound.
type bodyFile struct {
	f    *os.File
	size int64
}

// bodySink accumulates an incoming request body, either into an in-memory
// buffer or a spilled temp file, depending on the declared Content-Length.
type bodySink struct {
	expected int
	received int

	mem  []byte
	file *bodyFile
}

// init selects the sink kind for a body of the given declared length,
// per §4.2.3: bodies at or under bodyInFileThreshold stay in memory,
// larger ones spill to a temp file.
func (b *bodySink) init(contentLength int) error {
	b.expected = contentLength
	b.received = 0

	if contentLength <= bodyInFileThreshold {
		if cap(b.mem) < contentLength {
			b.mem = make([]byte, 0, contentLength)
		}
		b.mem = b.mem[:0]
		return nil
	}

	f, err := os.CreateTemp("", "staticd-body-*")
	if err != nil {
		return ErrIO
	}
	b.file = &bodyFile{f: f}
	return nil
}

// write ingests up to len(p) bytes of body data, never more than remaining
// to complete, and reports how many bytes it consumed.
func (b *bodySink) write(p []byte) (int, error) {
	remaining := b.expected - b.received
	if remaining <= 0 {
		return 0, nil
	}
	if len(p) > remaining {
		p = p[:remaining]
	}

	if b.file != nil {
		n, err := b.file.f.Write(p)
		if err != nil {
			return n, ErrIO
		}
		b.file.size += int64(n)
		b.received += n
		return n, nil
	}

	b.mem = append(b.mem, p...)
	b.received += len(p)
	return len(p), nil
}

// complete reports whether the full declared body has been received.
func (b *bodySink) complete() bool {
	return b.received >= b.expected
}

// finalize rewinds a spilled file to its start so a Router can read it back
// from the beginning, and returns the BodyKind/payload pair for Request.
func (b *bodySink) finalize() (BodyKind, []byte, *bodyFile, error) {
	if b.expected == 0 {
		return BodyAbsent, nil, nil, nil
	}
	if b.file != nil {
		if _, err := b.file.f.Seek(0, io.SeekStart); err != nil {
			return BodyAbsent, nil, nil, ErrIO
		}
		return BodyInFile, nil, b.file, nil
	}
	return BodyInMemory, b.mem, nil, nil
}

// reset releases any spilled temp file and clears the sink for reuse by the
// next pipelined request on the same connection.
func (b *bodySink) reset() {
	if b.file != nil {
		name := b.file.f.Name()
		b.file.f.Close()
		os.Remove(name)
		b.file = nil
	}
	b.mem = b.mem[:0]
	b.expected = 0
	b.received = 0
}
