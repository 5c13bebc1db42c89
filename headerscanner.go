package staticd

import "bytes"

// lineScanner walks CRLF-delimited lines inside a byte slice, the simpler
// single-line analogue of fasthttp's headerscanner.go (this spec's header
// grammar, per original_source/src/http_parser.c, has no line-folding
// continuation support, so there is no readContinuedLineSlice to mirror).
type lineScanner struct {
	b   []byte
	pos int
}

// next returns the next CRLF-terminated line (without the CRLF) and
// advances past it. ok is false once the scanner is exhausted.
func (s *lineScanner) next() (line []byte, ok bool) {
	if s.pos >= len(s.b) {
		return nil, false
	}
	rest := s.b[s.pos:]
	i := bytes.Index(rest, crlf)
	if i < 0 {
		return nil, false
	}
	line = rest[:i]
	s.pos += i + 2
	return line, true
}

var crlf = []byte("\r\n")
var crlfcrlf = []byte("\r\n\r\n")

// findHeaderTerminator returns the index of the first byte of the CRLF
// CRLF terminator in b, or -1 if not yet present.
func findHeaderTerminator(b []byte) int {
	return bytes.Index(b, crlfcrlf)
}
