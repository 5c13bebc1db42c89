package staticd

import (
	"bytes"
	"fmt"
)

// parseRequestHead parses the header block (everything up to and including
// the last header line's trailing CRLF — i.e. up to, but not including,
// the terminator's second CRLF) into req. It implements §4.2.2 steps 1-6.
//
// Grounded line-for-line on original_source/src/http_parser.c's
// http_parse_request: split the request line on the first two spaces,
// validate method/URI/version, then split each subsequent line on its
// first colon.
func parseRequestHead(block []byte, req *Request) error {
	s := lineScanner{b: block}

	requestLine, ok := s.next()
	if !ok {
		return ErrBadRequest
	}

	firstSpace := bytes.IndexByte(requestLine, ' ')
	if firstSpace < 0 {
		return ErrBadRequest
	}
	methodTok := requestLine[:firstSpace]

	rest := requestLine[firstSpace+1:]
	secondSpace := bytes.IndexByte(rest, ' ')
	if secondSpace < 0 {
		return ErrBadRequest
	}
	uriTok := rest[:secondSpace]
	versionTok := rest[secondSpace+1:]

	method := methodFromToken(string(methodTok))
	if method == MethodUnknown {
		return ErrBadRequest
	}

	if !isValidRequestURI(uriTok) {
		return ErrBadRequest
	}

	if !bytes.Equal(versionTok, httpVersion11) {
		return ErrBadRequest
	}

	req.Method = method
	req.URI = string(uriTok)
	req.Version = string(versionTok)

	for {
		line, ok := s.next()
		if !ok {
			break
		}
		colon := bytes.IndexByte(line, ':')
		if colon < 0 {
			return ErrBadRequest
		}
		name := trimASCIISpace(line[:colon])
		value := trimASCIISpace(line[colon+1:])
		if len(name) == 0 {
			return ErrBadRequest
		}
		req.Headers = append(req.Headers, Header{Name: string(name), Value: string(value)})
	}

	if _, ok := req.Header("Host"); !ok {
		return ErrBadRequest
	}

	return nil
}

var httpVersion11 = []byte("HTTP/1.1")

// isValidRequestURI implements §4.2.2 step 3's character grammar.
func isValidRequestURI(uri []byte) bool {
	if len(uri) == 0 || uri[0] != '/' {
		return false
	}
	for i := 0; i < len(uri); i++ {
		c := uri[i]
		if isUnreservedURIByte(c) {
			continue
		}
		if c == '%' {
			if i+2 < len(uri) && isHexDigit(uri[i+1]) && isHexDigit(uri[i+2]) {
				i += 2
				continue
			}
			return false
		}
		switch c {
		case '/', ':', '@',
			'!', '$', '&', '+', ',', ';', '=', '(', ')', '*', '\'':
			continue
		default:
			return false
		}
	}
	return true
}

func isUnreservedURIByte(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') ||
		c == '-' || c == '.' || c == '_' || c == '~'
}

func isHexDigit(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func trimASCIISpace(b []byte) []byte {
	start := 0
	for start < len(b) && isASCIISpace(b[start]) {
		start++
	}
	end := len(b)
	for end > start && isASCIISpace(b[end-1]) {
		end--
	}
	return b[start:end]
}

func isASCIISpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n'
}

// parseContentLength parses a decimal, non-negative Content-Length value,
// rejecting trailing garbage and anything above maxContentLength (§9's
// Open Question resolution).
func parseContentLength(value string) (int, error) {
	if len(value) == 0 {
		return 0, fmt.Errorf("%w: empty Content-Length", ErrBadRequest)
	}
	n := 0
	for i := 0; i < len(value); i++ {
		c := value[i]
		if c < '0' || c > '9' {
			return 0, fmt.Errorf("%w: invalid Content-Length %q", ErrBadRequest, value)
		}
		n = n*10 + int(c-'0')
		if n > maxContentLength {
			return 0, fmt.Errorf("%w: Content-Length exceeds cap", ErrBadRequest)
		}
	}
	return n, nil
}
