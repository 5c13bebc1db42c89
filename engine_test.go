package staticd

import (
	"testing"
)

// recordingRouter captures every request it is asked to dispatch, for
// assertions on order and content, without writing any response bytes.
type recordingRouter struct {
	requests    []string
	bodies      []string
	badRequests int
	serverErrs  int
}

func (r *recordingRouter) OnConnect(c *Connection) {}
func (r *recordingRouter) OnClose(c *Connection)   {}

func (r *recordingRouter) OnRequest(c *Connection, req *Request) {
	r.requests = append(r.requests, req.Method.String()+" "+req.URI)
	r.bodies = append(r.bodies, string(req.Body))
}

func (r *recordingRouter) OnBadRequest(c *Connection, err error) { r.badRequests++ }
func (r *recordingRouter) OnServerError(c *Connection, err error) { r.serverErrs++ }

func TestHttpConnOnDataSimpleGet(t *testing.T) {
	router := &recordingRouter{}
	c, peer := newTestConnPair(t, router)
	defer peer.Close()

	err := c.http.onData(c, []byte("GET / HTTP/1.1\r\nHost: x\r\n\r\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(router.requests) != 1 || router.requests[0] != "GET /" {
		t.Fatalf("unexpected requests %v", router.requests)
	}
}

func TestHttpConnOnDataPipelinedRequestsDispatchInOrder(t *testing.T) {
	router := &recordingRouter{}
	c, peer := newTestConnPair(t, router)
	defer peer.Close()

	raw := "GET /a HTTP/1.1\r\nHost: x\r\n\r\n" +
		"GET /b HTTP/1.1\r\nHost: x\r\n\r\n" +
		"GET /c HTTP/1.1\r\nHost: x\r\n\r\n"

	if err := c.http.onData(c, []byte(raw)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"GET /a", "GET /b", "GET /c"}
	if len(router.requests) != len(want) {
		t.Fatalf("unexpected requests %v, want %v", router.requests, want)
	}
	for i, w := range want {
		if router.requests[i] != w {
			t.Fatalf("request %d = %q, want %q", i, router.requests[i], w)
		}
	}
}

func TestHttpConnOnDataBodySplitAcrossChunks(t *testing.T) {
	router := &recordingRouter{}
	c, peer := newTestConnPair(t, router)
	defer peer.Close()

	head := []byte("POST /p HTTP/1.1\r\nHost: x\r\nContent-Length: 5\r\n\r\nhe")
	if err := c.http.onData(c, head); err != nil {
		t.Fatalf("unexpected error on headers+partial body: %v", err)
	}
	if len(router.requests) != 0 {
		t.Fatalf("did not expect dispatch before the full body arrived")
	}

	if err := c.http.onData(c, []byte("llo")); err != nil {
		t.Fatalf("unexpected error on body completion: %v", err)
	}
	if len(router.requests) != 1 || router.requests[0] != "POST /p" {
		t.Fatalf("unexpected requests %v", router.requests)
	}
	if router.bodies[0] != "hello" {
		t.Fatalf("unexpected body %q", router.bodies[0])
	}
}

func TestHttpConnOnDataHeadersTooLarge(t *testing.T) {
	router := &recordingRouter{}
	c, peer := newTestConnPair(t, router)
	defer peer.Close()

	oversized := make([]byte, headersMax+1)
	for i := range oversized {
		oversized[i] = 'a'
	}

	err := c.http.onData(c, oversized)
	if err != ErrHeadersTooLarge {
		t.Fatalf("expected ErrHeadersTooLarge, got %v", err)
	}
}

func TestHttpConnOnDataHeadersJustUnderLimitKeepsWaiting(t *testing.T) {
	router := &recordingRouter{}
	c, peer := newTestConnPair(t, router)
	defer peer.Close()

	almostFull := make([]byte, headersMax-1)
	for i := range almostFull {
		almostFull[i] = 'a'
	}

	err := c.http.onData(c, almostFull)
	if err != nil {
		t.Fatalf("expected no error while still under headersMax, got %v", err)
	}
	if len(router.requests) != 0 {
		t.Fatalf("did not expect any dispatch yet")
	}
}

// TestHttpConnOnDataSmallHeadersSurviveALargeTrailingChunk guards against a
// spurious 431: a small, complete header block followed by enough trailing
// pipelined-request bytes to push the accumulated buffer past headersMax
// must still parse the first request successfully, since the terminator
// for it is found well before the buffer fills up. The trailing bytes
// themselves stay under headersMax so they don't trip a legitimate 431 of
// their own, isolating the case under test.
func TestHttpConnOnDataSmallHeadersSurviveALargeTrailingChunk(t *testing.T) {
	router := &recordingRouter{}
	c, peer := newTestConnPair(t, router)
	defer peer.Close()

	first := "GET /a HTTP/1.1\r\nHost: x\r\n\r\n"
	trailing := make([]byte, headersMax-10)
	for i := range trailing {
		trailing[i] = 'a'
	}

	data := append([]byte(first), trailing...)
	if len(data) <= headersMax {
		t.Fatalf("test fixture must exceed headersMax to exercise the bug, got %d bytes", len(data))
	}

	err := c.http.onData(c, data)
	if err != nil {
		t.Fatalf("unexpected error for a small header block followed by a large trailing chunk: %v", err)
	}
	if len(router.requests) != 1 || router.requests[0] != "GET /a" {
		t.Fatalf("unexpected requests %v", router.requests)
	}
}

func TestHttpConnOnDataMalformedRequestLine(t *testing.T) {
	router := &recordingRouter{}
	c, peer := newTestConnPair(t, router)
	defer peer.Close()

	err := c.http.onData(c, []byte("NOTAREQUEST\r\n\r\n"))
	if err != ErrBadRequest {
		t.Fatalf("expected ErrBadRequest, got %v", err)
	}
}

func TestHttpConnOnDataConnectionCloseStopsPipelining(t *testing.T) {
	router := &recordingRouter{}
	c, peer := newTestConnPair(t, router)
	defer peer.Close()

	raw := "GET /a HTTP/1.1\r\nHost: x\r\nConnection: close\r\n\r\n" +
		"GET /b HTTP/1.1\r\nHost: x\r\n\r\n"

	if err := c.http.onData(c, []byte(raw)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !c.closed {
		t.Fatalf("expected connection to be closed after Connection: close")
	}
	if len(router.requests) != 1 {
		t.Fatalf("expected only the first request to dispatch, got %v", router.requests)
	}
}
