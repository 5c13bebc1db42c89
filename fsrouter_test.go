package staticd

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func readAllNonBlocking(t *testing.T, f *os.File) string {
	t.Helper()
	f.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	data, err := io.ReadAll(f)
	if err != nil && !os.IsTimeout(err) {
		t.Fatalf("reading peer: %v", err)
	}
	return string(data)
}

func newFSRouterTestFixture(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "a.txt"), []byte("abc"), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}
	if err := os.Mkdir(filepath.Join(root, "sub"), 0o755); err != nil {
		t.Fatalf("setup: %v", err)
	}
	return root
}

func TestFSRouterServesFile(t *testing.T) {
	root := newFSRouterTestFixture(t)
	router, err := NewFSRouter(root, true)
	if err != nil {
		t.Fatalf("NewFSRouter: %v", err)
	}

	c, peer := newTestConnPair(t, router)
	defer peer.Close()

	req := &Request{Method: MethodGet, URI: "/a.txt"}
	router.OnRequest(c, req)

	resp := readAllNonBlocking(t, peer)
	if !strings.HasPrefix(resp, "HTTP/1.1 200 OK\r\n") {
		t.Fatalf("unexpected response: %q", resp)
	}
	if !strings.Contains(resp, "Content-Type: text/plain") {
		t.Fatalf("unexpected content type in response: %q", resp)
	}
	if !strings.HasSuffix(resp, "abc") {
		t.Fatalf("expected file content in body: %q", resp)
	}
}

func TestFSRouterDirectoryListing(t *testing.T) {
	root := newFSRouterTestFixture(t)
	router, err := NewFSRouter(root, true)
	if err != nil {
		t.Fatalf("NewFSRouter: %v", err)
	}

	c, peer := newTestConnPair(t, router)
	defer peer.Close()

	req := &Request{Method: MethodGet, URI: "/"}
	router.OnRequest(c, req)

	resp := readAllNonBlocking(t, peer)
	if !strings.Contains(resp, "Content-Type: text/html") {
		t.Fatalf("expected an HTML listing: %q", resp)
	}
	if !strings.Contains(resp, "a.txt") || !strings.Contains(resp, "sub/") {
		t.Fatalf("expected listing to mention both entries: %q", resp)
	}
}

func TestFSRouterBrowseDisabledFallsBackToIndex(t *testing.T) {
	root := newFSRouterTestFixture(t)
	if err := os.WriteFile(filepath.Join(root, "index.html"), []byte("<h1>hi</h1>"), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}
	router, err := NewFSRouter(root, false)
	if err != nil {
		t.Fatalf("NewFSRouter: %v", err)
	}

	c, peer := newTestConnPair(t, router)
	defer peer.Close()

	router.OnRequest(c, &Request{Method: MethodGet, URI: "/"})

	resp := readAllNonBlocking(t, peer)
	if !strings.HasPrefix(resp, "HTTP/1.1 200 OK\r\n") {
		t.Fatalf("unexpected response: %q", resp)
	}
	if !strings.HasSuffix(resp, "<h1>hi</h1>") {
		t.Fatalf("expected index.html content: %q", resp)
	}
}

func TestFSRouterBrowseDisabledNoIndexIsForbidden(t *testing.T) {
	root := newFSRouterTestFixture(t)
	router, err := NewFSRouter(root, false)
	if err != nil {
		t.Fatalf("NewFSRouter: %v", err)
	}

	c, peer := newTestConnPair(t, router)
	defer peer.Close()

	router.OnRequest(c, &Request{Method: MethodGet, URI: "/"})

	resp := readAllNonBlocking(t, peer)
	if !strings.HasPrefix(resp, "HTTP/1.1 403 Forbidden\r\n") {
		t.Fatalf("expected 403, got: %q", resp)
	}
	if !c.closed {
		t.Fatalf("expected error responses to close the connection")
	}
}

func TestFSRouterPathTraversalRejected(t *testing.T) {
	root := newFSRouterTestFixture(t)
	router, err := NewFSRouter(root, true)
	if err != nil {
		t.Fatalf("NewFSRouter: %v", err)
	}

	c, peer := newTestConnPair(t, router)
	defer peer.Close()

	router.OnRequest(c, &Request{Method: MethodGet, URI: "/../etc/passwd"})

	resp := readAllNonBlocking(t, peer)
	if !strings.HasPrefix(resp, "HTTP/1.1 400 Bad Request\r\n") {
		t.Fatalf("expected 400 for a path containing '..', got: %q", resp)
	}
}

func TestFSRouterMissingFileIs404(t *testing.T) {
	root := newFSRouterTestFixture(t)
	router, err := NewFSRouter(root, true)
	if err != nil {
		t.Fatalf("NewFSRouter: %v", err)
	}

	c, peer := newTestConnPair(t, router)
	defer peer.Close()

	router.OnRequest(c, &Request{Method: MethodGet, URI: "/nope.txt"})

	resp := readAllNonBlocking(t, peer)
	if !strings.HasPrefix(resp, "HTTP/1.1 404 Not Found\r\n") {
		t.Fatalf("expected 404, got: %q", resp)
	}
}

func TestFSRouterNonGetMethodIs405(t *testing.T) {
	root := newFSRouterTestFixture(t)
	router, err := NewFSRouter(root, true)
	if err != nil {
		t.Fatalf("NewFSRouter: %v", err)
	}

	c, peer := newTestConnPair(t, router)
	defer peer.Close()

	router.OnRequest(c, &Request{Method: MethodPost, URI: "/a.txt"})

	resp := readAllNonBlocking(t, peer)
	if !strings.HasPrefix(resp, "HTTP/1.1 405 Method Not Allowed\r\n") {
		t.Fatalf("expected 405, got: %q", resp)
	}
}
