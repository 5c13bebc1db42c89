package staticd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// FSRouter is the default Router: a static-file server rooted at Root,
// serving directory listings or index.html per Browse, exactly as
// original_source/src/http_router.c's on_request/handle_dir_request/
// handle_file_request does.
type FSRouter struct {
	// Root is the absolute, symlink-resolved filesystem root every
	// request's URI is resolved against. Set by NewFSRouter.
	Root string

	// Browse enables directory listings; when false, a directory request
	// falls back to serving that directory's index.html, or 403 if
	// absent.
	Browse bool
}

// NewFSRouter resolves webRootPath to its canonical form (mirroring
// realpath(3) in http_router_init) and returns a Router serving it.
func NewFSRouter(webRootPath string, browse bool) (*FSRouter, error) {
	root, err := filepath.EvalSymlinks(webRootPath)
	if err != nil {
		return nil, fmt.Errorf("staticd: cannot resolve web root path: %w", err)
	}
	root, err = filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("staticd: cannot resolve web root path: %w", err)
	}
	return &FSRouter{Root: root, Browse: browse}, nil
}

func (r *FSRouter) OnConnect(c *Connection) {}
func (r *FSRouter) OnClose(c *Connection)   {}

// OnRequest implements the URI-to-filesystem resolution and dispatch
// sequence of on_request: method gate, ".." rejection, join + realpath,
// containment check, then dispatch on stat result.
func (r *FSRouter) OnRequest(c *Connection, req *Request) {
	if req.Method != MethodGet {
		r.sendError(c, 405, "Method Not Allowed")
		return
	}

	if strings.Contains(req.URI, "..") {
		r.sendError(c, 400, "Bad Request")
		return
	}

	requestedPath := filepath.Join(r.Root, filepath.FromSlash(req.URI))

	resolvedPath, err := filepath.EvalSymlinks(requestedPath)
	if err != nil {
		r.sendError(c, 404, "Not Found")
		return
	}

	if !r.withinRoot(resolvedPath) {
		r.sendError(c, 403, "Forbidden")
		return
	}

	info, err := os.Stat(resolvedPath)
	if err != nil {
		r.sendError(c, 404, "Not Found")
		return
	}

	switch {
	case info.IsDir():
		r.handleDirRequest(c, resolvedPath, req.URI)
	case info.Mode().IsRegular():
		r.handleFileRequest(c, resolvedPath)
	default:
		r.sendError(c, 403, "Forbidden")
	}
}

// withinRoot mirrors the source's strncmp(resolved_path, g_web_root_path,
// strlen(g_web_root_path)) containment check, guarding the boundary with a
// separator so "/root-evil" isn't treated as contained in "/root".
func (r *FSRouter) withinRoot(resolvedPath string) bool {
	if resolvedPath == r.Root {
		return true
	}
	return strings.HasPrefix(resolvedPath, r.Root+string(filepath.Separator))
}

func (r *FSRouter) handleDirRequest(c *Connection, path, uri string) {
	if !r.Browse {
		indexPath := filepath.Join(path, "index.html")
		info, err := os.Stat(indexPath)
		if err == nil && info.Mode().IsRegular() {
			r.handleFileRequest(c, indexPath)
		} else {
			r.sendError(c, 403, "Forbidden")
		}
		return
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		c.Logger().Printf("could not open requested dir %q: %v", path, err)
		r.sendError(c, 500, "Internal Server Error")
		return
	}

	body := renderDirListing(uri, entries)
	headers := fmt.Sprintf(
		"HTTP/1.1 200 OK\r\nContent-Type: text/html\r\nContent-Length: %d\r\n\r\n",
		len(body))

	if err := c.Send([]byte(headers)); err != nil {
		return
	}
	_ = c.Send(body)
}

func (r *FSRouter) handleFileRequest(c *Connection, path string) {
	f, err := os.Open(path)
	if err != nil {
		r.sendError(c, 403, "Forbidden")
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		c.Logger().Printf("could not stat %q: %v", path, err)
		r.sendError(c, 500, "Internal Server Error")
		return
	}

	mimeType := mimeTypeForPath(path)
	headers := fmt.Sprintf(
		"HTTP/1.1 200 OK\r\nContent-Type: %s\r\nContent-Length: %d\r\n\r\n",
		mimeType, info.Size())

	if err := c.Send([]byte(headers)); err != nil {
		return
	}

	buf := make([]byte, 4096)
	for {
		n, rerr := f.Read(buf)
		if n > 0 {
			if err := c.Send(buf[:n]); err != nil {
				c.Logger().Printf("failed to send file chunk: %v", err)
				return
			}
		}
		if rerr == io.EOF {
			return
		}
		if rerr != nil {
			c.Logger().Printf("error reading %q: %v", path, rerr)
			return
		}
	}
}

// OnBadRequest and OnServerError mirror send_error_response's two fixed
// call sites in the source.
func (r *FSRouter) OnBadRequest(c *Connection, err error) {
	r.sendError(c, 400, "Bad Request")
}

func (r *FSRouter) OnServerError(c *Connection, err error) {
	r.sendError(c, 500, "Internal Server Error")
}

// sendError writes a minimal HTML error response with Connection: close
// and queues the connection to close once it has been flushed, matching
// send_error_response's unconditional close-after-send.
func (r *FSRouter) sendError(c *Connection, statusCode int, statusMessage string) {
	body := fmt.Sprintf(
		"<html><head><title>%d %s</title></head><body><h1>%d %s</h1></body></html>",
		statusCode, statusMessage, statusCode, statusMessage)

	response := fmt.Sprintf(
		"HTTP/1.1 %d %s\r\nContent-Type: text/html\r\nContent-Length: %d\r\nConnection: close\r\n\r\n%s",
		statusCode, statusMessage, len(body), body)

	_ = c.Send([]byte(response))
	c.CloseAfterFlush()
}
