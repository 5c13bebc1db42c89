/*
Package staticd implements a single-process, non-blocking HTTP/1.1 server
that serves static files and directory listings from a configured root.

The server is built from three layers:

  - The reactor ([Server]) owns the listening socket and a readiness
    multiplexer (epoll on Linux, kqueue on BSD/Darwin), accepts connections,
    and drives per-connection read/write readiness in a single goroutine.
    Idle connections are evicted via an intrusive LRU list.
  - The HTTP engine (in conn.go/engine.go) owns the per-connection byte
    buffer, the HTTP/1.1 parser and state machine, and request-body
    ingestion, supporting pipelined keep-alive connections and large bodies
    spilled to a temporary file.
  - The router ([Router]) turns a parsed [Request] into a response. The
    default router ([NewFSRouter]) serves files and directory listings from
    a filesystem root.

The server does not use goroutines per connection: all I/O and all Router
callbacks run on the single thread that calls [Server.ListenAndServe].
*/
package staticd
