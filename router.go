package staticd

// Router is the collaborator every Server dispatches parsed requests to,
// mirroring the callback table original_source/src/http_server.h declares
// for its http_server_callbacks_t (on_request/on_bad_request/on_error),
// extended with connect/close hooks so a Router can maintain the
// Connection.UserData slot across a connection's lifetime.
//
// Implementations must not retain req or any of its Headers/Body slices
// beyond the call: their backing storage is reused for the connection's
// next pipelined request.
type Router interface {
	// OnConnect is called once, right after a connection is accepted and
	// registered with the poller, before any bytes have been read from it.
	OnConnect(c *Connection)

	// OnRequest is called once per fully-parsed request. The Router must
	// eventually call c.Send (directly or via helpers) to write a
	// response; it is not written automatically.
	OnRequest(c *Connection, req *Request)

	// OnBadRequest is called when a connection's bytes could not be
	// parsed as a well-formed HTTP/1.1 request (§7's ErrBadRequest). It is
	// not called for ErrHeadersTooLarge: the engine writes that 431 itself.
	// The engine closes the connection once the Router's response, if any,
	// has been flushed.
	OnBadRequest(c *Connection, err error)

	// OnServerError is called when dispatch fails for a reason unrelated
	// to the client's input (§7's ErrIO / ErrParser). The engine closes
	// the connection once any response has been flushed.
	OnServerError(c *Connection, err error)

	// OnClose is called exactly once, as the last step of Connection.Close,
	// after the socket has already been removed from the poller.
	OnClose(c *Connection)
}
