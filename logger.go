package staticd

import (
	"fmt"
	"log"
	"os"
	"sync"
)

// Logger is used for logging formatted messages. It has the same semantics
// as log.Printf.
type Logger interface {
	Printf(format string, args ...interface{})
}

var defaultLogger = Logger(log.New(os.Stderr, "", log.LstdFlags))

func (s *Server) logger() Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return defaultLogger
}

// connLogger decorates every line logged through it with the connection's
// peer address, the same way fasthttp's ctxLogger stamps request context
// onto every log line produced through RequestCtx.Logger().
type connLogger struct {
	mu     sync.Mutex
	logger Logger
	conn   *Connection
}

func (cl *connLogger) Printf(format string, args ...interface{}) {
	cl.mu.Lock()
	defer cl.mu.Unlock()
	msg := fmt.Sprintf(format, args...)
	cl.logger.Printf("%s - %s", cl.conn.PeerAddr, msg)
}
