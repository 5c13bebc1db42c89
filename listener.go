package staticd

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// newListeningSocket creates a non-blocking IPv4 TCP socket bound to
// 0.0.0.0:port and listening with the OS default backlog.
//
// This is modelled directly on tcplisten/tcplisten.go's fdSetup/getSockaddr
// (socket → SO_REUSEADDR → bind → listen over golang.org/x/sys/unix), but
// returns the raw fd instead of wrapping it in a net.Listener: the reactor
// needs the fd itself to register with its poller, not a net.Conn-shaped
// accept loop.
func newListeningSocket(port int) (int, error) {
	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_STREAM, unix.IPPROTO_TCP)
	if err != nil {
		return -1, fmt.Errorf("cannot create listening socket: %w", err)
	}

	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		unix.Close(fd)
		return -1, fmt.Errorf("cannot enable SO_REUSEADDR: %w", err)
	}

	if err := unix.SetNonblock(fd, true); err != nil {
		unix.Close(fd)
		return -1, fmt.Errorf("cannot set listening socket non-blocking: %w", err)
	}

	sa := &unix.SockaddrInet4{Port: port}
	if err := unix.Bind(fd, sa); err != nil {
		unix.Close(fd)
		return -1, fmt.Errorf("cannot bind to port %d: %w", port, err)
	}

	if err := unix.Listen(fd, unix.SOMAXCONN); err != nil {
		unix.Close(fd)
		return -1, fmt.Errorf("cannot listen: %w", err)
	}

	return fd, nil
}

// acceptNonblocking accepts one pending connection off the listening fd,
// sets it non-blocking, and returns its fd and textual peer address. It
// returns unix.EAGAIN when no connection is pending.
func acceptNonblocking(listenFD int) (fd int, peerAddr string, err error) {
	connFD, sa, err := unix.Accept(listenFD)
	if err != nil {
		return -1, "", err
	}
	if err := unix.SetNonblock(connFD, true); err != nil {
		unix.Close(connFD)
		return -1, "", err
	}
	return connFD, formatSockaddr(sa), nil
}

func formatSockaddr(sa unix.Sockaddr) string {
	switch a := sa.(type) {
	case *unix.SockaddrInet4:
		return fmt.Sprintf("%d.%d.%d.%d:%d", a.Addr[0], a.Addr[1], a.Addr[2], a.Addr[3], a.Port)
	case *unix.SockaddrInet6:
		return fmt.Sprintf("[%x]:%d", a.Addr, a.Port)
	default:
		return "?"
	}
}
