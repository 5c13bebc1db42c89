//go:build linux

package staticd

import (
	"time"

	"golang.org/x/sys/unix"
)

// epollPoller is the Linux poller, grounded directly in
// original_source/src/tcp_server.c's epoll_create1/epoll_ctl/epoll_wait
// sequence and in the raw-syscall style of tcplisten/tcplisten.go.
type epollPoller struct {
	fd int
	// rawEvents is reused across wait calls to avoid a per-call allocation,
	// the same pattern the teacher's per-connection buffers follow.
	rawEvents []unix.EpollEvent
}

func newPoller() (poller, error) {
	fd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, err
	}
	return &epollPoller{fd: fd, rawEvents: make([]unix.EpollEvent, maxEvents)}, nil
}

func (p *epollPoller) addRead(fd int) error {
	ev := unix.EpollEvent{
		Events: unix.EPOLLIN | unix.EPOLLRDHUP | unix.EPOLLET,
		Fd:     int32(fd),
	}
	return unix.EpollCtl(p.fd, unix.EPOLL_CTL_ADD, fd, &ev)
}

func (p *epollPoller) modWrite(fd int, enableWrite bool) error {
	events := uint32(unix.EPOLLIN | unix.EPOLLRDHUP | unix.EPOLLET)
	if enableWrite {
		events |= unix.EPOLLOUT
	}
	ev := unix.EpollEvent{Events: events, Fd: int32(fd)}
	return unix.EpollCtl(p.fd, unix.EPOLL_CTL_MOD, fd, &ev)
}

func (p *epollPoller) remove(fd int) error {
	// Linux ignores the event argument for EPOLL_CTL_DEL, but older
	// kernels (pre-2.6.9) require a non-nil pointer.
	ev := unix.EpollEvent{}
	err := unix.EpollCtl(p.fd, unix.EPOLL_CTL_DEL, fd, &ev)
	if err == unix.ENOENT || err == unix.EBADF {
		return nil
	}
	return err
}

func (p *epollPoller) wait(timeout time.Duration, events []pollEvent) (int, error) {
	msTimeout := -1
	if timeout >= 0 {
		msTimeout = int(timeout / time.Millisecond)
	}
	for {
		n, err := unix.EpollWait(p.fd, p.rawEvents, msTimeout)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return 0, err
		}
		for i := 0; i < n && i < len(events); i++ {
			re := p.rawEvents[i]
			events[i] = pollEvent{
				fd:       int(re.Fd),
				readable: re.Events&(unix.EPOLLIN|unix.EPOLLERR|unix.EPOLLHUP) != 0,
				writable: re.Events&unix.EPOLLOUT != 0,
				hungup:   re.Events&unix.EPOLLRDHUP != 0,
			}
		}
		if n > len(events) {
			n = len(events)
		}
		return n, nil
	}
}

func (p *epollPoller) close() error {
	return unix.Close(p.fd)
}
