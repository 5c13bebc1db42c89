//go:build darwin || dragonfly || freebsd || netbsd || openbsd

package staticd

import (
	"time"

	"golang.org/x/sys/unix"
)

// kqueuePoller backs the BSD/Darwin build, the same platform split
// tcplisten/reuseport apply between their *_linux.go and *_bsd.go/*_other.go
// files for SO_REUSEPORT-style syscalls. Edge-triggered behaviour is
// obtained via EV_CLEAR, kqueue's equivalent of epoll's edge-triggered mode.
type kqueuePoller struct {
	fd        int
	rawEvents []unix.Kevent_t
}

func newPoller() (poller, error) {
	fd, err := unix.Kqueue()
	if err != nil {
		return nil, err
	}
	return &kqueuePoller{fd: fd, rawEvents: make([]unix.Kevent_t, maxEvents)}, nil
}

func (p *kqueuePoller) addRead(fd int) error {
	ev := unix.Kevent_t{
		Ident:  uint64(fd),
		Filter: unix.EVFILT_READ,
		Flags:  unix.EV_ADD | unix.EV_CLEAR,
	}
	_, err := unix.Kevent(p.fd, []unix.Kevent_t{ev}, nil, nil)
	return err
}

func (p *kqueuePoller) modWrite(fd int, enableWrite bool) error {
	flags := uint16(unix.EV_ADD | unix.EV_CLEAR)
	if !enableWrite {
		flags = unix.EV_DELETE
	}
	ev := unix.Kevent_t{
		Ident:  uint64(fd),
		Filter: unix.EVFILT_WRITE,
		Flags:  flags,
	}
	_, err := unix.Kevent(p.fd, []unix.Kevent_t{ev}, nil, nil)
	if err == unix.ENOENT && !enableWrite {
		return nil
	}
	return err
}

func (p *kqueuePoller) remove(fd int) error {
	readEv := unix.Kevent_t{Ident: uint64(fd), Filter: unix.EVFILT_READ, Flags: unix.EV_DELETE}
	writeEv := unix.Kevent_t{Ident: uint64(fd), Filter: unix.EVFILT_WRITE, Flags: unix.EV_DELETE}
	_, _ = unix.Kevent(p.fd, []unix.Kevent_t{readEv}, nil, nil)
	_, _ = unix.Kevent(p.fd, []unix.Kevent_t{writeEv}, nil, nil)
	return nil
}

func (p *kqueuePoller) wait(timeout time.Duration, events []pollEvent) (int, error) {
	var ts *unix.Timespec
	if timeout >= 0 {
		t := unix.NsecToTimespec(timeout.Nanoseconds())
		ts = &t
	}
	for {
		n, err := unix.Kevent(p.fd, nil, p.rawEvents, ts)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return 0, err
		}
		for i := 0; i < n && i < len(events); i++ {
			re := p.rawEvents[i]
			events[i] = pollEvent{
				fd:       int(re.Ident),
				readable: re.Filter == unix.EVFILT_READ,
				writable: re.Filter == unix.EVFILT_WRITE,
				hungup:   re.Flags&unix.EV_EOF != 0,
			}
		}
		if n > len(events) {
			n = len(events)
		}
		return n, nil
	}
}

func (p *kqueuePoller) close() error {
	return unix.Close(p.fd)
}
