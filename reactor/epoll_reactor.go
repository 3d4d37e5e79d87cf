//go:build linux

// File: reactor/epoll_reactor.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Linux epoll loop driver. One reactor owns one epoll instance, the
// worker's listening socket, and an eventfd used to wake the loop for
// scheduled closes and shutdown. All sink callbacks fire from the
// Serve goroutine, which keeps per-socket event delivery sequential.

package reactor

import (
	"encoding/binary"
	"fmt"
	"net"
	"strconv"
	"sync"

	"golang.org/x/sys/unix"

	"github.com/momentics/hioload-http/api"
	"github.com/momentics/hioload-http/pool"
)

// epollReactor implements Reactor using Linux epoll.
type epollReactor struct {
	epfd     int
	listenFd int
	wakeFd   int
	bufs     *pool.BytePool

	mu           sync.Mutex
	conns        map[uintptr]bool
	pendingClose []uintptr
	stopping     bool
}

func newPlatformReactor(readBufferSize int) (Reactor, error) {
	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, fmt.Errorf("epoll create: %w", err)
	}
	wakeFd, err := unix.Eventfd(0, unix.EFD_NONBLOCK|unix.EFD_CLOEXEC)
	if err != nil {
		unix.Close(epfd)
		return nil, fmt.Errorf("eventfd: %w", err)
	}
	r := &epollReactor{
		epfd:     epfd,
		listenFd: -1,
		wakeFd:   wakeFd,
		bufs:     pool.NewBytePool(readBufferSize),
		conns:    make(map[uintptr]bool),
	}
	if err := r.add(wakeFd, unix.EPOLLIN); err != nil {
		r.releaseFds()
		return nil, err
	}
	return r, nil
}

// Listen binds and starts listening with address and port reuse, so
// every worker of a server can share one address.
func (r *epollReactor) Listen(addr string) error {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	sa, err := sockaddr(host, port)
	if err != nil {
		return err
	}

	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_STREAM|unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC, 0)
	if err != nil {
		return fmt.Errorf("socket: %w", err)
	}
	unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
	unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEPORT, 1)
	if err := unix.Bind(fd, sa); err != nil {
		unix.Close(fd)
		return fmt.Errorf("bind %s: %w", addr, err)
	}
	if err := unix.Listen(fd, unix.SOMAXCONN); err != nil {
		unix.Close(fd)
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	if err := r.add(fd, unix.EPOLLIN); err != nil {
		unix.Close(fd)
		return err
	}
	r.listenFd = fd
	return nil
}

// Serve pumps events into sink until Stop.
func (r *epollReactor) Serve(sink api.EventSink) error {
	events := make([]unix.EpollEvent, 128)
	for {
		n, err := unix.EpollWait(r.epfd, events, -1)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			return fmt.Errorf("epoll wait: %w", err)
		}
		for i := 0; i < n; i++ {
			ev := events[i]
			fd := int(ev.Fd)
			switch {
			case fd == r.wakeFd:
				if r.drainWake(sink) {
					r.releaseFds()
					return nil
				}
			case fd == r.listenFd:
				r.acceptAll()
			default:
				r.handleConn(uintptr(fd), ev.Events, sink)
			}
		}
	}
}

// Stop makes Serve return and tears the loop down.
func (r *epollReactor) Stop() error {
	r.mu.Lock()
	r.stopping = true
	r.mu.Unlock()
	return r.wake()
}

// Write implements api.Driver. A kernel pushback reports a short
// count with a nil error; a dead descriptor reports the error.
func (r *epollReactor) Write(fd uintptr, p []byte) (int, error) {
	written := 0
	for written < len(p) {
		n, err := unix.Write(int(fd), p[written:])
		if n > 0 {
			written += n
		}
		switch err {
		case nil:
		case unix.EINTR:
			continue
		case unix.EAGAIN:
			return written, nil
		default:
			return written, fmt.Errorf("write fd %d: %w", fd, err)
		}
	}
	return written, nil
}

// Close implements api.Driver. The close is scheduled onto the loop
// goroutine, so OnClose never races an in-flight data delivery.
func (r *epollReactor) Close(fd uintptr) error {
	r.mu.Lock()
	if !r.conns[fd] {
		r.mu.Unlock()
		return api.ErrSocketClosed
	}
	r.pendingClose = append(r.pendingClose, fd)
	r.mu.Unlock()
	return r.wake()
}

// Connect implements api.Driver: a non-blocking connect whose
// completion arrives as the first writable event on the new fd.
func (r *epollReactor) Connect(host string, port int) (uintptr, error) {
	sa, err := sockaddr(host, port)
	if err != nil {
		return 0, err
	}
	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_STREAM|unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC, 0)
	if err != nil {
		return 0, fmt.Errorf("socket: %w", err)
	}
	if err := unix.Connect(fd, sa); err != nil && err != unix.EINPROGRESS {
		unix.Close(fd)
		return 0, fmt.Errorf("connect %s:%d: %w", host, port, err)
	}
	if err := r.watchConn(fd); err != nil {
		unix.Close(fd)
		return 0, err
	}
	return uintptr(fd), nil
}

// acceptAll drains the accept backlog. Accepted descriptors are only
// registered with epoll; the core materializes its Socket on the
// first inbound byte.
func (r *epollReactor) acceptAll() {
	for {
		fd, _, err := unix.Accept4(r.listenFd, unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC)
		if err != nil {
			return
		}
		if err := r.watchConn(fd); err != nil {
			unix.Close(fd)
		}
	}
}

// handleConn translates one epoll event into sink callbacks. Writable
// fires before readable so a connect notification always precedes the
// peer's first bytes.
func (r *epollReactor) handleConn(fd uintptr, flags uint32, sink api.EventSink) {
	r.mu.Lock()
	known := r.conns[fd]
	r.mu.Unlock()
	if !known {
		return
	}
	if flags&unix.EPOLLOUT != 0 {
		sink.OnWrite(fd)
	}
	if flags&unix.EPOLLIN != 0 {
		if !r.readAll(fd, sink) {
			return
		}
	}
	if flags&(unix.EPOLLERR|unix.EPOLLHUP|unix.EPOLLRDHUP) != 0 {
		r.closeNow(fd, sink)
	}
}

// readAll reads until the kernel runs dry. It reports false once the
// descriptor was closed underneath.
func (r *epollReactor) readAll(fd uintptr, sink api.EventSink) bool {
	buf := r.bufs.GetBuffer()
	defer r.bufs.PutBuffer(buf)
	for {
		n, err := unix.Read(int(fd), buf)
		switch {
		case n > 0:
			sink.OnData(fd, buf[:n])
		case n == 0:
			r.closeNow(fd, sink)
			return false
		case err == unix.EINTR:
			continue
		case err == unix.EAGAIN:
			return true
		default:
			r.closeNow(fd, sink)
			return false
		}
		// A scheduled close during OnData ends the read loop early.
		r.mu.Lock()
		known := r.conns[fd]
		r.mu.Unlock()
		if !known {
			return false
		}
	}
}

// drainWake consumes the eventfd and processes scheduled closes. It
// reports true when the loop should stop.
func (r *epollReactor) drainWake(sink api.EventSink) bool {
	var scratch [8]byte
	unix.Read(r.wakeFd, scratch[:])

	r.mu.Lock()
	pending := r.pendingClose
	r.pendingClose = nil
	stopping := r.stopping
	r.mu.Unlock()

	for _, fd := range pending {
		r.closeNow(fd, sink)
	}
	return stopping
}

// closeNow releases fd and delivers OnClose exactly once.
func (r *epollReactor) closeNow(fd uintptr, sink api.EventSink) {
	r.mu.Lock()
	if !r.conns[fd] {
		r.mu.Unlock()
		return
	}
	delete(r.conns, fd)
	r.mu.Unlock()

	unix.EpollCtl(r.epfd, unix.EPOLL_CTL_DEL, int(fd), nil)
	unix.Close(int(fd))
	sink.OnClose(fd)
}

// watchConn registers a connection descriptor edge-triggered for both
// directions.
func (r *epollReactor) watchConn(fd int) error {
	if err := r.add(fd, unix.EPOLLIN|unix.EPOLLOUT|unix.EPOLLRDHUP|unix.EPOLLET); err != nil {
		return err
	}
	r.mu.Lock()
	r.conns[uintptr(fd)] = true
	r.mu.Unlock()
	return nil
}

func (r *epollReactor) add(fd int, events uint32) error {
	ev := unix.EpollEvent{Events: events, Fd: int32(fd)}
	if err := unix.EpollCtl(r.epfd, unix.EPOLL_CTL_ADD, fd, &ev); err != nil {
		return fmt.Errorf("epoll ctl add: %w", err)
	}
	return nil
}

func (r *epollReactor) wake() error {
	var one [8]byte
	binary.LittleEndian.PutUint64(one[:], 1)
	_, err := unix.Write(r.wakeFd, one[:])
	if err == unix.EAGAIN {
		return nil
	}
	return err
}

// releaseFds closes every descriptor the reactor still owns.
func (r *epollReactor) releaseFds() {
	r.mu.Lock()
	conns := make([]uintptr, 0, len(r.conns))
	for fd := range r.conns {
		conns = append(conns, fd)
	}
	r.conns = make(map[uintptr]bool)
	r.mu.Unlock()

	for _, fd := range conns {
		unix.Close(int(fd))
	}
	if r.listenFd >= 0 {
		unix.Close(r.listenFd)
	}
	unix.Close(r.wakeFd)
	unix.Close(r.epfd)
}

// sockaddr builds an IPv4 socket address for host:port.
func sockaddr(host string, port int) (unix.Sockaddr, error) {
	sa := &unix.SockaddrInet4{Port: port}
	if host == "" {
		return sa, nil
	}
	ip := net.ParseIP(host)
	if ip == nil {
		addrs, err := net.LookupHost(host)
		if err != nil {
			return nil, fmt.Errorf("resolve %s: %w", host, err)
		}
		if len(addrs) == 0 {
			return nil, fmt.Errorf("resolve %s: no addresses", host)
		}
		ip = net.ParseIP(addrs[0])
	}
	ip4 := ip.To4()
	if ip4 == nil {
		return nil, fmt.Errorf("address %s: not IPv4", host)
	}
	copy(sa.Addr[:], ip4)
	return sa, nil
}
