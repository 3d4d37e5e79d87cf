// File: sockets/socket.go
// Package sockets implements the per-connection Socket object and the
// per-worker Dispatcher that routes raw loop events to it.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// A Socket owns the write buffer and the half-closed state machine for
// one descriptor. Event hooks default to no-ops and are replaced by
// bindings through explicit setters; a Socket exposes exactly one
// handler per event at a time.

package sockets

import (
	"sync"

	"github.com/eapache/queue"

	"github.com/momentics/hioload-http/api"
)

// pendingWrite is one entry of the write FIFO: a payload and how much
// of it the kernel has already accepted.
type pendingWrite struct {
	data   []byte
	offset int
}

// Socket is the core's per-connection object. All state transitions
// are serialized by mu; hooks are invoked outside the lock.
type Socket struct {
	fd  uintptr
	drv api.Driver

	mu              sync.Mutex
	connected       bool
	writable        bool
	closeAfterWrite bool
	closing         bool
	closed          bool
	writeQ          *queue.Queue // of *pendingWrite

	onConnect func()
	onData    func(p []byte)
	onWrite   func()
	onClose   func()
}

func newSocket(fd uintptr, drv api.Driver, connected, writable bool) *Socket {
	return &Socket{
		fd:        fd,
		drv:       drv,
		connected: connected,
		writable:  writable,
		writeQ:    queue.New(),
	}
}

// FD returns the descriptor handle owned by the loop driver.
func (s *Socket) FD() uintptr { return s.fd }

// Connected reports whether the connect notification has fired.
func (s *Socket) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected
}

// Closed reports whether the terminal close has been delivered.
func (s *Socket) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// CloseAfterWrite reports whether the socket closes once the write
// buffer drains.
func (s *Socket) CloseAfterWrite() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closeAfterWrite
}

// SetCloseAfterWrite arms or disarms graceful close after drain.
func (s *Socket) SetCloseAfterWrite(v bool) {
	s.mu.Lock()
	s.closeAfterWrite = v
	s.mu.Unlock()
}

// SetConnectHandler installs the connect hook. A nil handler resets to
// the no-op.
func (s *Socket) SetConnectHandler(fn func()) {
	s.mu.Lock()
	s.onConnect = fn
	s.mu.Unlock()
}

// SetDataHandler installs the inbound-data hook. The slice passed to
// the hook is only valid for the duration of the call.
func (s *Socket) SetDataHandler(fn func(p []byte)) {
	s.mu.Lock()
	s.onData = fn
	s.mu.Unlock()
}

// SetWriteHandler installs the writable hook, invoked after the
// internal drain on every writable notification.
func (s *Socket) SetWriteHandler(fn func()) {
	s.mu.Lock()
	s.onWrite = fn
	s.mu.Unlock()
}

// SetCloseHandler installs the close hook. It fires at most once.
func (s *Socket) SetCloseHandler(fn func()) {
	s.mu.Lock()
	s.onClose = fn
	s.mu.Unlock()
}

// Write enqueues or sends p. It reports false when the socket is
// already closed or the driver declared the descriptor dead; every
// write failure is terminal and surfaces through the close hook.
func (s *Socket) Write(p []byte) bool {
	s.mu.Lock()
	if s.closed || s.closing {
		s.mu.Unlock()
		return false
	}
	if !s.writable {
		s.writeQ.Add(&pendingWrite{data: p})
		s.mu.Unlock()
		return true
	}
	n, err := s.drv.Write(s.fd, p)
	if err != nil {
		s.markClosing()
		s.mu.Unlock()
		s.driverClose()
		return false
	}
	if n < len(p) {
		s.writable = false
		s.writeQ.Add(&pendingWrite{data: p, offset: n})
		s.mu.Unlock()
		return true
	}
	if s.closeAfterWrite {
		s.markClosing()
		s.mu.Unlock()
		s.driverClose()
		return true
	}
	s.mu.Unlock()
	return true
}

// WriteThenClose writes p and arms close-after-write in one step, so
// the socket tears down as soon as the payload drains.
func (s *Socket) WriteThenClose(p []byte) bool {
	s.mu.Lock()
	s.closeAfterWrite = true
	s.mu.Unlock()
	return s.Write(p)
}

// Close requests teardown. It is idempotent; the close hook fires
// later, when the driver reports the descriptor gone.
func (s *Socket) Close() {
	s.mu.Lock()
	if s.closed || s.closing {
		s.mu.Unlock()
		return
	}
	s.markClosing()
	s.mu.Unlock()
	s.driverClose()
}

// markClosing latches the closing state and drops pending writes.
// Caller holds mu.
func (s *Socket) markClosing() {
	s.closing = true
	for s.writeQ.Length() > 0 {
		s.writeQ.Remove()
	}
}

// driverClose hands the descriptor back to the driver. Must be called
// without mu held: a synchronous driver delivers OnClose reentrantly,
// which lands in fireClose.
func (s *Socket) driverClose() {
	_ = s.drv.Close(s.fd)
}

// handleData routes inbound bytes to the installed data hook.
func (s *Socket) handleData(p []byte) {
	s.mu.Lock()
	fn := s.onData
	s.mu.Unlock()
	if fn != nil {
		fn(p)
	}
}

// handleWritable processes a writable notification: promote the
// connected flag on first sight, then drain the write FIFO until the
// kernel pushes back or the buffer empties.
func (s *Socket) handleWritable() {
	s.mu.Lock()
	if s.closed || s.closing {
		s.mu.Unlock()
		return
	}
	s.writable = true
	var connectFn func()
	if !s.connected {
		s.connected = true
		connectFn = s.onConnect
	}
	needClose := false
	for s.writeQ.Length() > 0 {
		head := s.writeQ.Peek().(*pendingWrite)
		n, err := s.drv.Write(s.fd, head.data[head.offset:])
		if err != nil {
			s.markClosing()
			needClose = true
			break
		}
		head.offset += n
		if head.offset < len(head.data) {
			s.writable = false
			break
		}
		s.writeQ.Remove()
		if s.closeAfterWrite {
			s.markClosing()
			needClose = true
			break
		}
	}
	writeFn := s.onWrite
	s.mu.Unlock()

	// Hooks fire before the scheduled close so on_close stays the last
	// event a binding observes, even with a synchronous driver.
	if connectFn != nil {
		connectFn()
	}
	if writeFn != nil {
		writeFn()
	}
	if needClose {
		s.driverClose()
	}
}

// fireClose latches the terminal state and invokes the close hook
// exactly once.
func (s *Socket) fireClose() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	for s.writeQ.Length() > 0 {
		s.writeQ.Remove()
	}
	fn := s.onClose
	s.mu.Unlock()
	if fn != nil {
		fn()
	}
}
