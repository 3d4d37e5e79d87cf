// File: api/driver.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Loop-driver contract. The driver owns the OS-level event loop
// (epoll or a test double) and exposes non-blocking write, close and
// connect. It invokes the EventSink callbacks sequentially from a
// single loop goroutine per worker.

package api

// Driver is the native event-loop surface the core consumes.
type Driver interface {
	// Write performs a non-blocking write on fd. It returns the number
	// of bytes accepted by the kernel; n < len(p) with a nil error
	// means the fd is not currently writable past n. A non-nil error
	// means the fd is dead.
	Write(fd uintptr, p []byte) (n int, err error)

	// Close schedules teardown of fd. The sink's OnClose fires when the
	// driver has released the descriptor; it may fire synchronously.
	Close(fd uintptr) error

	// Connect starts a non-blocking outbound connection. A later
	// OnWrite event on the returned fd signals completion.
	Connect(host string, port int) (fd uintptr, err error)
}

// EventSink receives the raw socket lifecycle callbacks from a Driver.
// Implementations must tolerate events for unknown descriptors.
type EventSink interface {
	// OnData delivers inbound bytes. The slice is only valid for the
	// duration of the call; consumers that retain it must copy.
	OnData(fd uintptr, p []byte)

	// OnWrite signals that fd became writable. The first OnWrite on an
	// outbound descriptor doubles as the connect notification.
	OnWrite(fd uintptr)

	// OnClose signals that fd is gone. Fires at most once per fd.
	OnClose(fd uintptr)
}
