// File: reactor/reactor.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Platform-neutral loop-driver surface. A Reactor is an api.Driver
// that additionally owns a listening socket and the event pump feeding
// an api.EventSink.

package reactor

import "github.com/momentics/hioload-http/api"

// Reactor is the native event loop behind one worker.
type Reactor interface {
	api.Driver

	// Listen binds the accept socket. Workers of one server listen on
	// the same address with port reuse enabled.
	Listen(addr string) error

	// Serve pumps events into sink until Stop. It runs on the calling
	// goroutine; all sink callbacks are invoked from here.
	Serve(sink api.EventSink) error

	// Stop makes Serve return and releases the loop resources.
	Stop() error
}

// New creates the platform reactor with the given read-buffer size.
func New(readBufferSize int) (Reactor, error) {
	return newPlatformReactor(readBufferSize)
}
