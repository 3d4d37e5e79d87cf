// File: sockets/dispatcher.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// The Dispatcher owns the fd→Socket registry of one worker and routes
// the driver's raw callbacks to the right Socket. Accepted connections
// materialize lazily, on their first inbound byte; the driver never
// has to notify of accept separately.

package sockets

import (
	"sync"

	"github.com/golang/glog"

	"github.com/momentics/hioload-http/api"
	"github.com/momentics/hioload-http/internal/resolve"
)

// Dispatcher implements api.EventSink over a registry of Sockets.
type Dispatcher struct {
	drv    api.Driver
	worker int

	mu     sync.RWMutex
	socks  map[uintptr]*Socket
	accept func(*Socket)

	resolver *resolve.Cache
}

// NewDispatcher creates an empty registry bound to drv. The worker
// index is ambient identity used only for diagnostics.
func NewDispatcher(drv api.Driver, worker int) *Dispatcher {
	return &Dispatcher{
		drv:      drv,
		worker:   worker,
		socks:    make(map[uintptr]*Socket),
		resolver: resolve.NewCache(resolve.DefaultCacheSize),
	}
}

// Worker returns the ambient worker index this dispatcher belongs to.
func (d *Dispatcher) Worker() int { return d.worker }

// SetAcceptHandler installs the binding applied to every lazily
// materialized inbound Socket, typically an HTTP reader. Replacing it
// does not touch sockets that are already live.
func (d *Dispatcher) SetAcceptHandler(fn func(*Socket)) {
	d.mu.Lock()
	d.accept = fn
	d.mu.Unlock()
}

// Len returns the number of registered sockets.
func (d *Dispatcher) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.socks)
}

// Lookup returns the Socket registered for fd, if any.
func (d *Dispatcher) Lookup(fd uintptr) (*Socket, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	s, ok := d.socks[fd]
	return s, ok
}

// OnData implements api.EventSink. Unknown descriptors become new
// connected Sockets with the accept binding installed before the first
// bytes are delivered.
func (d *Dispatcher) OnData(fd uintptr, p []byte) {
	d.mu.RLock()
	s, ok := d.socks[fd]
	accept := d.accept
	d.mu.RUnlock()
	if !ok {
		s = newSocket(fd, d.drv, true, true)
		d.mu.Lock()
		d.socks[fd] = s
		d.mu.Unlock()
		if accept != nil {
			accept(s)
		}
	}
	s.handleData(p)
}

// OnWrite implements api.EventSink.
func (d *Dispatcher) OnWrite(fd uintptr) {
	d.mu.RLock()
	s, ok := d.socks[fd]
	d.mu.RUnlock()
	if !ok {
		return
	}
	s.handleWritable()
}

// OnClose implements api.EventSink. The registry entry is cleared
// before the Socket's close hook runs, so user code can never observe
// a dangling entry.
func (d *Dispatcher) OnClose(fd uintptr) {
	d.mu.Lock()
	s, ok := d.socks[fd]
	if ok {
		delete(d.socks, fd)
	}
	d.mu.Unlock()
	if !ok {
		return
	}
	s.fireClose()
}

// Connect opens an outbound connection through the driver and
// registers a Socket for it. The Socket reports connected once the
// driver delivers the first writable event.
func (d *Dispatcher) Connect(host string, port int) (*Socket, error) {
	addr, err := d.resolver.Lookup(host)
	if err != nil {
		return nil, api.NewError(api.ErrCodeResolveFailed, "resolve failed").
			WithContext("host", host).
			WithContext("cause", err.Error())
	}
	fd, err := d.drv.Connect(addr, port)
	if err != nil {
		glog.Warningf("worker %d: connect %s:%d: %v", d.worker, host, port, err)
		return nil, api.NewError(api.ErrCodeConnectFailed, "connect failed").
			WithContext("host", host).
			WithContext("port", port).
			WithContext("cause", err.Error())
	}
	s := newSocket(fd, d.drv, false, false)
	d.mu.Lock()
	d.socks[fd] = s
	d.mu.Unlock()
	return s, nil
}
