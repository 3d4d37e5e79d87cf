// File: fake/driver.go
// Package fake provides predictable, controllable implementations of
// the loop-driver contract for testing and development.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package fake

import (
	"fmt"
	"sync"

	"github.com/momentics/hioload-http/api"
)

// WriteResult scripts the outcome of one Driver.Write call.
type WriteResult struct {
	N   int
	Err error
}

// Driver is a scripted api.Driver. Writes record their payloads and
// consume scripted results; by default every write is accepted in
// full. Closes are echoed to an optional sink so dispatcher teardown
// can be exercised without a real loop.
type Driver struct {
	mu          sync.Mutex
	sent        map[uintptr][]byte
	writeScript map[uintptr][]WriteResult
	closed      map[uintptr]bool
	connectFd   uintptr
	connectErr  error
	sink        api.EventSink
}

// NewDriver creates a fake driver with default settings.
func NewDriver() *Driver {
	return &Driver{
		sent:        make(map[uintptr][]byte),
		writeScript: make(map[uintptr][]WriteResult),
		closed:      make(map[uintptr]bool),
		connectFd:   100,
	}
}

// SetSink wires a sink that receives OnClose synchronously whenever
// Close is called.
func (d *Driver) SetSink(sink api.EventSink) {
	d.mu.Lock()
	d.sink = sink
	d.mu.Unlock()
}

// PushWriteResult appends a scripted result for the next write on fd.
func (d *Driver) PushWriteResult(fd uintptr, n int, err error) {
	d.mu.Lock()
	d.writeScript[fd] = append(d.writeScript[fd], WriteResult{N: n, Err: err})
	d.mu.Unlock()
}

// SetConnect scripts the outcome of the next Connect call.
func (d *Driver) SetConnect(fd uintptr, err error) {
	d.mu.Lock()
	d.connectFd = fd
	d.connectErr = err
	d.mu.Unlock()
}

// Write implements api.Driver.
func (d *Driver) Write(fd uintptr, p []byte) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed[fd] {
		return 0, fmt.Errorf("fake: write on closed fd %d", fd)
	}
	n := len(p)
	var err error
	if script := d.writeScript[fd]; len(script) > 0 {
		res := script[0]
		d.writeScript[fd] = script[1:]
		n, err = res.N, res.Err
		if n > len(p) {
			n = len(p)
		}
	}
	if err != nil {
		return 0, err
	}
	d.sent[fd] = append(d.sent[fd], p[:n]...)
	return n, nil
}

// Close implements api.Driver.
func (d *Driver) Close(fd uintptr) error {
	d.mu.Lock()
	if d.closed[fd] {
		d.mu.Unlock()
		return api.ErrSocketClosed
	}
	d.closed[fd] = true
	sink := d.sink
	d.mu.Unlock()
	if sink != nil {
		sink.OnClose(fd)
	}
	return nil
}

// Connect implements api.Driver.
func (d *Driver) Connect(host string, port int) (uintptr, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.connectErr != nil {
		return 0, d.connectErr
	}
	fd := d.connectFd
	d.connectFd++
	return fd, nil
}

// Sent returns everything written to fd so far, in call order.
func (d *Driver) Sent(fd uintptr) []byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]byte, len(d.sent[fd]))
	copy(out, d.sent[fd])
	return out
}

// ClearSent drops the recorded output for fd.
func (d *Driver) ClearSent(fd uintptr) {
	d.mu.Lock()
	d.sent[fd] = nil
	d.mu.Unlock()
}

// IsClosed reports whether Close was called for fd.
func (d *Driver) IsClosed(fd uintptr) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closed[fd]
}
