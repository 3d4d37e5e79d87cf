// File: promise/promise.go
// Package promise implements the one-shot value-passing handle used to
// hand results between event handlers and coroutines, plus the gather
// and chain combinators over it.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// A Promise tolerates subscribe and resolve in either order: resolving
// first buffers the values until a subscriber appears, subscribing
// first parks the sink until resolution. It is single-shot; resolves
// after the first are ignored.

package promise

import "sync"

// Sink receives the resolved values of a Promise.
type Sink func(vals ...any)

// Promise is a mutable one-shot cell of resolved values and at most
// one subscriber.
type Promise struct {
	mu       sync.Mutex
	resolved bool
	vals     []any
	sink     Sink
}

// New creates an unresolved Promise with no subscriber.
func New() *Promise {
	return &Promise{}
}

// Resolve fires the promise with vals. The first call wins; later
// calls are ignored. If a subscriber is already parked it is invoked
// on the caller's goroutine.
func (p *Promise) Resolve(vals ...any) {
	p.mu.Lock()
	if p.resolved {
		p.mu.Unlock()
		return
	}
	p.resolved = true
	p.vals = vals
	sink := p.sink
	p.sink = nil
	p.mu.Unlock()
	if sink != nil {
		sink(vals...)
	}
}

// Subscribe attaches sink. If the promise already resolved, sink fires
// immediately with the stored values; otherwise it is parked until
// Resolve.
func (p *Promise) Subscribe(sink Sink) {
	p.mu.Lock()
	if p.resolved {
		vals := p.vals
		p.mu.Unlock()
		sink(vals...)
		return
	}
	p.sink = sink
	p.mu.Unlock()
}

// Resolved reports whether Resolve has fired.
func (p *Promise) Resolved() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.resolved
}

// Await blocks the calling goroutine until the promise resolves and
// returns the values. This is the coroutine-subscriber form: a
// suspended consumer resumed with the resolution.
func (p *Promise) Await() []any {
	ch := make(chan []any, 1)
	p.Subscribe(func(vals ...any) { ch <- vals })
	return <-ch
}
