// File: coro/binding.go
// Package coro converts a Socket's push-style event callbacks into a
// pull-style stream a goroutine consumes in straight-line code, and
// layers length- and delimiter-framed reads on top.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// The binding is a bounded chunk channel closed on the socket's close
// event. Data and close hooks are serialized by the dispatcher, so the
// consumer observes chunks in arrival order followed by exactly one
// end-of-stream, whether or not any chunks arrived before close.

package coro

import (
	"sync"
	"sync/atomic"

	"github.com/golang/glog"

	"github.com/momentics/hioload-http/promise"
	"github.com/momentics/hioload-http/sockets"
)

// DefaultStreamDepth is the chunk backlog a binding buffers before the
// event loop blocks on a slow consumer.
const DefaultStreamDepth = 1

// Stream is the pull side of a binding.
type Stream struct {
	ch chan []byte
}

// Next blocks until the next chunk arrives. ok is false once the
// stream ended; after that every call returns false immediately.
func (st *Stream) Next() (chunk []byte, ok bool) {
	chunk, ok = <-st.ch
	return chunk, ok
}

// Body is a coroutine body: pull chunks from st, deliver the final
// value through resolve.
type Body func(st *Stream, resolve promise.Sink)

// Bind installs body as the consumer of s's data and close events and
// returns the promise for its final value.
//
// A finished body flips a flag consulted by the data hook, so events
// arriving after completion are dropped without touching the channel.
// A body that panics is logged and its promise resolved with nil to
// unblock any awaiter.
func Bind(s *sockets.Socket, body Body) *promise.Promise {
	return BindDepth(s, DefaultStreamDepth, body)
}

// BindDepth is Bind with an explicit chunk backlog.
func BindDepth(s *sockets.Socket, depth int, body Body) *promise.Promise {
	if depth < 1 {
		depth = 1
	}
	p := promise.New()
	st := &Stream{ch: make(chan []byte, depth)}

	var done int32
	doneCh := make(chan struct{})
	var closeOnce sync.Once

	s.SetDataHandler(func(b []byte) {
		if atomic.LoadInt32(&done) == 1 {
			return
		}
		// The loop's read buffer is reused; the stream owns a copy.
		chunk := make([]byte, len(b))
		copy(chunk, b)
		select {
		case st.ch <- chunk:
		case <-doneCh:
		}
	})
	s.SetCloseHandler(func() {
		closeOnce.Do(func() { close(st.ch) })
	})

	go func() {
		defer func() {
			atomic.StoreInt32(&done, 1)
			close(doneCh)
			s.SetDataHandler(nil)
			if r := recover(); r != nil {
				glog.Errorf("coroutine body panic: %v", r)
				p.Resolve(nil)
			}
		}()
		body(st, p.Resolve)
	}()

	return p
}

// BindReader is Bind with a framing Reader already wrapped around the
// stream, the common shape for protocol loops.
func BindReader(s *sockets.Socket, body func(r *Reader, resolve promise.Sink)) *promise.Promise {
	return Bind(s, func(st *Stream, resolve promise.Sink) {
		body(NewReader(st), resolve)
	})
}
