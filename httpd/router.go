// File: httpd/router.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Router holds the method→path→handler table and runs the per
// connection serve loop. The table is replaceable at runtime without
// touching live connections: Accept captures the Router, not a
// snapshot of its routes, so a hot reload takes effect on the next
// request of every open keep-alive connection.

package httpd

import (
	"sync"

	"github.com/golang/glog"

	"github.com/momentics/hioload-http/coro"
	"github.com/momentics/hioload-http/promise"
	"github.com/momentics/hioload-http/sockets"
)

// Handler processes one dispatched request. It must eventually respond
// on s, directly or after async work.
type Handler func(s *sockets.Socket, query string, headers map[string]string, body []byte)

// Router is an exact-match method+path dispatch table.
type Router struct {
	mu     sync.RWMutex
	routes map[string]map[string]Handler
}

// NewRouter creates an empty routing table.
func NewRouter() *Router {
	return &Router{routes: make(map[string]map[string]Handler)}
}

// Register binds handler to the exact method and path. Methods are
// free-form strings; the path is matched without URL decoding.
func (rt *Router) Register(method, path string, handler Handler) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	byPath, ok := rt.routes[method]
	if !ok {
		byPath = make(map[string]Handler)
		rt.routes[method] = byPath
	}
	byPath[path] = handler
}

// Reset clears the routing table. Live connections keep serving; they
// see the new table on their next request.
func (rt *Router) Reset() {
	rt.mu.Lock()
	rt.routes = make(map[string]map[string]Handler)
	rt.mu.Unlock()
}

// lookup returns the handler for an exact method+path match.
func (rt *Router) lookup(method, path string) (Handler, bool) {
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	byPath, ok := rt.routes[method]
	if !ok {
		return nil, false
	}
	h, ok := byPath[path]
	return h, ok
}

// Accept installs the HTTP serve loop on a freshly materialized
// inbound socket. Wire it as the dispatcher's accept handler.
func (rt *Router) Accept(s *sockets.Socket) {
	coro.BindReader(s, func(r *coro.Reader, resolve promise.Sink) {
		rt.serve(s, r)
		resolve()
	})
}

// serve runs the keep-alive request loop until the peer closes, the
// connection turns close-after-write, or the protocol breaks.
func (rt *Router) serve(s *sockets.Socket, r *coro.Reader) {
	for {
		head, err := r.ReadUntil("\r\n\r\n")
		if err != nil {
			// Peer closed before a full header block.
			s.Close()
			return
		}
		req, err := parseHead(head)
		if err != nil {
			glog.Warningf("malformed request: %v", err)
			s.Close()
			return
		}
		n, err := req.ContentLength()
		if err != nil {
			glog.Warningf("malformed request: %v", err)
			s.Close()
			return
		}
		if n > 0 {
			req.Body, err = r.ReadN(n)
			if err != nil {
				s.Close()
				return
			}
		}

		if !req.KeepAlive() {
			s.SetCloseAfterWrite(true)
		}

		script, query := req.SplitTarget()
		if h, ok := rt.lookup(req.Method, script); ok {
			invoke(h, s, query, req.Headers, req.Body)
		} else {
			// An unrouted request never keeps the connection open.
			s.SetCloseAfterWrite(true)
			Respond(s, "404 Not found", "text/plain",
				[]byte(script+" was not found on this server"))
		}

		if s.CloseAfterWrite() {
			return
		}
	}
}

// invoke shields the serve loop from handler bugs: a panic is logged
// and the connection keeps serving.
func invoke(h Handler, s *sockets.Socket, query string, headers map[string]string, body []byte) {
	defer func() {
		if r := recover(); r != nil {
			glog.Errorf("handler panic on fd %d: %v", s.FD(), r)
		}
	}()
	h(s, query, headers, body)
}
