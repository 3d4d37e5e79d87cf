// File: httpd/request.go
// Package httpd implements the HTTP/1.1 request reader and the
// exact-match method+path router, built on the coro framing reader as
// the canonical buffered-coroutine protocol loop.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Bodies are framed by Content-Length only; a request without one is
// treated as having an empty body, which diverges from full HTTP/1.1
// (chunked transfer encoding is not handled).

package httpd

import (
	"strconv"
	"strings"

	"github.com/momentics/hioload-http/api"
)

// Request is one parsed request head plus its body.
type Request struct {
	Method  string
	Target  string // URL as received, query string still attached
	Proto   string
	Headers map[string]string // names lowercased, last occurrence wins
	Body    []byte
}

// ContentLength returns the parsed Content-Length header, zero when
// absent. A non-numeric value is a protocol error.
func (r *Request) ContentLength() (int, error) {
	v, ok := r.Headers["content-length"]
	if !ok {
		return 0, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n < 0 {
		return 0, api.NewError(api.ErrCodeProtocol, "bad content-length").
			WithContext("value", v)
	}
	return n, nil
}

// KeepAlive reports whether the connection stays open after the
// response. An explicit "close" ends it; anything else, including a
// missing Connection header, keeps it alive per the HTTP/1.1 default.
func (r *Request) KeepAlive() bool {
	return strings.ToLower(r.Headers["connection"]) != "close"
}

// SplitTarget separates the exact-match path from the raw query
// string at the first '?'. The path is not URL-decoded.
func (r *Request) SplitTarget() (script, query string) {
	if i := strings.IndexByte(r.Target, '?'); i >= 0 {
		return r.Target[:i], r.Target[i+1:]
	}
	return r.Target, ""
}

// parseHead parses a full header block, including the trailing blank
// line, into a Request with an empty body.
func parseHead(head []byte) (*Request, error) {
	text := string(head)
	text = strings.TrimSuffix(text, "\r\n\r\n")

	line, rest, _ := strings.Cut(text, "\r\n")
	method, afterMethod, ok := strings.Cut(line, " ")
	if !ok {
		return nil, api.NewError(api.ErrCodeProtocol, "bad start line").
			WithContext("line", line)
	}
	target, proto, ok := strings.Cut(afterMethod, " ")
	if !ok {
		return nil, api.NewError(api.ErrCodeProtocol, "bad start line").
			WithContext("line", line)
	}

	req := &Request{
		Method:  method,
		Target:  target,
		Proto:   proto,
		Headers: make(map[string]string),
	}
	for _, hl := range strings.Split(rest, "\r\n") {
		if hl == "" {
			continue
		}
		name, value, ok := strings.Cut(hl, ":")
		if !ok {
			return nil, api.NewError(api.ErrCodeProtocol, "bad header line").
				WithContext("line", hl)
		}
		req.Headers[strings.ToLower(name)] = strings.TrimLeft(value, " ")
	}
	return req, nil
}
