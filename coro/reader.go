// File: coro/reader.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Reader frames a binding's byte stream by length or delimiter,
// accumulating chunks and carrying leftover bytes between reads. One
// chunk may satisfy several reads; one read may span many chunks.

package coro

import (
	"bytes"

	"github.com/momentics/hioload-http/api"
)

// Reader is a buffered framing reader over a Stream.
type Reader struct {
	st  *Stream
	buf []byte
	eof bool
}

// NewReader wraps st. The reader owns the stream from here on.
func NewReader(st *Stream) *Reader {
	return &Reader{st: st}
}

// Buffered returns the number of leftover bytes not yet claimed by a
// read.
func (r *Reader) Buffered() int { return len(r.buf) }

// ReadN blocks until n bytes are buffered and returns exactly those
// bytes; leftover stays for the next read. Stream end before n bytes
// yields api.ErrStreamClosed.
func (r *Reader) ReadN(n int) ([]byte, error) {
	for len(r.buf) < n {
		if r.eof {
			return nil, api.ErrStreamClosed
		}
		if !r.fill() {
			return nil, api.ErrStreamClosed
		}
	}
	out := make([]byte, n)
	copy(out, r.buf)
	r.buf = append(r.buf[:0:0], r.buf[n:]...)
	return out, nil
}

// ReadUntil blocks until delim appears in the stream and returns all
// bytes up to and including it; leftover stays for the next read.
// The scan resumes just before the previous chunk boundary, so a
// delimiter straddling two chunks is still found.
func (r *Reader) ReadUntil(delim string) ([]byte, error) {
	d := []byte(delim)
	if len(d) == 0 {
		return nil, api.ErrInvalidArgument
	}
	from := 0
	for {
		if i := bytes.Index(r.buf[from:], d); i >= 0 {
			end := from + i + len(d)
			out := make([]byte, end)
			copy(out, r.buf)
			r.buf = append(r.buf[:0:0], r.buf[end:]...)
			return out, nil
		}
		if r.eof {
			return nil, api.ErrStreamClosed
		}
		// Resume the scan len(delim)-1 bytes before the new chunk,
		// clamped at the start of the buffer.
		from = len(r.buf) - len(d) + 1
		if from < 0 {
			from = 0
		}
		if !r.fill() {
			return nil, api.ErrStreamClosed
		}
	}
}

// fill appends the next chunk, reporting false on stream end.
func (r *Reader) fill() bool {
	chunk, ok := r.st.Next()
	if !ok {
		r.eof = true
		return false
	}
	r.buf = append(r.buf, chunk...)
	return true
}
