// File: httpd/response.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package httpd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/momentics/hioload-http/sockets"
)

// Respond formats and writes an HTTP/1.1 response on s. The status is
// the full status text after the protocol version, e.g. "200 OK".
//
// header may be a plain string, rendered as a Content-type header, or
// a map[string]string rendered as one header line per entry. The
// Connection header reflects the socket's close-after-write flag, and
// Content-length is always derived from body.
func Respond(s *sockets.Socket, status string, header any, body []byte) bool {
	var b strings.Builder
	b.WriteString("HTTP/1.1 ")
	b.WriteString(status)
	b.WriteString("\r\nConnection: ")
	if s.CloseAfterWrite() {
		b.WriteString("close")
	} else {
		b.WriteString("keep-alive")
	}
	b.WriteString("\r\n")

	switch h := header.(type) {
	case nil:
	case string:
		if h != "" {
			b.WriteString("Content-type: ")
			b.WriteString(h)
			b.WriteString("\r\n")
		}
	case map[string]string:
		names := make([]string, 0, len(h))
		for name := range h {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			b.WriteString(name)
			b.WriteString(": ")
			b.WriteString(h[name])
			b.WriteString("\r\n")
		}
	default:
		return false
	}

	fmt.Fprintf(&b, "Content-length: %d\r\n\r\n", len(body))

	out := append([]byte(b.String()), body...)
	return s.Write(out)
}
