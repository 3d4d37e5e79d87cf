// File: reactor/doc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

// Package reactor implements the native event-loop driver behind one
// worker: a Linux epoll pump that accepts connections, reads inbound
// bytes, reports writability, and schedules closes, feeding the
// dispatcher through the api.EventSink contract.
package reactor
