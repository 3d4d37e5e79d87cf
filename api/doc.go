// File: api/doc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

// Package api defines the contracts at the boundary of the hioload-http
// core: the loop-driver interface the core consumes, the event sink the
// driver pumps, and the shared error types used across packages.
package api
