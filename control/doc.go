// File: control/doc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

// Package control provides the dynamic configuration store, hot-reload
// hook registry, file watcher, and debug probes of hioload-http.
package control
