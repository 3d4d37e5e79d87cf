//go:build !linux

// File: reactor/reactor_stub.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Stub reactor for platforms without a native loop driver. Embedders
// on these platforms supply their own api.Driver.

package reactor

import "fmt"

func newPlatformReactor(readBufferSize int) (Reactor, error) {
	return nil, fmt.Errorf("no native reactor for this platform")
}
