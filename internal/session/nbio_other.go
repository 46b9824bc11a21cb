//go:build !unix

package session

import "net"

// newNonBlockingIO is unavailable here: every session uses deadline-bounded
// I/O with [Options.ReadTimeout] and [Options.WriteTimeout].
func newNonBlockingIO(net.Conn) nonBlockingIO {
	return nil
}
