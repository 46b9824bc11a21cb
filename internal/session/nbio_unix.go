//go:build unix

package session

import (
	"errors"
	"io"
	"net"
	"syscall"

	"golang.org/x/sys/unix"
)

// rawConnIO issues exactly one read(2) or write(2) per call on the socket the
// runtime already keeps in non-blocking mode, so a step never parks the loop.
type rawConnIO struct {
	raw syscall.RawConn
}

// newNonBlockingIO returns nil for connections that do not expose their
// descriptor; those fall back to deadline-bounded I/O.
func newNonBlockingIO(conn net.Conn) nonBlockingIO {
	sc, ok := conn.(syscall.Conn)
	if !ok {
		return nil
	}
	raw, err := sc.SyscallConn()
	if err != nil {
		return nil
	}
	return &rawConnIO{raw: raw}
}

func (r *rawConnIO) read(buf []byte) (int, error) {
	var (
		n     int
		opErr error
	)
	err := r.raw.Read(func(fd uintptr) bool {
		n, opErr = unix.Read(int(fd), buf)
		return true
	})
	if err != nil {
		return 0, err
	}

	switch {
	case opErr == nil && n == 0 && len(buf) > 0:
		return 0, io.EOF
	case opErr == nil:
		return n, nil
	case wouldBlock(opErr):
		return 0, errWouldBlock
	default:
		return 0, opErr
	}
}

func (r *rawConnIO) write(p []byte) (int, error) {
	var (
		n     int
		opErr error
	)
	err := r.raw.Write(func(fd uintptr) bool {
		n, opErr = unix.Write(int(fd), p)
		return true
	})
	if err != nil {
		return 0, err
	}

	switch {
	case opErr == nil:
		return n, nil
	case wouldBlock(opErr):
		return 0, errWouldBlock
	default:
		return 0, opErr
	}
}

func wouldBlock(err error) bool {
	return errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EWOULDBLOCK) || errors.Is(err, unix.EINTR)
}
