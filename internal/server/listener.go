package server

import (
	"errors"
	"fmt"
	"net"
	"os"
	"syscall"
	"time"
)

// acceptWait is how long acceptPending waits for a client.
const acceptWait = time.Millisecond

// pollListener is a TCP listener that never blocks for longer than
// acceptWait.
type pollListener struct {
	ln *net.TCPListener
}

// listen binds address. An address that is in use or not permitted is an
// [ErrSocket]; any other failure is an [ErrFatalStartup].
func listen(address string) (*pollListener, error) {
	ln, err := net.Listen("tcp", address)
	if err != nil {
		if errors.Is(err, syscall.EADDRINUSE) || errors.Is(err, syscall.EACCES) {
			return nil, fmt.Errorf("%w: bind %s: %w", ErrSocket, address, err)
		}
		return nil, fmt.Errorf("%w: bind %s: %w", ErrFatalStartup, address, err)
	}

	return &pollListener{ln: ln.(*net.TCPListener)}, nil
}

// acceptPending returns a pending connection, or errNoPendingConnection if
// none arrives within acceptWait. After Close it returns net.ErrClosed.
func (l *pollListener) acceptPending() (net.Conn, error) {
	if err := l.ln.SetDeadline(time.Now().Add(acceptWait)); err != nil {
		return nil, err
	}

	conn, err := l.ln.Accept()
	if err != nil {
		if errors.Is(err, os.ErrDeadlineExceeded) {
			return nil, errNoPendingConnection
		}
		return nil, err
	}

	return conn, nil
}

func (l *pollListener) Addr() net.Addr {
	return l.ln.Addr()
}

func (l *pollListener) Close() error {
	return l.ln.Close()
}
