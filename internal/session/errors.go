package session

import "errors"

var (
	// ErrClosed is returned by [Session.SendText] once the session is closed.
	ErrClosed = errors.New("session is closed")
	// errLineTooLong means the peer sent more than maxLineLength bytes
	// without a newline.
	errLineTooLong = errors.New("input line too long")
	// errSlowPeer means more than maxPendingOutput bytes are waiting for a
	// peer that stopped reading.
	errSlowPeer = errors.New("peer is not reading")
	// errWouldBlock means the socket has nothing to read or no room to write.
	errWouldBlock = errors.New("operation would block")
)
