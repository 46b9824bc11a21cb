package server

import (
	"context"
	"net"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/server_mock.go -package=mock

// Server defines the lifecycle contract of the gatekeeper process.
//
// Implementations are expected to block in [RunServer] until shutdown is
// requested and to release resources in [Shutdown].
type Server interface {
	// RunServer starts serving clients and blocks until the server stops.
	RunServer()

	// Shutdown stops accepting new clients.
	Shutdown()
}

// Conn is a connection object driven by the [Multiplexor]. Every method is
// called from the multiplexor's loop only, and none of them may wait for the
// peer: a step works with whatever the socket already holds.
type Conn interface {
	// ID identifies the connection in log entries.
	ID() string

	// IsConnected reports whether the connection is still open. The
	// multiplexor drops connections that report false.
	IsConnected() bool

	// PeerAddr returns the remote address.
	PeerAddr() net.Addr

	// SendText queues text for the peer and writes what the socket accepts.
	SendText(text string) error

	// StartAuthentication begins the login dialogue.
	StartAuthentication()

	// HandleConnection performs one non-blocking step of the dialogue.
	HandleConnection(ctx context.Context)

	// Close closes the connection.
	Close() error
}

// ConnFactory wraps an accepted, allow-listed socket in a [Conn].
type ConnFactory func(conn net.Conn) Conn
