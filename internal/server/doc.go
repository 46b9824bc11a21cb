// Package server runs the gatekeeper's TCP front end.
//
// A [Multiplexor] owns the listening socket and drives every accepted
// connection from a single polling loop: each iteration accepts at most one
// pending client, drops peers that are not on the allow-list, and gives every
// live connection one non-blocking step. [NewServer] wraps the multiplexor
// with signal handling and graceful shutdown.
package server
