// Package session implements the per-connection dialogue of the gatekeeper
// server: login against the credential store followed by a small command
// menu.
//
// A [Session] never blocks its caller for longer than its read timeout. The
// server's polling loop drives every session by calling
// [Session.HandleConnection] once per iteration.
package session
