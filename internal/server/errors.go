// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package server

import "errors"

var (
	// ErrSocket marks a recoverable socket failure: the address is in use
	// or not permitted, or a single accept failed.
	ErrSocket = errors.New("socket error")
	// ErrFatalStartup marks a failure that prevents the server from
	// starting at all, such as an unreadable allow-list or a malformed
	// address.
	ErrFatalStartup = errors.New("fatal startup error")
	// ErrNotBound is returned by [Multiplexor.Run] when the multiplexor is
	// already listening or shut down.
	ErrNotBound = errors.New("multiplexor is not bound")

	errNoPendingConnection = errors.New("no pending connection")
)
