package allowlist

import "errors"

var (
	// ErrUnreadable is returned when the allow-list file cannot be opened
	// or read.
	ErrUnreadable = errors.New("allow-list file is unreadable")

	// ErrInvalidAddress is returned when the allow-list contains a token
	// that is not an IP address literal.
	ErrInvalidAddress = errors.New("allow-list entry is not an IP address")
)
