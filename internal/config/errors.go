package config

import "errors"

// Validation errors returned by [StructuredConfig.validate] when a required
// configuration group is incomplete or invalid.
var (
	// ErrInvalidServerConfigs indicates invalid multiplexor settings
	// (for example, a malformed address or a non-positive poll interval).
	ErrInvalidServerConfigs = errors.New("invalid server configuration")
	// ErrInvalidStorageConfigs indicates an empty password file path.
	ErrInvalidStorageConfigs = errors.New("invalid storage configuration")
	// ErrInvalidLogConfigs indicates an empty log file path.
	ErrInvalidLogConfigs = errors.New("invalid log configuration")
)
