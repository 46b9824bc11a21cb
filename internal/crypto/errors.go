package crypto

import (
	"errors"
	"fmt"
)

// ErrConfig is the category of malformed-input errors: byte blocks of the
// wrong length handed to the hasher or read back from a store file.
var ErrConfig = errors.New("invalid configuration")

var (
	// ErrInvalidSaltLength is returned when a salt is not exactly SaltSize
	// bytes long.
	ErrInvalidSaltLength = fmt.Errorf("%w: salt length incorrect", ErrConfig)

	// ErrInvalidHashLength is returned when a hash is not exactly HashSize
	// bytes long.
	ErrInvalidHashLength = fmt.Errorf("%w: hash length incorrect", ErrConfig)
)
