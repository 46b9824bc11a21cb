package store

import (
	"errors"
	"fmt"

	"github.com/MKhiriev/go-gatekeeper/internal/crypto"
)

// Error categories of the credential store. Every error returned by a
// [CredentialStore] matches exactly one of them via [errors.Is], so callers
// can tell a broken store apart from a request that merely makes no sense.
var (
	// ErrStore signals that the password file could not be opened, read,
	// written or replaced. The store is unusable for this call; the file on
	// disk is left as it was.
	ErrStore = errors.New("password store unavailable")

	// ErrUsage signals a logically invalid request against a healthy store.
	ErrUsage = errors.New("invalid store request")

	// ErrConfig signals malformed fixed-length data, such as a record whose
	// hash or salt block is shorter than the format requires.
	ErrConfig = crypto.ErrConfig
)

// Usage errors. Callers should use [errors.Is] to match against these values.
var (
	// ErrUserAlreadyExists is returned by AddUser when the name is taken.
	ErrUserAlreadyExists = fmt.Errorf("%w: user already exists", ErrUsage)

	// ErrUserNotFound is returned by ChangePassword when no record carries
	// the given name.
	ErrUserNotFound = fmt.Errorf("%w: user not found", ErrUsage)

	// ErrInvalidUsername is returned when a name is empty or contains the
	// record delimiter.
	ErrInvalidUsername = fmt.Errorf("%w: invalid username", ErrUsage)
)

// ErrStoreExists is returned by Create when the password file is already
// present.
var ErrStoreExists = fmt.Errorf("%w: password file already exists", ErrStore)
