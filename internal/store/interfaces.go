package store

import "context"

//go:generate mockgen -source=interfaces.go -destination=../mock/credential_store_mock.go -package=mock

// CredentialStore is the file-backed user database. It owns the password
// file exclusively; nothing outside this package touches the file.
//
// No state is cached between calls: every method re-reads the file, and
// every mutation rewrites it completely before atomically replacing the old
// version.
type CredentialStore interface {
	// UserExists reports whether a record with exactly this name exists.
	UserExists(ctx context.Context, name string) (bool, error)

	// Verify reports whether password matches the stored hash of name.
	// An unknown name yields false and no error.
	Verify(ctx context.Context, name, password string) (bool, error)

	// AddUser appends a new record with a fresh salt. It fails with
	// ErrUserAlreadyExists if name is taken.
	AddUser(ctx context.Context, name, password string) error

	// ChangePassword replaces the hash and salt of name, leaving every other
	// record untouched. It fails with ErrUserNotFound if name is absent.
	ChangePassword(ctx context.Context, name, newPassword string) error

	// Users returns all usernames in file order.
	Users(ctx context.Context) ([]string, error)
}
