package crypto

//go:generate mockgen -source=interfaces.go -destination=../mock/password_hasher_mock.go -package=mock

// PasswordHasher derives fixed-size password hashes for the credential store.
// It knows nothing about files, sockets or users; its only job is to turn a
// (password, salt) pair into a Hash and to mint fresh salts.
//
// Scheme:
//
//	Salt = GenerateSalt()              (on add / change password)
//	Hash = Hash(password, Salt)        (stored next to Salt)
//	Hash' = HashWithSalt(password, s)  (on verify, s read back from the file)
type PasswordHasher interface {
	// GenerateSalt returns 16 fresh random bytes.
	GenerateSalt() (Salt, error)

	// Hash derives the 32-byte password hash for password and salt.
	// The same inputs always produce the same output.
	Hash(password string, salt Salt) Hash

	// HashWithSalt is Hash for a salt of unchecked length. It fails with
	// ErrInvalidSaltLength when len(salt) != SaltSize and never pads or
	// truncates.
	HashWithSalt(password string, salt []byte) (Hash, error)
}
