// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package crypto

import (
	"crypto/rand"
	"fmt"
	"io"

	"golang.org/x/crypto/argon2"
)

// Argon2i parameters of the password file format. Every hash already on
// disk was derived with exactly these values; changing any of them
// invalidates all stored passwords.
const (
	argonTime    uint32 = 2
	argonMemory  uint32 = 64 * 1024 // 64 MiB
	argonThreads uint8  = 1
)

// argonHasher is the private implementation of [PasswordHasher].
type argonHasher struct {
	argonTime    uint32
	argonMemory  uint32
	argonThreads uint8

	// random is the salt source.
	random io.Reader
}

// NewPasswordHasher constructs the [PasswordHasher] used by the password
// file: Argon2i with
//   - time cost:   2 passes
//   - memory cost: 64 MiB
//   - parallelism: 1 lane
//   - key length:  32 bytes
//
// Salts are drawn from the OS CSPRNG.
func NewPasswordHasher() PasswordHasher {
	return &argonHasher{
		argonTime:    argonTime,
		argonMemory:  argonMemory,
		argonThreads: argonThreads,
		random:       rand.Reader,
	}
}

// GenerateSalt implements [PasswordHasher]. It reads SaltSize random bytes
// and returns an error if the random read fails.
func (a *argonHasher) GenerateSalt() (Salt, error) {
	var salt Salt
	if _, err := io.ReadFull(a.random, salt[:]); err != nil {
		return Salt{}, fmt.Errorf("generate salt: %w", err)
	}
	return salt, nil
}

// Hash implements [PasswordHasher].
func (a *argonHasher) Hash(password string, salt Salt) Hash {
	key := argon2.Key(
		[]byte(password),
		salt[:],
		a.argonTime,
		a.argonMemory,
		a.argonThreads,
		HashSize,
	)

	var h Hash
	copy(h[:], key)
	clear(key)

	return h
}

// HashWithSalt implements [PasswordHasher].
func (a *argonHasher) HashWithSalt(password string, salt []byte) (Hash, error) {
	s, err := SaltFromBytes(salt)
	if err != nil {
		return Hash{}, err
	}
	defer s.Wipe()

	return a.Hash(password, s), nil
}
