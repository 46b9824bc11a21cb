// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package crypto

import (
	"crypto/subtle"

	"github.com/awnumar/memguard"
)

const (
	// HashSize is the length of a stored password hash in bytes.
	HashSize = 32
	// SaltSize is the length of a stored salt in bytes.
	SaltSize = 16
)

// Hash is a derived password hash. Being an array, its length is part of
// its type and can never drift from HashSize.
type Hash [HashSize]byte

// Salt is the per-user random input mixed into the password hash.
type Salt [SaltSize]byte

// SaltFromBytes copies b into a Salt. It fails with ErrInvalidSaltLength
// unless len(b) == SaltSize.
func SaltFromBytes(b []byte) (Salt, error) {
	var s Salt
	if len(b) != SaltSize {
		return s, ErrInvalidSaltLength
	}
	copy(s[:], b)
	return s, nil
}

// Equal reports whether h and other hold the same bytes. The comparison
// runs in constant time.
func (h *Hash) Equal(other *Hash) bool {
	return subtle.ConstantTimeCompare(h[:], other[:]) == 1
}

// Wipe zeroes the hash in place.
func (h *Hash) Wipe() {
	memguard.WipeBytes(h[:])
}

// Wipe zeroes the salt in place.
func (s *Salt) Wipe() {
	memguard.WipeBytes(s[:])
}
