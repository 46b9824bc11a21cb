package crypto

import (
	"bytes"
	"errors"
	"testing"
)

func TestGenerateSalt_LengthAndRandomness(t *testing.T) {
	h := NewPasswordHasher()

	s1, err := h.GenerateSalt()
	if err != nil {
		t.Fatalf("GenerateSalt error: %v", err)
	}
	s2, err := h.GenerateSalt()
	if err != nil {
		t.Fatalf("GenerateSalt error: %v", err)
	}

	if s1 == s2 {
		t.Fatalf("expected salts to differ, but they are equal")
	}
}

func TestGenerateSalt_ReaderFailure(t *testing.T) {
	h := &argonHasher{random: bytes.NewReader([]byte{1, 2, 3})}

	if _, err := h.GenerateSalt(); err == nil {
		t.Fatalf("expected error from short random source")
	}
}

func TestHash_DeterministicForSameInputs(t *testing.T) {
	h := NewPasswordHasher()
	salt := Salt(bytes.Repeat([]byte{0xAB}, SaltSize))

	h1 := h.Hash("correct horse battery staple", salt)
	h2 := h.Hash("correct horse battery staple", salt)

	if h1 != h2 {
		t.Fatalf("hash must be deterministic for the same input")
	}
	if h1 == (Hash{}) {
		t.Fatalf("hash must not be all zero")
	}
}

func TestHash_DifferentSaltsDiffer(t *testing.T) {
	h := NewPasswordHasher()
	s1 := Salt(bytes.Repeat([]byte{0x01}, SaltSize))
	s2 := Salt(bytes.Repeat([]byte{0x02}, SaltSize))

	if h.Hash("password", s1) == h.Hash("password", s2) {
		t.Fatalf("different salts must yield different hashes")
	}
}

func TestHash_DifferentPasswordsDiffer(t *testing.T) {
	h := NewPasswordHasher()
	salt := Salt(bytes.Repeat([]byte{0x07}, SaltSize))

	if h.Hash("password", salt) == h.Hash("Password", salt) {
		t.Fatalf("different passwords must yield different hashes")
	}
}

func TestHashWithSalt_MatchesHash(t *testing.T) {
	h := NewPasswordHasher()
	raw := bytes.Repeat([]byte{0x42}, SaltSize)

	got, err := h.HashWithSalt("secret", raw)
	if err != nil {
		t.Fatalf("HashWithSalt error: %v", err)
	}

	if want := h.Hash("secret", Salt(raw)); got != want {
		t.Fatalf("HashWithSalt = %x, want %x", got, want)
	}
}

func TestHashWithSalt_RejectsWrongLength(t *testing.T) {
	h := NewPasswordHasher()

	for _, n := range []int{0, 1, SaltSize - 1, SaltSize + 1, 32} {
		_, err := h.HashWithSalt("secret", make([]byte, n))
		if !errors.Is(err, ErrInvalidSaltLength) {
			t.Fatalf("len %d: err = %v, want ErrInvalidSaltLength", n, err)
		}
		if !errors.Is(err, ErrConfig) {
			t.Fatalf("len %d: err = %v, want ErrConfig category", n, err)
		}
	}
}
