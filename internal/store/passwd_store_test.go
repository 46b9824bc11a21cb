// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"bytes"
	"context"
	"crypto/sha256"
	"os"
	"path/filepath"
	"testing"

	"github.com/MKhiriev/go-gatekeeper/internal/crypto"
	"github.com/MKhiriev/go-gatekeeper/internal/logger"
	"github.com/MKhiriev/go-gatekeeper/internal/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

// ── helpers ───────────────────────────────────────────────────────────────────

// fastHasher is a cheap deterministic stand-in for Argon2i. Salts count up
// from 1 so every record in a test file is distinguishable.
type fastHasher struct {
	next byte
}

func (f *fastHasher) GenerateSalt() (crypto.Salt, error) {
	f.next++
	return crypto.Salt(bytes.Repeat([]byte{f.next}, crypto.SaltSize)), nil
}

func (f *fastHasher) Hash(password string, salt crypto.Salt) crypto.Hash {
	return crypto.Hash(sha256.Sum256(append(salt[:], password...)))
}

func (f *fastHasher) HashWithSalt(password string, salt []byte) (crypto.Hash, error) {
	s, err := crypto.SaltFromBytes(salt)
	if err != nil {
		return crypto.Hash{}, err
	}
	return f.Hash(password, s), nil
}

// newTestStore creates an empty password file in a temp dir and returns a
// store over it together with the file path.
func newTestStore(t *testing.T, hasher crypto.PasswordHasher) (*passwdStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "passwd")
	require.NoError(t, Create(path))

	s := NewPasswdStore(path, hasher, logger.Nop()).(*passwdStore)
	return s, path
}

func readFile(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return data
}

// leftovers lists files next to the password file other than the file
// itself and its lock.
func leftovers(t *testing.T, path string) []string {
	t.Helper()
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)

	var out []string
	for _, e := range entries {
		name := e.Name()
		if name == filepath.Base(path) || name == filepath.Base(path)+lockSuffix {
			continue
		}
		out = append(out, name)
	}
	return out
}

// ── Create ────────────────────────────────────────────────────────────────────

func TestCreate_EmptyFileThenExists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "passwd")

	require.NoError(t, Create(path))
	assert.Empty(t, readFile(t, path))

	err := Create(path)
	assert.ErrorIs(t, err, ErrStoreExists)
	assert.ErrorIs(t, err, ErrStore)
}

// ── AddUser / Verify ──────────────────────────────────────────────────────────

// TestPasswdStore_AddThenVerify_Argon2 exercises the real hasher end to end.
func TestPasswdStore_AddThenVerify_Argon2(t *testing.T) {
	s, _ := newTestStore(t, crypto.NewPasswordHasher())
	ctx := context.Background()

	require.NoError(t, s.AddUser(ctx, "alice", "correct horse"))

	ok, err := s.Verify(ctx, "alice", "correct horse")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.Verify(ctx, "alice", "wrong horse")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPasswdStore_AddThenVerify(t *testing.T) {
	s, _ := newTestStore(t, &fastHasher{})
	ctx := context.Background()

	users := map[string]string{
		"alice": "pa55word",
		"bob":   "",
		"carol": "with spaces and\nnewline",
	}
	for name, password := range users {
		require.NoError(t, s.AddUser(ctx, name, password))
	}

	for name, password := range users {
		ok, err := s.Verify(ctx, name, password)
		require.NoError(t, err)
		assert.True(t, ok, "user %s must verify with own password", name)

		ok, err = s.Verify(ctx, name, password+"x")
		require.NoError(t, err)
		assert.False(t, ok, "user %s must not verify with other password", name)
	}
}

func TestPasswdStore_Verify_UnknownUser(t *testing.T) {
	s, _ := newTestStore(t, &fastHasher{})
	ctx := context.Background()
	require.NoError(t, s.AddUser(ctx, "alice", "secret"))

	ok, err := s.Verify(ctx, "mallory", "secret")
	require.NoError(t, err)
	assert.False(t, ok)
}

// TestPasswdStore_Verify_CaseSensitive documents that names are compared
// byte for byte.
func TestPasswdStore_Verify_CaseSensitive(t *testing.T) {
	s, _ := newTestStore(t, &fastHasher{})
	ctx := context.Background()
	require.NoError(t, s.AddUser(ctx, "alice", "secret"))

	ok, err := s.Verify(ctx, "Alice", "secret")
	require.NoError(t, err)
	assert.False(t, ok)

	exists, err := s.UserExists(ctx, "ALICE")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestPasswdStore_AddUser_Layout(t *testing.T) {
	hasher := &fastHasher{}
	s, path := newTestStore(t, hasher)

	require.NoError(t, s.AddUser(context.Background(), "alice", "secret"))

	salt := crypto.Salt(bytes.Repeat([]byte{1}, crypto.SaltSize))
	hash := hasher.Hash("secret", salt)

	want := append([]byte("alice\n"), hash[:]...)
	want = append(want, salt[:]...)
	want = append(want, '\n')
	assert.Equal(t, want, readFile(t, path))
}

func TestPasswdStore_AddUser_Duplicate(t *testing.T) {
	s, path := newTestStore(t, &fastHasher{})
	ctx := context.Background()
	require.NoError(t, s.AddUser(ctx, "alice", "first"))
	require.NoError(t, s.AddUser(ctx, "bob", "second"))
	before := readFile(t, path)

	err := s.AddUser(ctx, "alice", "other")
	assert.ErrorIs(t, err, ErrUserAlreadyExists)
	assert.ErrorIs(t, err, ErrUsage)

	assert.Equal(t, before, readFile(t, path), "store must be byte-identical after a rejected add")
	assert.Empty(t, leftovers(t, path), "temporary file must be removed")
}

func TestPasswdStore_AddUser_InvalidName(t *testing.T) {
	s, path := newTestStore(t, &fastHasher{})

	for _, name := range []string{"", "two\nlines"} {
		err := s.AddUser(context.Background(), name, "pw")
		assert.ErrorIs(t, err, ErrInvalidUsername)
	}
	assert.Empty(t, readFile(t, path))
}

func TestPasswdStore_AddUser_SaltFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	hasher := mock.NewMockPasswordHasher(ctrl)
	hasher.EXPECT().GenerateSalt().Return(crypto.Salt{}, assert.AnError)

	s, path := newTestStore(t, hasher)
	before := readFile(t, path)

	err := s.AddUser(context.Background(), "alice", "secret")
	assert.ErrorIs(t, err, ErrStore)
	assert.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, before, readFile(t, path))
	assert.Empty(t, leftovers(t, path))
}

func TestPasswdStore_AddUser_PreservesMode(t *testing.T) {
	s, path := newTestStore(t, &fastHasher{})
	require.NoError(t, os.Chmod(path, 0o640))

	require.NoError(t, s.AddUser(context.Background(), "alice", "secret"))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o640), info.Mode().Perm())
}

// ── ChangePassword ────────────────────────────────────────────────────────────

func TestPasswdStore_ChangePassword_Absent(t *testing.T) {
	s, path := newTestStore(t, &fastHasher{})
	ctx := context.Background()
	require.NoError(t, s.AddUser(ctx, "alice", "secret"))
	before := readFile(t, path)

	err := s.ChangePassword(ctx, "bob", "new")
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.ErrorIs(t, err, ErrUsage)
	assert.Equal(t, before, readFile(t, path))
	assert.Empty(t, leftovers(t, path))
}

func TestPasswdStore_ChangePassword_OnlyTargetChanges(t *testing.T) {
	s, path := newTestStore(t, &fastHasher{})
	ctx := context.Background()
	for _, name := range []string{"alice", "bob", "carol"} {
		require.NoError(t, s.AddUser(ctx, name, name+"-pw"))
	}
	before := readFile(t, path)
	recLen := func(name string) int { return len(name) + 1 + crypto.HashSize + crypto.SaltSize + 1 }

	require.NoError(t, s.ChangePassword(ctx, "bob", "bob-new"))
	after := readFile(t, path)
	require.Len(t, after, len(before))

	aliceEnd := recLen("alice")
	bobEnd := aliceEnd + recLen("bob")

	assert.Equal(t, before[:aliceEnd], after[:aliceEnd], "alice must be untouched")
	assert.Equal(t, before[bobEnd:], after[bobEnd:], "carol must be untouched")
	assert.NotEqual(t, before[aliceEnd:bobEnd], after[aliceEnd:bobEnd], "bob must change")
	assert.Equal(t, []byte("bob\n"), after[aliceEnd:aliceEnd+4], "order must be preserved")

	ok, err := s.Verify(ctx, "bob", "bob-new")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.Verify(ctx, "bob", "bob-pw")
	require.NoError(t, err)
	assert.False(t, ok)

	names, err := s.Users(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "bob", "carol"}, names)
}

func TestPasswdStore_ChangePassword_FreshSalt(t *testing.T) {
	s, path := newTestStore(t, &fastHasher{})
	ctx := context.Background()
	require.NoError(t, s.AddUser(ctx, "alice", "same"))
	before := readFile(t, path)

	require.NoError(t, s.ChangePassword(ctx, "alice", "same"))
	after := readFile(t, path)

	saltStart := len("alice\n") + crypto.HashSize
	assert.NotEqual(t, before[saltStart:saltStart+crypto.SaltSize], after[saltStart:saltStart+crypto.SaltSize])
}

// ── UserExists / Users ────────────────────────────────────────────────────────

func TestPasswdStore_RoundTrip(t *testing.T) {
	s, _ := newTestStore(t, &fastHasher{})
	ctx := context.Background()

	names := []string{"u1", "u2", "u3", "u4", "u5", "u6", "u7"}
	for _, name := range names {
		require.NoError(t, s.AddUser(ctx, name, "pw-"+name))
	}

	for _, name := range names {
		exists, err := s.UserExists(ctx, name)
		require.NoError(t, err)
		assert.True(t, exists, name)
	}

	exists, err := s.UserExists(ctx, "u8")
	require.NoError(t, err, "reading past the last record is not an error")
	assert.False(t, exists)

	got, err := s.Users(ctx)
	require.NoError(t, err)
	assert.Equal(t, names, got)
}

func TestPasswdStore_EmptyStore(t *testing.T) {
	s, _ := newTestStore(t, &fastHasher{})
	ctx := context.Background()

	exists, err := s.UserExists(ctx, "anyone")
	require.NoError(t, err)
	assert.False(t, exists)

	names, err := s.Users(ctx)
	require.NoError(t, err)
	assert.Empty(t, names)
}

// ── failures ──────────────────────────────────────────────────────────────────

func TestPasswdStore_MissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent")
	s := NewPasswdStore(path, &fastHasher{}, logger.Nop())
	ctx := context.Background()

	_, err := s.UserExists(ctx, "alice")
	assert.ErrorIs(t, err, ErrStore)

	_, err = s.Verify(ctx, "alice", "pw")
	assert.ErrorIs(t, err, ErrStore)

	assert.ErrorIs(t, s.AddUser(ctx, "alice", "pw"), ErrStore)
	assert.ErrorIs(t, s.ChangePassword(ctx, "alice", "pw"), ErrStore)

	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "store must not create the password file")
}

func TestPasswdStore_TruncatedRecord(t *testing.T) {
	s, path := newTestStore(t, &fastHasher{})
	ctx := context.Background()
	require.NoError(t, s.AddUser(ctx, "alice", "secret"))

	// second record cut inside its salt
	partial := append([]byte("bob\n"), bytes.Repeat([]byte{0x01}, crypto.HashSize+5)...)
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0)
	require.NoError(t, err)
	_, err = f.Write(partial)
	require.NoError(t, err)
	require.NoError(t, f.Close())
	before := readFile(t, path)

	// alice is found before the damaged record is reached
	ok, err := s.Verify(ctx, "alice", "secret")
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = s.Verify(ctx, "bob", "anything")
	assert.ErrorIs(t, err, crypto.ErrInvalidSaltLength)
	assert.ErrorIs(t, err, ErrConfig)

	err = s.AddUser(ctx, "carol", "pw")
	assert.ErrorIs(t, err, ErrConfig)
	assert.Equal(t, before, readFile(t, path))
	assert.Empty(t, leftovers(t, path))
}

func TestPasswdStore_CancelledContext(t *testing.T) {
	s, path := newTestStore(t, &fastHasher{})
	require.NoError(t, s.AddUser(context.Background(), "alice", "secret"))
	before := readFile(t, path)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.UserExists(ctx, "alice")
	assert.ErrorIs(t, err, context.Canceled)

	assert.ErrorIs(t, s.ChangePassword(ctx, "alice", "new"), context.Canceled)
	assert.Equal(t, before, readFile(t, path))
	assert.Empty(t, leftovers(t, path))
}

func TestPasswdStore_LockFileCreatedByWriters(t *testing.T) {
	s, path := newTestStore(t, &fastHasher{})
	ctx := context.Background()

	_, err := s.UserExists(ctx, "alice")
	require.NoError(t, err)
	_, err = os.Lstat(path + lockSuffix)
	assert.True(t, os.IsNotExist(err), "readers must not create the lock file")

	require.NoError(t, s.AddUser(ctx, "alice", "secret"))
	_, err = os.Lstat(path + lockSuffix)
	assert.NoError(t, err)
}

func TestPasswdStore_MissingFileLeavesNoLock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent")
	s := NewPasswdStore(path, &fastHasher{}, logger.Nop())
	ctx := context.Background()

	_, err := s.UserExists(ctx, "alice")
	require.ErrorIs(t, err, ErrStore)
	require.ErrorIs(t, s.AddUser(ctx, "alice", "pw"), ErrStore)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Empty(t, entries)
}
