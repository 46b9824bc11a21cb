// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/MKhiriev/go-gatekeeper/internal/crypto"
	"github.com/MKhiriev/go-gatekeeper/internal/logger"
)

// lockSuffix names the advisory lock file that sits next to the password
// file.
const lockSuffix = ".lock"

// passwdStore is the default implementation of [CredentialStore] backed by a
// single password file.
//
// Mutations never patch the file in place. The complete new content is
// streamed into a temporary file in the same directory, synced, and renamed
// over the original; a failure at any earlier step removes the temporary
// file and leaves the original byte-identical.
type passwdStore struct {
	// path is the password file. It must exist before the first call.
	path string

	// hasher derives password hashes and mints salts.
	hasher crypto.PasswordHasher

	// logger is used for structured diagnostic logging at the storage layer.
	logger *logger.Logger
}

// NewPasswdStore constructs a [CredentialStore] over the password file at
// path. The file is not touched until the first call.
func NewPasswdStore(path string, hasher crypto.PasswordHasher, logger *logger.Logger) CredentialStore {
	logger.Debug().Str("path", path).Msg("creating password store")

	return &passwdStore{
		path:   path,
		hasher: hasher,
		logger: logger,
	}
}

// Create makes a new, empty password file at path. It fails with
// [ErrStoreExists] if the file is already present.
func Create(path string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return ErrStoreExists
		}
		return fmt.Errorf("%w: %w", ErrStore, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: %w", ErrStore, err)
	}
	return nil
}

// UserExists implements [CredentialStore].
func (s *passwdStore) UserExists(ctx context.Context, name string) (bool, error) {
	found := false
	err := s.scan(ctx, func(rec *UserRecord) bool {
		found = rec.Username == name
		return found
	})
	if err != nil {
		return false, err
	}

	return found, nil
}

// Verify implements [CredentialStore].
//
// The stored hash, the stored salt and the recomputed hash are wiped before
// Verify returns, whatever the outcome.
func (s *passwdStore) Verify(ctx context.Context, name, password string) (bool, error) {
	var (
		rec   UserRecord
		found bool
	)
	defer rec.wipe()

	err := s.scan(ctx, func(r *UserRecord) bool {
		if r.Username != name {
			return false
		}
		rec, found = *r, true
		return true
	})
	if err != nil {
		return false, err
	}
	if !found {
		return false, nil
	}

	computed, err := s.hasher.HashWithSalt(password, rec.Salt[:])
	if err != nil {
		return false, err
	}
	defer computed.Wipe()

	return rec.Hash.Equal(&computed), nil
}

// AddUser implements [CredentialStore].
func (s *passwdStore) AddUser(ctx context.Context, name, password string) error {
	if err := validateUsername(name); err != nil {
		return err
	}

	err := s.rewrite(ctx,
		func(w *recordWriter, rec *UserRecord) error {
			if rec.Username == name {
				return ErrUserAlreadyExists
			}
			return w.writeRecord(rec)
		},
		func(w *recordWriter) error {
			rec, err := s.newRecord(name, password)
			if err != nil {
				return err
			}
			defer rec.wipe()

			return w.writeRecord(&rec)
		},
	)
	if err != nil {
		s.logger.Err(err).Str("user", name).Msg("adding user failed")
		return err
	}

	s.logger.Info().Str("user", name).Msg("user added")
	return nil
}

// ChangePassword implements [CredentialStore].
func (s *passwdStore) ChangePassword(ctx context.Context, name, newPassword string) error {
	found := false

	err := s.rewrite(ctx,
		func(w *recordWriter, rec *UserRecord) error {
			if rec.Username != name {
				return w.writeRecord(rec)
			}
			found = true

			updated, err := s.newRecord(name, newPassword)
			if err != nil {
				return err
			}
			defer updated.wipe()

			return w.writeRecord(&updated)
		},
		func(*recordWriter) error {
			if !found {
				return ErrUserNotFound
			}
			return nil
		},
	)
	if err != nil {
		s.logger.Err(err).Str("user", name).Msg("changing password failed")
		return err
	}

	s.logger.Info().Str("user", name).Msg("password changed")
	return nil
}

// Users implements [CredentialStore].
func (s *passwdStore) Users(ctx context.Context) ([]string, error) {
	var names []string
	err := s.scan(ctx, func(rec *UserRecord) bool {
		names = append(names, rec.Username)
		return false
	})
	if err != nil {
		return nil, err
	}

	return names, nil
}

// newRecord builds a record for name with a fresh salt.
func (s *passwdStore) newRecord(name, password string) (UserRecord, error) {
	salt, err := s.hasher.GenerateSalt()
	if err != nil {
		return UserRecord{}, fmt.Errorf("%w: %w", ErrStore, err)
	}

	return UserRecord{
		Username: name,
		Hash:     s.hasher.Hash(password, salt),
		Salt:     salt,
	}, nil
}

// scan reads records in file order under a shared lock, when the lock file
// is available, and hands each to visit until visit returns true or the file
// ends. Every record is wiped after visit returns, so visit must copy
// whatever it keeps.
func (s *passwdStore) scan(ctx context.Context, visit func(rec *UserRecord) bool) error {
	unlock, err := lockFile(s.path+lockSuffix, false)
	if err != nil {
		return fmt.Errorf("%w: lock password file: %w", ErrStore, err)
	}
	defer func() { _ = unlock() }()

	f, err := os.Open(s.path)
	if err != nil {
		return fmt.Errorf("%w: open password file for reading: %w", ErrStore, err)
	}
	defer f.Close()

	return s.readAll(ctx, newRecordReader(f), func(rec *UserRecord) (bool, error) {
		return visit(rec), nil
	})
}

// rewrite streams every record of the password file through edit into a
// temporary file, calls finish to append trailing records, and atomically
// renames the result over the password file. The exclusive lock is held for
// the whole sequence. If edit or finish fail, nothing is renamed.
func (s *passwdStore) rewrite(
	ctx context.Context,
	edit func(w *recordWriter, rec *UserRecord) error,
	finish func(w *recordWriter) error,
) (err error) {
	// no lock file next to a store that does not exist
	if _, err = os.Stat(s.path); err != nil {
		return fmt.Errorf("%w: open password file for reading: %w", ErrStore, err)
	}

	unlock, err := lockFile(s.path+lockSuffix, true)
	if err != nil {
		return fmt.Errorf("%w: lock password file: %w", ErrStore, err)
	}
	defer func() { _ = unlock() }()

	src, err := os.Open(s.path)
	if err != nil {
		return fmt.Errorf("%w: open password file for reading: %w", ErrStore, err)
	}
	defer src.Close()

	info, err := src.Stat()
	if err != nil {
		return fmt.Errorf("%w: stat password file: %w", ErrStore, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("%w: open temporary file for writing: %w", ErrStore, err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	w := newRecordWriter(tmp)
	err = s.readAll(ctx, newRecordReader(src), func(rec *UserRecord) (bool, error) {
		return false, edit(w, rec)
	})
	if err != nil {
		return storeErr(err)
	}
	if err = finish(w); err != nil {
		return storeErr(err)
	}

	if err = w.flush(); err != nil {
		return fmt.Errorf("%w: write temporary file: %w", ErrStore, err)
	}
	if err = tmp.Chmod(info.Mode().Perm()); err != nil {
		return fmt.Errorf("%w: chmod temporary file: %w", ErrStore, err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("%w: sync temporary file: %w", ErrStore, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("%w: close temporary file: %w", ErrStore, err)
	}
	if err = os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("%w: replace password file: %w", ErrStore, err)
	}
	if dirErr := syncDir(filepath.Dir(s.path)); dirErr != nil {
		s.logger.Warn().Err(dirErr).Str("path", s.path).Msg("password file replaced but directory sync failed")
	}

	return nil
}

// readAll decodes records until EOF, a visit error, or visit asking to
// stop. The context is checked between records.
func (s *passwdStore) readAll(ctx context.Context, r *recordReader, visit func(rec *UserRecord) (bool, error)) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		var rec UserRecord
		err := r.readRecord(&rec)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			if errors.Is(err, ErrConfig) {
				return err
			}
			return fmt.Errorf("%w: read password file: %w", ErrStore, err)
		}

		stop, err := visit(&rec)
		rec.wipe()
		if err != nil || stop {
			return err
		}
	}
}

// storeErr classifies an error raised while rewriting. Errors that already
// belong to a store category, and context errors, pass through; anything
// else is a write failure.
func storeErr(err error) error {
	switch {
	case errors.Is(err, ErrStore), errors.Is(err, ErrUsage), errors.Is(err, ErrConfig),
		errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	default:
		return fmt.Errorf("%w: write temporary file: %w", ErrStore, err)
	}
}
