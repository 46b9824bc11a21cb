//go:build unix

package store

import (
	"errors"
	"os"

	"golang.org/x/sys/unix"
)

// lockFile takes an advisory flock on path. Readers share the lock; a rewrite
// holds it exclusively from the first read of the old file until the new one
// has been renamed into place.
//
// Only the exclusive lock creates the lock file. A shared lock whose file is
// missing or cannot be opened is skipped and the read goes ahead unlocked:
// writers only ever replace the password file by rename, so a reader sees
// either the old or the new content.
func lockFile(path string, exclusive bool) (func() error, error) {
	flag, how := os.O_RDONLY, unix.LOCK_SH
	if exclusive {
		flag, how = os.O_CREATE|os.O_RDWR, unix.LOCK_EX
	}

	f, err := os.OpenFile(path, flag, 0o600)
	if err != nil {
		if !exclusive {
			return noUnlock, nil
		}
		return nil, err
	}

	for {
		err = unix.Flock(int(f.Fd()), how)
		if !errors.Is(err, unix.EINTR) {
			break
		}
	}
	if err != nil {
		_ = f.Close()
		return nil, err
	}

	return func() error {
		_ = unix.Flock(int(f.Fd()), unix.LOCK_UN)
		return f.Close()
	}, nil
}

func noUnlock() error { return nil }

// syncDir flushes the directory entry of a freshly renamed file to disk.
func syncDir(dir string) error {
	d, err := os.Open(dir)
	if err != nil {
		return err
	}
	if err = d.Sync(); err != nil {
		_ = d.Close()
		return err
	}
	return d.Close()
}
