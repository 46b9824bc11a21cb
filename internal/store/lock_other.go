//go:build !unix

package store

// lockFile is a no-op where flock is unavailable: concurrent writers from
// different processes are not serialized on these platforms.
func lockFile(string, bool) (func() error, error) {
	return func() error { return nil }, nil
}

// syncDir is a no-op: directories cannot be opened for syncing here.
func syncDir(string) error {
	return nil
}
