//go:build !windows

package storage

import (
	"os"

	"golang.org/x/sys/unix"
)

// ErrLocked is returned by Lock when another process already holds the
// database's exclusive lock.
var ErrLocked = errLocked{}

type errLocked struct{}

func (errLocked) Error() string { return "database file is locked by another process" }

// Lock acquires a non-blocking exclusive lock on f, returning ErrLocked if
// another process holds it already.
func Lock(f *os.File) error {
	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		if err == unix.EWOULDBLOCK {
			return ErrLocked
		}
		return err
	}
	return nil
}

// Unlock releases a lock acquired with Lock.
func Unlock(f *os.File) error {
	return unix.Flock(int(f.Fd()), unix.LOCK_UN)
}
