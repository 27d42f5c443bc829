// Package locks guards the root directory against concurrent mutating runs.
package locks

import (
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/gruntwork-io/compose-fleet/internal/errors"
)

// LockFilename is the name of the lock file in the root directory. It is hidden, so discovery never
// mistakes it for a project.
const LockFilename = ".fleet.lock"

// Lockfile is an advisory file lock held by one fleet process at a time.
type Lockfile struct {
	*flock.Flock
}

// NewLockfile returns the lock of the root directory, not yet acquired.
func NewLockfile(rootDir string) *Lockfile {
	return &Lockfile{
		flock.New(filepath.Join(rootDir, LockFilename)),
	}
}

// TryLock acquires the lock without waiting. A lock held by another process fails with AlreadyLockedError.
func (lockfile *Lockfile) TryLock() error {
	locked, err := lockfile.Flock.TryLock()
	if err != nil {
		return errors.Errorf("lock %s: %w", lockfile.Path(), err)
	}

	if !locked {
		return errors.New(AlreadyLockedError{Path: lockfile.Path()})
	}

	return nil
}

// Unlock releases the lock if it is held.
func (lockfile *Lockfile) Unlock() error {
	if !lockfile.Locked() {
		return nil
	}

	return errors.WithStackTrace(lockfile.Flock.Unlock())
}

// AlreadyLockedError is returned when another run holds the lock.
type AlreadyLockedError struct {
	Path string
}

func (err AlreadyLockedError) Error() string {
	return "another fleet run is in progress (lock " + err.Path + " is held), use --no-lock to skip this check"
}
