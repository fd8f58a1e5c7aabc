// Package lock guards a data directory against concurrent service instances.
package lock

import (
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"go.trai.ch/rtosm/internal/core/domain"
	"go.trai.ch/zerr"
)

// DirLock is an exclusive advisory lock on a directory.
type DirLock struct {
	fl *flock.Flock
}

// Acquire takes the lock of dir without blocking. It fails with
// domain.ErrAlreadyRunning when another process holds it.
func Acquire(dir string) (*DirLock, error) {
	if err := os.MkdirAll(dir, domain.DirPerm); err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to create lock directory"), "dir", dir)
	}

	path := filepath.Join(dir, domain.LockFileName)
	fl := flock.New(path)
	ok, err := fl.TryLock()
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to acquire lock"), "path", path)
	}
	if !ok {
		return nil, zerr.With(domain.ErrAlreadyRunning, "lock", path)
	}
	return &DirLock{fl: fl}, nil
}

// Release unlocks the directory.
func (l *DirLock) Release() error {
	return l.fl.Unlock()
}
