package workspace

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// ErrLocked indicates another pdf2ofx process holds the run lock.
var ErrLocked = errors.New("another pdf2ofx run is in progress")

// RunLock is a file lock over the staging directory.
type RunLock struct {
	path string
	lock *flock.Flock
}

// NewRunLock prepares a lock file inside stagingDir.
func NewRunLock(stagingDir string) (*RunLock, error) {
	if err := os.MkdirAll(stagingDir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure staging directory: %w", err)
	}
	path := filepath.Join(stagingDir, "pdf2ofx.lock")
	return &RunLock{path: path, lock: flock.New(path)}, nil
}

// Path returns the lock file location.
func (l *RunLock) Path() string { return l.path }

// Acquire takes the lock without blocking. ErrLocked means a concurrent run
// holds it.
func (l *RunLock) Acquire() error {
	ok, err := l.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire run lock: %w", err)
	}
	if !ok {
		return ErrLocked
	}
	return nil
}

// Release drops the lock. Safe to call when not held.
func (l *RunLock) Release() error {
	return l.lock.Unlock()
}
