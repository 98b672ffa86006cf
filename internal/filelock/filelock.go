// Package filelock writes output files under an exclusive lock using a
// temp-file-and-rename strategy, so readers never observe a partial file.
package filelock

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// lockSuffix is appended to a target path to name its lock file.
const lockSuffix = ".lock"

// FileLock wraps a flock file lock for coordinating writers of one file.
type FileLock struct {
	flock *flock.Flock
	path  string
}

// NewFileLock creates a lock guarding target. The lock file lives next to
// target with a ".lock" suffix.
func NewFileLock(target string) *FileLock {
	lockPath := target + lockSuffix
	return &FileLock{
		flock: flock.New(lockPath),
		path:  lockPath,
	}
}

// Path returns the lock file path.
func (fl *FileLock) Path() string {
	return fl.path
}

// Lock acquires an exclusive lock, blocking until it is available.
func (fl *FileLock) Lock() error {
	if err := fl.flock.Lock(); err != nil {
		return fmt.Errorf("failed to acquire lock on %s: %w", fl.path, err)
	}
	return nil
}

// Unlock releases the lock and removes the lock file.
func (fl *FileLock) Unlock() error {
	if err := fl.flock.Unlock(); err != nil {
		return fmt.Errorf("failed to release lock on %s: %w", fl.path, err)
	}
	if err := os.Remove(fl.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove lock file %s: %w", fl.path, err)
	}
	return nil
}

// AtomicWrite streams fn's output into a temp file next to path, syncs it,
// and renames it over path. On any failure the temp file is removed and an
// existing file at path is left unchanged. Parent directories are created.
func AtomicWrite(path string, fn func(w io.Writer) error) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	tempFile, err := os.CreateTemp(dir, ".tmp-"+filepath.Base(path)+"-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tempPath := tempFile.Name()

	defer func() {
		if err != nil {
			tempFile.Close()
			os.Remove(tempPath)
		}
	}()

	buf := bufio.NewWriter(tempFile)
	if err = fn(buf); err != nil {
		return err
	}
	if err = buf.Flush(); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err = tempFile.Sync(); err != nil {
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err = tempFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err = os.Chmod(tempPath, 0644); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err = os.Rename(tempPath, path); err != nil {
		return fmt.Errorf("failed to rename temp file to %s: %w", path, err)
	}

	return nil
}

// WriteFile locks path, performs an AtomicWrite, and releases the lock.
func WriteFile(path string, fn func(w io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", filepath.Dir(path), err)
	}

	lock := NewFileLock(path)
	if err := lock.Lock(); err != nil {
		return err
	}

	writeErr := AtomicWrite(path, fn)
	unlockErr := lock.Unlock()
	if writeErr != nil {
		return writeErr
	}
	return unlockErr
}
