// Package reportfile writes rendered diagnostics reports to disk. Exports
// are atomic (temp file plus rename) and guarded by a file lock so
// concurrent harness runs exporting to the same path never interleave.
package reportfile

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// Export writes a report to path atomically while holding a lock on
// path + ".lock". Readers never observe a partial report.
func Export(path string, report string) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	lockPath := path + ".lock"
	lock := flock.New(lockPath)

	if err := lock.Lock(); err != nil {
		return fmt.Errorf("acquire lock on %s: %w", lockPath, err)
	}
	defer lock.Unlock()

	return writeAtomic(path, []byte(report))
}

// TryExport is the non-blocking variant: it returns false without writing
// when another process holds the lock.
func TryExport(path string, report string) (bool, error) {
	if err := ensureDir(path); err != nil {
		return false, err
	}

	lockPath := path + ".lock"
	lock := flock.New(lockPath)

	acquired, err := lock.TryLock()
	if err != nil {
		return false, fmt.Errorf("try lock on %s: %w", lockPath, err)
	}
	if !acquired {
		return false, nil
	}
	defer lock.Unlock()

	if err := writeAtomic(path, []byte(report)); err != nil {
		return false, err
	}
	return true, nil
}

// ensureDir creates the report's directory. The lock file lives next to
// the report, so the directory must exist before the lock is acquired.
func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create report directory %s: %w", dir, err)
	}
	return nil
}

// writeAtomic writes data via a temp file in the target directory and an
// atomic rename, so an interrupted export leaves any previous report
// intact.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)

	tmp, err := os.CreateTemp(dir, ".report-*")
	if err != nil {
		return fmt.Errorf("create temp report: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if tmp != nil {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("write temp report: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("sync temp report: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp report: %w", err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		return fmt.Errorf("set report permissions: %w", err)
	}

	// Rename within the same directory is atomic on the same filesystem
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename temp report to %s: %w", path, err)
	}
	tmp = nil
	return nil
}
