package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"syscall"
	"time"
)

// FileLock guards files shared with other processes of this tool, such as
// the persisted model state snapshot.
type FileLock struct {
	path     string
	lockPath string
	file     *os.File
	locked   bool
}

// LockConfig holds configuration for file locking behavior
type LockConfig struct {
	Timeout    time.Duration
	RetryDelay time.Duration
}

// DefaultLockConfig returns sensible defaults for file locking
func DefaultLockConfig() LockConfig {
	return LockConfig{
		Timeout:    10 * time.Second,
		RetryDelay: 50 * time.Millisecond,
	}
}

// NewFileLock creates a new file lock for the given path
func NewFileLock(path string) *FileLock {
	return &FileLock{
		path:     path,
		lockPath: path + ".lock",
	}
}

// Lock acquires an exclusive lock on the file with timeout and retry logic
func (fl *FileLock) Lock(config LockConfig) error {
	if fl.locked {
		return errors.New("file is already locked")
	}

	lockDir := filepath.Dir(fl.lockPath)
	if err := os.MkdirAll(lockDir, 0700); err != nil {
		return fmt.Errorf("failed to create lock directory: %w", err)
	}

	start := time.Now()

	for {
		if time.Since(start) > config.Timeout {
			return fmt.Errorf("timeout acquiring lock on %s after %v", fl.path, config.Timeout)
		}

		if err := fl.tryLock(); err == nil {
			fl.locked = true
			return nil
		}

		time.Sleep(config.RetryDelay)
	}
}

// tryLock attempts to acquire the lock without blocking
func (fl *FileLock) tryLock() error {
	file, err := os.OpenFile(fl.lockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0600)
	if err != nil {
		if os.IsExist(err) {
			if fl.isLockStale() {
				os.Remove(fl.lockPath)
				return fl.tryLock()
			}
			return fmt.Errorf("lock already exists")
		}
		return fmt.Errorf("failed to create lock file: %w", err)
	}

	// OS-level lock on top of the exclusive create
	fd := int(file.Fd())
	if err := syscall.Flock(fd, syscall.LOCK_EX|syscall.LOCK_NB); err != nil {
		file.Close()
		os.Remove(fl.lockPath)
		return fmt.Errorf("failed to apply system lock: %w", err)
	}

	lockInfo := fmt.Sprintf("pid:%d\ntime:%s\n", os.Getpid(), time.Now().Format(time.RFC3339))
	if _, err := file.WriteString(lockInfo); err != nil {
		file.Close()
		os.Remove(fl.lockPath)
		return fmt.Errorf("failed to write lock info: %w", err)
	}

	fl.file = file
	return nil
}

// isLockStale reports whether the lock file was left behind by a dead process
func (fl *FileLock) isLockStale() bool {
	info, err := os.Stat(fl.lockPath)
	if err != nil {
		return true
	}

	if time.Since(info.ModTime()) > 5*time.Minute {
		data, err := os.ReadFile(fl.lockPath)
		if err != nil {
			return true
		}

		var pid int
		if _, err := fmt.Sscanf(string(data), "pid:%d", &pid); err != nil {
			return true
		}

		if !isProcessRunning(pid) {
			return true
		}
	}

	return false
}

// isProcessRunning checks if a process with the given PID is still running
func isProcessRunning(pid int) bool {
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}

	// Signal 0 doesn't actually send a signal, just checks if process exists
	err = process.Signal(syscall.Signal(0))
	return err == nil
}

// IsLocked reports whether this instance currently holds the lock
func (fl *FileLock) IsLocked() bool {
	return fl.locked
}

// Unlock releases the file lock
func (fl *FileLock) Unlock() error {
	if !fl.locked {
		return nil
	}

	var lastErr error

	if fl.file != nil {
		fd := int(fl.file.Fd())
		if err := syscall.Flock(fd, syscall.LOCK_UN); err != nil {
			lastErr = fmt.Errorf("failed to release system lock: %w", err)
		}

		if err := fl.file.Close(); err != nil && lastErr == nil {
			lastErr = fmt.Errorf("failed to close lock file: %w", err)
		}
		fl.file = nil
	}

	if err := os.Remove(fl.lockPath); err != nil && lastErr == nil {
		lastErr = fmt.Errorf("failed to remove lock file: %w", err)
	}

	fl.locked = false
	return lastErr
}

// WithLock executes a function while holding a file lock
func WithLock(path string, config LockConfig, fn func() error) error {
	lock := NewFileLock(path)

	if err := lock.Lock(config); err != nil {
		return fmt.Errorf("failed to acquire lock: %w", err)
	}

	defer func() {
		if unlockErr := lock.Unlock(); unlockErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to unlock file %s: %v\n", path, unlockErr)
		}
	}()

	return fn()
}

// AtomicWrite writes data through a temporary file and an atomic rename,
// holding the file lock for the duration.
func AtomicWrite(path string, data []byte, perm os.FileMode) error {
	config := DefaultLockConfig()

	return WithLock(path, config, func() error {
		tempPath := path + ".tmp"
		if err := os.WriteFile(tempPath, data, perm); err != nil {
			return fmt.Errorf("failed to write temporary file: %w", err)
		}

		if err := os.Rename(tempPath, path); err != nil {
			os.Remove(tempPath)
			return fmt.Errorf("failed to rename temporary file: %w", err)
		}

		return nil
	})
}
