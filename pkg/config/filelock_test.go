package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultLockConfig(t *testing.T) {
	config := DefaultLockConfig()

	assert.Equal(t, 10*time.Second, config.Timeout)
	assert.Equal(t, 50*time.Millisecond, config.RetryDelay)
}

func TestNewFileLock(t *testing.T) {
	testPath := "/tmp/test-file.txt"
	lock := NewFileLock(testPath)

	assert.Equal(t, testPath, lock.path)
	assert.Equal(t, testPath+".lock", lock.lockPath)
	assert.False(t, lock.locked)
	assert.Nil(t, lock.file)
}

func TestFileLock_BasicLockUnlock(t *testing.T) {
	tempDir := t.TempDir()
	testPath := filepath.Join(tempDir, "test-file.txt")

	lock := NewFileLock(testPath)
	config := DefaultLockConfig()
	config.Timeout = 1 * time.Second // Shorter timeout for tests

	// Initially not locked
	assert.False(t, lock.IsLocked())

	// Lock should succeed
	err := lock.Lock(config)
	require.NoError(t, err)
	assert.True(t, lock.IsLocked())

	// Lock file should exist
	_, err = os.Stat(lock.lockPath)
	assert.NoError(t, err)

	// Unlock should succeed
	err = lock.Unlock()
	require.NoError(t, err)
	assert.False(t, lock.IsLocked())

	// Lock file should be removed
	_, err = os.Stat(lock.lockPath)
	assert.True(t, os.IsNotExist(err))
}

func TestFileLock_DoubleLock(t *testing.T) {
	tempDir := t.TempDir()
	testPath := filepath.Join(tempDir, "test-file.txt")

	lock := NewFileLock(testPath)
	config := DefaultLockConfig()
	config.Timeout = 100 * time.Millisecond

	err := lock.Lock(config)
	require.NoError(t, err)

	// Second lock on same instance should fail
	err = lock.Lock(config)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "already locked")

	lock.Unlock()
}

func TestFileLock_ConcurrentLock(t *testing.T) {
	tempDir := t.TempDir()
	testPath := filepath.Join(tempDir, "test-file.txt")

	lock1 := NewFileLock(testPath)
	lock2 := NewFileLock(testPath)

	config := DefaultLockConfig()
	config.Timeout = 300 * time.Millisecond

	err := lock1.Lock(config)
	require.NoError(t, err)
	defer lock1.Unlock()

	// Second holder should time out while the first holds the lock
	err = lock2.Lock(config)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "timeout")
}

func TestWithLock(t *testing.T) {
	tempDir := t.TempDir()
	testPath := filepath.Join(tempDir, "test-file.txt")

	ran := false
	err := WithLock(testPath, DefaultLockConfig(), func() error {
		ran = true
		// The lock file exists while fn runs
		_, statErr := os.Stat(testPath + ".lock")
		assert.NoError(t, statErr)
		return nil
	})

	require.NoError(t, err)
	assert.True(t, ran)

	// Released afterwards
	_, err = os.Stat(testPath + ".lock")
	assert.True(t, os.IsNotExist(err))
}

func TestAtomicWrite(t *testing.T) {
	tempDir := t.TempDir()
	testPath := filepath.Join(tempDir, "state.json")

	require.NoError(t, AtomicWrite(testPath, []byte(`{"a":1}`), 0644))

	content, err := os.ReadFile(testPath)
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(content))

	// Overwrite replaces content wholesale
	require.NoError(t, AtomicWrite(testPath, []byte(`{"b":2}`), 0644))
	content, err = os.ReadFile(testPath)
	require.NoError(t, err)
	assert.Equal(t, `{"b":2}`, string(content))

	// No temp file left behind
	_, err = os.Stat(testPath + ".tmp")
	assert.True(t, os.IsNotExist(err))
}
