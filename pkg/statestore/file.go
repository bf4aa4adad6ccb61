package statestore

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/alexandertaboriskiy/navixmind-sub001/pkg/config"
)

// FileStore keeps the snapshot in a single JSON file, written atomically
// under a file lock so a crash mid-write never leaves a torn snapshot.
type FileStore struct {
	path string
}

// NewFileStore creates a file-backed store at path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load reads the snapshot file. A missing file means no snapshot.
func (s *FileStore) Load() (string, bool, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("reading state file: %w", err)
	}
	if len(data) == 0 {
		return "", false, nil
	}
	return string(data), true, nil
}

// Save writes the snapshot atomically.
func (s *FileStore) Save(data string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("creating state directory: %w", err)
	}
	if err := config.AtomicWrite(s.path, []byte(data), 0644); err != nil {
		return fmt.Errorf("writing state file: %w", err)
	}
	return nil
}

// Close is a no-op for the file backend.
func (s *FileStore) Close() error {
	return nil
}
