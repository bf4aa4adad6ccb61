// Package statestore persists the serialized model state snapshot. The
// engine treats the stored value as an opaque string; the backends here only
// move bytes.
package statestore

// Store loads and saves the serialized snapshot.
type Store interface {
	// Load returns the stored snapshot. The second return is false when
	// nothing has been stored yet; that is not an error.
	Load() (string, bool, error)

	// Save replaces the stored snapshot.
	Save(data string) error

	// Close releases any underlying resources.
	Close() error
}
