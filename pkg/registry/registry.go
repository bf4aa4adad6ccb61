package registry

import "path/filepath"

// Descriptor identifies a known offline model and where it lives on disk.
// The descriptor set is static for the process lifetime.
type Descriptor struct {
	// ID is the stable model identifier, e.g. "whisper-base".
	ID string

	// DirName is the model's directory name under the models root.
	DirName string

	// Name is the human-friendly display name.
	Name string

	// SizeLabel is an approximate download size shown to users, e.g. "142 MB".
	SizeLabel string
}

// Registry enumerates the known offline models and resolves their
// on-disk locations. Cloud-served models never appear here.
type Registry struct {
	baseDir     string
	descriptors []Descriptor
	byID        map[string]Descriptor
}

// New creates a registry over the given descriptor set, resolving model
// directories under baseDir.
func New(baseDir string, descriptors []Descriptor) *Registry {
	byID := make(map[string]Descriptor, len(descriptors))
	for _, d := range descriptors {
		byID[d.ID] = d
	}
	return &Registry{
		baseDir:     baseDir,
		descriptors: descriptors,
		byID:        byID,
	}
}

// Default returns a registry with the built-in offline model set.
func Default(baseDir string) *Registry {
	return New(baseDir, BuiltinDescriptors())
}

// BuiltinDescriptors returns the offline models this build knows about.
func BuiltinDescriptors() []Descriptor {
	return []Descriptor{
		{ID: "whisper-tiny", DirName: "whisper_tiny", Name: "Whisper Tiny", SizeLabel: "75 MB"},
		{ID: "whisper-base", DirName: "whisper_base", Name: "Whisper Base", SizeLabel: "142 MB"},
		{ID: "whisper-small", DirName: "whisper_small", Name: "Whisper Small", SizeLabel: "466 MB"},
	}
}

// All returns the descriptors in registration order.
func (r *Registry) All() []Descriptor {
	out := make([]Descriptor, len(r.descriptors))
	copy(out, r.descriptors)
	return out
}

// Lookup returns the descriptor for id, if known.
func (r *Registry) Lookup(id string) (Descriptor, bool) {
	d, ok := r.byID[id]
	return d, ok
}

// Dir resolves the absolute-or-relative directory path for id. The second
// return is false for unknown identifiers.
func (r *Registry) Dir(id string) (string, bool) {
	d, ok := r.byID[id]
	if !ok {
		return "", false
	}
	return filepath.Join(r.baseDir, d.DirName), true
}

// Len returns the number of known models.
func (r *Registry) Len() int {
	return len(r.descriptors)
}
