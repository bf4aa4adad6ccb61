package models

import (
	"io/fs"
	"os"
	"path/filepath"
)

// ScanResult is what the disk decided about one model directory.
type ScanResult struct {
	// Downloaded is true when a recognized manifest file exists in the tree.
	Downloaded bool

	// SizeBytes is the total size of every file in the tree.
	SizeBytes int64
}

// DefaultManifestFiles returns the file names that mark a model directory as
// fully downloaded.
func DefaultManifestFiles() []string {
	return []string{"model.bin", "model.json"}
}

// Scanner inspects model directories. It never returns an error: a missing,
// empty, or unreadable directory is an absent model, not a failure.
type Scanner struct {
	manifests map[string]struct{}
}

// NewScanner creates a scanner recognizing the given manifest file names.
// An empty list falls back to DefaultManifestFiles.
func NewScanner(manifestFiles []string) *Scanner {
	if len(manifestFiles) == 0 {
		manifestFiles = DefaultManifestFiles()
	}
	manifests := make(map[string]struct{}, len(manifestFiles))
	for _, name := range manifestFiles {
		manifests[name] = struct{}{}
	}
	return &Scanner{manifests: manifests}
}

// Scan walks the directory tree, summing file sizes and looking for a
// manifest file. A directory with files but no manifest is not downloaded.
func (s *Scanner) Scan(dir string) ScanResult {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return ScanResult{}
	}

	var result ScanResult
	filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable entries simply don't count
			return nil
		}
		if d.IsDir() {
			return nil
		}
		fi, err := d.Info()
		if err != nil {
			return nil
		}
		result.SizeBytes += fi.Size()
		if _, ok := s.manifests[d.Name()]; ok {
			result.Downloaded = true
		}
		return nil
	})

	return result
}

// stateFromScan converts a scan verdict into the model's authoritative state.
// The filesystem always wins: anything not confirmed on disk is not
// downloaded, with zero progress and zero usage.
func stateFromScan(id string, res ScanResult) ModelState {
	if res.Downloaded {
		return ModelState{
			ModelID:          id,
			DownloadState:    StateDownloaded,
			DownloadProgress: 1.0,
			DiskUsageBytes:   res.SizeBytes,
		}
	}
	return ModelState{
		ModelID:       id,
		DownloadState: StateNotDownloaded,
	}
}
