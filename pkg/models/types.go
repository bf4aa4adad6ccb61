package models

import (
	"encoding/json"
	"fmt"
)

// DownloadState describes whether a model's artifacts are on disk.
type DownloadState string

const (
	StateNotDownloaded DownloadState = "notDownloaded"
	StateDownloading   DownloadState = "downloading"
	StateDownloaded    DownloadState = "downloaded"
)

// ModelState is the authoritative per-model record.
type ModelState struct {
	// ModelID matches a registry descriptor id.
	ModelID string

	// DownloadState is never "downloaded" unless a disk scan confirmed it.
	DownloadState DownloadState

	// DownloadProgress is in [0.0, 1.0]; 1.0 iff DownloadState is downloaded.
	DownloadProgress float64

	// DiskUsageBytes is the model directory's total size; 0 when not downloaded.
	DiskUsageBytes int64
}

// Snapshot maps model id to state. The engine replaces it wholesale on every
// mutation; consumers only ever hold copies.
type Snapshot map[string]ModelState

// Clone returns an independent copy.
func (s Snapshot) Clone() Snapshot {
	out := make(Snapshot, len(s))
	for id, st := range s {
		out[id] = st
	}
	return out
}

// persistedEntry is the on-disk shape of one model's state. Progress is not
// persisted; it is derived from the download state. DiskUsageBytes tolerates
// null and fractional values from older snapshots.
type persistedEntry struct {
	DownloadState  string   `json:"downloadState"`
	DiskUsageBytes *float64 `json:"diskUsageBytes"`
}

// encodeSnapshot serializes a snapshot to its persisted JSON form.
func encodeSnapshot(s Snapshot) (string, error) {
	out := make(map[string]persistedEntry, len(s))
	for id, st := range s {
		size := float64(st.DiskUsageBytes)
		out[id] = persistedEntry{
			DownloadState:  string(st.DownloadState),
			DiskUsageBytes: &size,
		}
	}

	data, err := json.Marshal(out)
	if err != nil {
		return "", fmt.Errorf("encoding snapshot: %w", err)
	}
	return string(data), nil
}

// decodeSnapshot parses a persisted snapshot. Any parse failure yields nil,
// which callers treat the same as an absent snapshot. Unknown JSON keys are
// dropped by the decode struct itself.
func decodeSnapshot(data string) map[string]ModelState {
	if data == "" {
		return nil
	}

	var raw map[string]persistedEntry
	if err := json.Unmarshal([]byte(data), &raw); err != nil {
		return nil
	}

	out := make(map[string]ModelState, len(raw))
	for id, entry := range raw {
		state := DownloadState(entry.DownloadState)
		switch state {
		case StateNotDownloaded, StateDownloading, StateDownloaded:
		default:
			state = StateNotDownloaded
		}

		// Fractional byte counts truncate toward zero; negatives clamp to 0.
		var size int64
		if entry.DiskUsageBytes != nil && *entry.DiskUsageBytes > 0 {
			size = int64(*entry.DiskUsageBytes)
		}

		var progress float64
		if state == StateDownloaded {
			progress = 1.0
		}

		out[id] = ModelState{
			ModelID:          id,
			DownloadState:    state,
			DownloadProgress: progress,
			DiskUsageBytes:   size,
		}
	}
	return out
}
