package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeSnapshotEmpty(t *testing.T) {
	assert.Nil(t, decodeSnapshot(""))
}

func TestDecodeSnapshotCorruptJSON(t *testing.T) {
	assert.Nil(t, decodeSnapshot("{not json at all"))
	assert.Nil(t, decodeSnapshot(`["wrong","shape"]`))
}

func TestDecodeSnapshotStates(t *testing.T) {
	data := `{
		"whisper-tiny": {"downloadState": "downloaded", "diskUsageBytes": 1026},
		"whisper-base": {"downloadState": "downloading", "diskUsageBytes": 500},
		"whisper-small": {"downloadState": "notDownloaded", "diskUsageBytes": 0}
	}`

	decoded := decodeSnapshot(data)
	require.Len(t, decoded, 3)

	assert.Equal(t, StateDownloaded, decoded["whisper-tiny"].DownloadState)
	assert.Equal(t, 1.0, decoded["whisper-tiny"].DownloadProgress)
	assert.Equal(t, int64(1026), decoded["whisper-tiny"].DiskUsageBytes)

	assert.Equal(t, StateDownloading, decoded["whisper-base"].DownloadState)
	assert.Equal(t, 0.0, decoded["whisper-base"].DownloadProgress)

	assert.Equal(t, StateNotDownloaded, decoded["whisper-small"].DownloadState)
}

func TestDecodeSnapshotUnrecognizedState(t *testing.T) {
	decoded := decodeSnapshot(`{"whisper-base": {"downloadState": "partiallyMaybe", "diskUsageBytes": 10}}`)

	require.Len(t, decoded, 1)
	assert.Equal(t, StateNotDownloaded, decoded["whisper-base"].DownloadState)
}

func TestDecodeSnapshotByteCounts(t *testing.T) {
	decoded := decodeSnapshot(`{
		"fractional": {"downloadState": "downloaded", "diskUsageBytes": 1536.9},
		"negative": {"downloadState": "downloaded", "diskUsageBytes": -42},
		"missing": {"downloadState": "downloaded"},
		"null": {"downloadState": "downloaded", "diskUsageBytes": null}
	}`)
	require.Len(t, decoded, 4)

	// Fractional counts truncate toward zero
	assert.Equal(t, int64(1536), decoded["fractional"].DiskUsageBytes)
	assert.Equal(t, int64(0), decoded["negative"].DiskUsageBytes)
	assert.Equal(t, int64(0), decoded["missing"].DiskUsageBytes)
	assert.Equal(t, int64(0), decoded["null"].DiskUsageBytes)
}

func TestDecodeSnapshotIgnoresUnknownKeys(t *testing.T) {
	decoded := decodeSnapshot(`{"whisper-base": {"downloadState": "downloaded", "diskUsageBytes": 7, "lastChecked": "2024-01-01"}}`)

	require.Len(t, decoded, 1)
	assert.Equal(t, StateDownloaded, decoded["whisper-base"].DownloadState)
	assert.Equal(t, int64(7), decoded["whisper-base"].DiskUsageBytes)
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	snap := Snapshot{
		"whisper-tiny": {
			ModelID:          "whisper-tiny",
			DownloadState:    StateDownloaded,
			DownloadProgress: 1.0,
			DiskUsageBytes:   78643200,
		},
		"whisper-base": {
			ModelID:       "whisper-base",
			DownloadState: StateNotDownloaded,
		},
	}

	data, err := encodeSnapshot(snap)
	require.NoError(t, err)

	decoded := decodeSnapshot(data)
	require.Len(t, decoded, 2)
	assert.Equal(t, snap["whisper-tiny"], decoded["whisper-tiny"])
	assert.Equal(t, snap["whisper-base"], decoded["whisper-base"])
}

func TestSnapshotClone(t *testing.T) {
	snap := Snapshot{"whisper-base": {ModelID: "whisper-base", DownloadState: StateDownloaded}}

	clone := snap.Clone()
	clone["whisper-base"] = ModelState{ModelID: "whisper-base", DownloadState: StateNotDownloaded}

	assert.Equal(t, StateDownloaded, snap["whisper-base"].DownloadState)
}
