package statestore

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoltStoreLoadBeforeSave(t *testing.T) {
	store, err := NewBoltStore(filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	defer store.Close()

	data, ok, err := store.Load()

	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, "", data)
}

func TestBoltStoreRoundTrip(t *testing.T) {
	store, err := NewBoltStore(filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Save(`{"whisper-base":{"downloadState":"downloaded"}}`))

	data, ok, err := store.Load()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Contains(t, data, "whisper-base")
}

func TestBoltStoreSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")

	store, err := NewBoltStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Save(`{"whisper-small":{}}`))
	require.NoError(t, store.Close())

	reopened, err := NewBoltStore(path)
	require.NoError(t, err)
	defer reopened.Close()

	data, ok, err := reopened.Load()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Contains(t, data, "whisper-small")
}

func TestBoltStoreCreatesParentDirs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "state.db")

	store, err := NewBoltStore(path)
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Save("{}"))
}
