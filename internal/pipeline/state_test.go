package pipeline

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateManagerMarkAndQuery(t *testing.T) {
	t.Parallel()

	sm, err := NewStateManager(filepath.Join(t.TempDir(), "state.json"))
	require.NoError(t, err)

	assert.False(t, sm.IsCompleted("chunk_0001", StageActivity))
	require.NoError(t, sm.MarkCompleted("chunk_0001", StageActivity))
	assert.True(t, sm.IsCompleted("chunk_0001", StageActivity))
	assert.False(t, sm.IsCompleted("chunk_0001", StageEvents))
	assert.False(t, sm.IsCompleted("chunk_0002", StageActivity))
}

func TestStateManagerPersistsAcrossLoads(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "state.json")

	sm, err := NewStateManager(path)
	require.NoError(t, err)
	require.NoError(t, sm.MarkCompleted("chunk_0001", StageEvents))
	require.NoError(t, sm.MarkCompleted("chunk_0002", StageActivity))

	reloaded, err := NewStateManager(path)
	require.NoError(t, err)
	assert.True(t, reloaded.IsCompleted("chunk_0001", StageEvents))
	assert.True(t, reloaded.IsCompleted("chunk_0002", StageActivity))
	assert.False(t, reloaded.IsCompleted("chunk_0002", StageEvents))
	assert.Equal(t, 1, reloaded.CompletedCount(StageEvents))
}

func TestStateManagerEmptyPathStaysInMemory(t *testing.T) {
	t.Parallel()

	sm, err := NewStateManager("")
	require.NoError(t, err)
	require.NoError(t, sm.MarkCompleted("chunk_0001", StageEvents))
	assert.True(t, sm.IsCompleted("chunk_0001", StageEvents))
}

func TestStateManagerReset(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "state.json")
	sm, err := NewStateManager(path)
	require.NoError(t, err)
	require.NoError(t, sm.MarkCompleted("chunk_0001", StageEvents))

	require.NoError(t, sm.Reset())
	assert.False(t, sm.IsCompleted("chunk_0001", StageEvents))

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestStateManagerMalformedFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte("{broken"), 0o644))

	_, err := NewStateManager(path)
	require.Error(t, err)
}

func TestStateManagerConcurrentMarks(t *testing.T) {
	t.Parallel()

	sm, err := NewStateManager(filepath.Join(t.TempDir(), "state.json"))
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			id := string(rune('a' + n))
			assert.NoError(t, sm.MarkCompleted("chunk_"+id, StageEvents))
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 8, sm.CompletedCount(StageEvents))
}
