package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestStore returns an in-memory store whose clock advances one second
// per call.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	clock := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	s.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return s
}

func TestNewStoreInMemory(t *testing.T) {
	s, err := NewStore(":memory:")
	require.NoError(t, err)
	require.NotNil(t, s)

	err = s.Close()
	assert.NoError(t, err)
}

func TestNewStoreCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "history.db")
	s, err := NewStore(path)
	require.NoError(t, err)
	require.NoError(t, s.AddRecent("/data/a.h5", "HDF5"))
	require.NoError(t, s.Close())

	s, err = NewStore(path)
	require.NoError(t, err)
	defer s.Close()
	files, err := s.Recent(0)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "/data/a.h5", files[0].Path)
}

func TestRecentOrderAndCount(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.AddRecent("/data/a.h5", "HDF5"))
	require.NoError(t, s.AddRecent("/data/b.tfrecord", "tfrecord"))
	require.NoError(t, s.AddRecent("/data/a.h5", ""))

	files, err := s.Recent(10)
	require.NoError(t, err)
	require.Len(t, files, 2)

	assert.Equal(t, "/data/a.h5", files[0].Path)
	assert.Equal(t, "HDF5", files[0].Adapter, "empty adapter keeps the stored one")
	assert.Equal(t, 2, files[0].Count)
	assert.Equal(t, "/data/b.tfrecord", files[1].Path)
	assert.Equal(t, 1, files[1].Count)
	assert.True(t, files[0].OpenedAt.After(files[1].OpenedAt))
}

func TestRecentLimit(t *testing.T) {
	s := newTestStore(t)
	for _, p := range []string{"/a.npy", "/b.npy", "/c.npy"} {
		require.NoError(t, s.AddRecent(p, "NumPy"))
	}

	files, err := s.Recent(2)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "/c.npy", files[0].Path)
	assert.Equal(t, "/b.npy", files[1].Path)

	all, err := s.Recent(-1)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestRelativePathsAreStoredAbsolute(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.AddRecent("data.yaml", "YAML/JSON"))

	want, err := filepath.Abs("data.yaml")
	require.NoError(t, err)
	files, err := s.Recent(1)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, want, files[0].Path)

	require.NoError(t, s.RemoveRecent("data.yaml"))
	files, err = s.Recent(1)
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestPrune(t *testing.T) {
	s := newTestStore(t)
	for _, p := range []string{"/1.h5", "/2.h5", "/3.h5", "/4.h5"} {
		require.NoError(t, s.AddRecent(p, "HDF5"))
	}
	require.NoError(t, s.Prune(2))

	files, err := s.Recent(0)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "/4.h5", files[0].Path)
	assert.Equal(t, "/3.h5", files[1].Path)

	require.NoError(t, s.Prune(0))
	files, err = s.Recent(0)
	require.NoError(t, err)
	assert.Empty(t, files)
}
